package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/headlines/internal/config"
	"github.com/pders01/headlines/internal/newsview"
	"github.com/pders01/headlines/internal/search"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey}
}

// bind returns the full key string for a modified binding.
func (kh *KeyHandler) bind(key string) string {
	return kh.modifierKey + key
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return kh.app, tea.Quit
	}

	if kh.isListFiltering() {
		return kh.delegateToCharm(msg)
	}

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

// isListFiltering reports whether the visible list owns the keyboard
// because its filter prompt is open.
func (kh *KeyHandler) isListFiltering() bool {
	switch kh.app.view {
	case ViewNews:
		return kh.app.newsList.FilterState() == list.Filtering
	case ViewBookmarks:
		return kh.app.bookmarkList.FilterState() == list.Filtering
	default:
		return false
	}
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewNews:
		return kh.app.searchInput.Focused()
	case ViewFind:
		return kh.app.findInput.Focused()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app

	switch msg.String() {
	case "esc":
		if a.view == ViewNews {
			// Abandon the edit; the committed query stays.
			a.searchInput.SetValue(a.state.Filter.Query)
			a.searchInput.Blur()
			return a, nil
		}
		return kh.navigateBack()
	case "enter":
		if a.view == ViewNews {
			return a, a.submitSearch()
		}
		if i, ok := a.findList.SelectedItem().(findResultItem); ok {
			return a, a.openReader(i.result.Article, ViewFind)
		}
		return a, nil
	case "tab", "down":
		if a.view == ViewFind {
			if len(a.findList.Items()) > 0 {
				a.findInput.Blur()
				a.findList.Select(0)
			}
			return a, nil
		}
		return kh.delegateToTextInput(msg)
	default:
		return kh.delegateToTextInput(msg)
	}
}

func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	var cmd tea.Cmd

	switch a.view {
	case ViewNews:
		a.searchInput, cmd = a.searchInput.Update(msg)
		return a, cmd
	case ViewFind:
		prev := a.findInput.Value()
		a.findInput, cmd = a.findInput.Update(msg)
		if a.findInput.Value() != prev {
			return a, tea.Batch(cmd, a.scheduleFind())
		}
		return a, cmd
	default:
		return a, nil
	}
}

func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	b := kh.config.Keys.Bindings

	switch key {
	case b.Quit:
		return a, tea.Quit, true
	case kh.bind(b.Theme):
		a.toggleTheme()
		return a, nil, true
	case kh.bind(b.Find):
		if a.view != ViewFind {
			model, cmd := kh.enterFind()
			return model, cmd, true
		}
	}

	switch a.view {
	case ViewNews:
		return kh.handleNewsCustomKeys(key)
	case ViewReader:
		return kh.handleReaderCustomKeys(key)
	case ViewBookmarks, ViewFind:
		if key == b.Back {
			model, cmd := kh.navigateBack()
			return model, cmd, true
		}
	}
	return a, nil, false
}

func (kh *KeyHandler) handleNewsCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	b := kh.config.Keys.Bindings
	f := a.state.Filter

	switch key {
	case kh.bind(b.Search):
		a.searchInput.Focus()
		a.searchInput.CursorEnd()
		return a, textinput.Blink, true
	case kh.bind(b.Category):
		a.state.SetCategory(a.catalog.NextCategory(f.Category, 1))
		return a, a.syncFetch(), true
	case kh.bind(b.Country):
		a.state.SetCountry(a.catalog.NextCountry(f.Country, 1))
		return a, a.syncFetch(), true
	case kh.bind(b.Sort):
		a.state.SetSort(a.catalog.NextSort(f.Sort, 1))
		return a, a.syncFetch(), true
	case kh.bind(b.NextPage):
		if !a.state.ShowPagination() {
			return a, nil, true
		}
		a.state.NextPage()
		return a, a.syncFetch(), true
	case kh.bind(b.PrevPage):
		if !a.state.ShowPagination() || !a.state.CanPrev() {
			return a, nil, true
		}
		a.state.PrevPage()
		return a, a.syncFetch(), true
	case kh.bind(b.Bookmark):
		if article, ok := a.selectedArticle(); ok {
			a.state.AddBookmark(article)
			return a, a.setStatus(MsgBookmarked(articleItem{article: article}.Title()), StatusSuccess, statusTTL), true
		}
		return a, nil, true
	case kh.bind(b.Bookmarks):
		if a.state.ShowBookmarks() {
			a.bookmarkList.SetItems(a.articleItems(a.state.Bookmarks))
			a.bookmarkList.ResetSelected()
			a.view = ViewBookmarks
		}
		return a, nil, true
	case kh.bind(b.OpenLink):
		if article, ok := a.selectedArticle(); ok && article.URL != "" {
			a.setStatus(MsgOpening(truncateMiddle(article.URL, 48)), StatusInfo, 0)
			return a, a.openLink(article.URL), true
		}
		return a, a.setStatus(MsgNothingToOpen, StatusWarn, statusTTL), true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleReaderCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	b := kh.config.Keys.Bindings
	article := a.readerArticle

	switch key {
	case b.Back:
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.bind(b.OpenLink):
		if article.URL == "" {
			return a, a.setStatus(MsgNothingToOpen, StatusWarn, statusTTL), true
		}
		a.setStatus(MsgOpening(truncateMiddle(article.URL, 48)), StatusInfo, 0)
		return a, a.openLink(article.URL), true
	case kh.bind(b.OpenImage):
		if article.URLToImage == "" {
			return a, a.setStatus(MsgNoImage, StatusWarn, statusTTL), true
		}
		a.setStatus(MsgOpening(truncateMiddle(article.URLToImage, 48)), StatusInfo, 0)
		return a, a.openImage(article.URLToImage), true
	case kh.bind(b.FullText):
		if article.URL == "" || a.loadingReader {
			return a, nil, true
		}
		a.loadingReader = true
		return a, tea.Batch(
			a.spinner.Tick,
			a.extractFullText(article),
			a.setStatus(MsgExtracting, StatusInfo, 0),
		), true
	case kh.bind(b.Bookmark):
		a.state.AddBookmark(article)
		return a, a.setStatus(MsgBookmarked(articleItem{article: article}.Title()), StatusSuccess, statusTTL), true
	}
	return a, nil, false
}

// delegateToCharm lets the focused component handle keys we don't intercept.
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	var cmd tea.Cmd

	switch a.view {
	case ViewNews:
		if a.state.Display() != newsview.DisplayLoaded {
			return a, nil
		}
		filtering := a.newsList.FilterState() == list.Filtering
		a.newsList, cmd = a.newsList.Update(msg)
		if msg.String() == "enter" && !filtering {
			if article, ok := a.selectedArticle(); ok {
				return a, a.openReader(article, ViewNews)
			}
		}
		return a, cmd

	case ViewBookmarks:
		filtering := a.bookmarkList.FilterState() == list.Filtering
		a.bookmarkList, cmd = a.bookmarkList.Update(msg)
		if msg.String() == "enter" && !filtering {
			if i, ok := a.bookmarkList.SelectedItem().(articleItem); ok {
				return a, a.openReader(i.article, ViewBookmarks)
			}
		}
		return a, cmd

	case ViewFind:
		switch msg.String() {
		case "tab", "shift+tab", "/":
			a.findInput.Focus()
			return a, textinput.Blink
		case "up":
			if a.findList.Index() == 0 {
				a.findInput.Focus()
				return a, textinput.Blink
			}
		case "enter":
			if i, ok := a.findList.SelectedItem().(findResultItem); ok {
				return a, a.openReader(i.result.Article, ViewFind)
			}
			return a, nil
		}
		a.findList, cmd = a.findList.Update(msg)
		return a, cmd

	case ViewReader:
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd

	default:
		return a, nil
	}
}

func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	a := kh.app

	switch a.view {
	case ViewReader:
		// Late renders for this article are no longer wanted.
		a.readerSeq++
		a.loadingReader = false
		a.clearStatus()
		a.view = a.previousView
		if a.view == ViewFind && len(a.findList.Items()) == 0 {
			a.findInput.Focus()
		}
	case ViewBookmarks:
		a.view = ViewNews
	case ViewFind:
		a.findInput.Blur()
		a.clearStatus()
		a.view = a.findReturn
		if a.view == ViewReader && a.loadingReader {
			a.view = ViewNews
		}
	}
	return a, nil
}

func (kh *KeyHandler) enterFind() (tea.Model, tea.Cmd) {
	a := kh.app

	a.findReturn = a.view
	if a.view == ViewReader {
		a.findReturn = a.previousView
	}
	a.view = ViewFind
	a.findSeq++
	a.findInput.Reset()
	a.findInput.Focus()
	a.findList.SetItems([]list.Item{})

	if ds, ok := a.finder.(search.DebugStatser); ok {
		if n, err := ds.DocCount(); err == nil {
			a.setStatus(MsgIndexed(n), StatusInfo, 0)
		}
	} else {
		a.clearStatus()
	}
	return a, textinput.Blink
}

// GetHelpForCurrentView returns the custom key help for the status bar.
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	b := kh.config.Keys.Bindings
	a := kh.app

	switch a.view {
	case ViewNews:
		if a.searchInput.Focused() {
			return []string{"enter: search", "esc: cancel"}
		}
		help := []string{
			kh.bind(b.Search) + ": search",
			kh.bind(b.Category) + ": category",
			kh.bind(b.Country) + ": country",
			kh.bind(b.Sort) + ": sort",
		}
		if a.state.ShowPagination() {
			help = append(help, fmt.Sprintf("%s/%s: page", kh.bind(b.PrevPage), kh.bind(b.NextPage)))
		}
		help = append(help,
			kh.bind(b.Bookmark)+": bookmark",
			kh.bind(b.Find)+": find",
			b.Quit+": quit",
		)
		return help
	case ViewReader:
		return []string{
			kh.bind(b.OpenLink) + ": open",
			kh.bind(b.OpenImage) + ": image",
			kh.bind(b.FullText) + ": full text",
			kh.bind(b.Bookmark) + ": bookmark",
			b.Back + ": back",
		}
	case ViewBookmarks:
		return []string{"enter: read", "/: filter", b.Back + ": back"}
	case ViewFind:
		return []string{"enter: read", b.Back + ": back"}
	default:
		return []string{}
	}
}
