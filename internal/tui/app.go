package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/headlines/internal/config"
	"github.com/pders01/headlines/internal/debuglog"
	"github.com/pders01/headlines/internal/news"
	"github.com/pders01/headlines/internal/newsview"
	"github.com/pders01/headlines/internal/reader"
	"github.com/pders01/headlines/internal/search"
)

const maxBookmarkPreview = 5

// NewsFetcher retrieves one page of articles for a filter.
type NewsFetcher interface {
	Fetch(ctx context.Context, f news.FilterState) ([]news.Article, error)
}

// Opener hands links and images to external programs.
type Opener interface {
	OpenLink(rawURL string) error
	OpenImage(rawURL string) error
}

// Deps are the services the UI talks to. Any of them may be nil; the
// matching actions then report that they are not available.
type Deps struct {
	Fetcher   NewsFetcher
	Extractor reader.Extractor
	Opener    Opener
	Finder    search.Finder
}

type App struct {
	config     *config.Config
	catalog    *news.Catalog
	keyHandler *KeyHandler
	styles     *Styles

	state       *newsview.State
	sync        newsview.Synchronizer
	cancelFetch context.CancelFunc

	fetcher   NewsFetcher
	extractor reader.Extractor
	opener    Opener
	finder    search.Finder

	newsList     list.Model
	bookmarkList list.Model
	findList     list.Model
	searchInput  textinput.Model
	findInput    textinput.Model
	viewport     viewport.Model
	spinner      spinner.Model
	renderer     *mdRenderer

	view         View
	previousView View
	findReturn   View
	width        int
	height       int

	readerArticle  news.Article
	readerMarkdown string
	readerSeq      int
	loadingReader  bool

	findSeq int

	status     string
	statusKind StatusKind
	statusSeq  int
}

func NewApp(cfg *config.Config, deps Deps) *App {
	newsList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	newsList.SetShowTitle(false)
	newsList.SetShowStatusBar(false)
	newsList.SetShowHelp(false)
	newsList.SetFilteringEnabled(true)
	newsList.KeyMap.Quit.SetEnabled(false)

	bookmarkList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	bookmarkList.Title = "› bookmarked articles"
	bookmarkList.SetShowStatusBar(false)
	bookmarkList.SetShowHelp(false)
	bookmarkList.SetFilteringEnabled(true)
	bookmarkList.KeyMap.Quit.SetEnabled(false)

	findList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	findList.Title = "› results"
	findList.SetShowStatusBar(false)
	findList.SetShowHelp(false)
	findList.SetFilteringEnabled(false)
	findList.KeyMap.Quit.SetEnabled(false)

	si := textinput.New()
	si.Placeholder = "Search for news..."
	si.Prompt = "⌕ "

	fi := textinput.New()
	fi.Placeholder = "Find in loaded articles..."

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	app := &App{
		config:       cfg,
		catalog:      news.DefaultCatalog(),
		state:        newsview.New(cfg.Filter(), cfg.Theme()),
		fetcher:      deps.Fetcher,
		extractor:    deps.Extractor,
		opener:       deps.Opener,
		finder:       deps.Finder,
		newsList:     newsList,
		bookmarkList: bookmarkList,
		findList:     findList,
		searchInput:  si,
		findInput:    fi,
		viewport:     viewport.New(0, 0),
		spinner:      sp,
		renderer:     &mdRenderer{},
		view:         ViewNews,
		previousView: ViewNews,
		findReturn:   ViewNews,
	}
	app.searchInput.SetValue(app.state.Filter.Query)
	app.applyTheme()
	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

// applyTheme rebuilds every style from the current theme's colors.
func (a *App) applyTheme() {
	colors := a.config.UI.Colors.Light
	if a.state.Theme == news.ThemeDark {
		colors = a.config.UI.Colors.Dark
	}
	a.styles = NewStyles(colors)

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(a.styles.Primary).
		BorderLeftForeground(a.styles.Primary)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.
		Foreground(a.styles.Accent).
		BorderLeftForeground(a.styles.Primary)
	d.Styles.NormalDesc = d.Styles.NormalDesc.Foreground(a.styles.Muted)

	a.newsList.SetDelegate(d)
	a.bookmarkList.SetDelegate(d)
	a.findList.SetDelegate(d)
	a.bookmarkList.Styles.Title = a.styles.Title
	a.findList.Styles.Title = a.styles.Title
	a.spinner.Style = lipgloss.NewStyle().Foreground(a.styles.Primary)
}

// wrapWidth is the reader's word wrap, bounded by the configured limits.
func (a *App) wrapWidth() int {
	art := a.config.UI.Article
	if a.width < 50 {
		return max(a.width-4, 20)
	}
	return clamp(a.width*9/10, art.WordWrapMinWidth, art.WordWrapMaxWidth)
}

func (a *App) busy() bool {
	return a.state.Loading || a.loadingReader
}

// setStatus shows text in the status bar. A positive ttl clears it again
// unless another status replaced it meanwhile.
func (a *App) setStatus(text string, kind StatusKind, ttl time.Duration) tea.Cmd {
	a.status, a.statusKind = text, kind
	a.statusSeq++
	if ttl <= 0 {
		return nil
	}
	seq := a.statusSeq
	return tea.Tick(ttl, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

func (a *App) clearStatus() {
	a.status = ""
	a.statusSeq++
}

// syncFetch fetches only when the filter changed since the last request.
func (a *App) syncFetch() tea.Cmd {
	t, ok := a.sync.Sync(a.state.Filter)
	if !ok {
		return nil
	}
	return a.startFetch(t)
}

// startFetch supersedes any in-flight request with t.
func (a *App) startFetch(t newsview.Ticket) tea.Cmd {
	if a.cancelFetch != nil {
		a.cancelFetch()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelFetch = cancel
	a.state.BeginFetch()

	debuglog.WithFields(map[string]any{
		"gen":      t.Gen,
		"query":    t.Filter.Query,
		"country":  t.Filter.Country,
		"category": t.Filter.Category,
		"sort":     t.Filter.Sort,
		"page":     t.Filter.Page,
	}).Debugf("fetching news")

	return tea.Batch(a.spinner.Tick, a.fetchNews(ctx, t))
}

// submitSearch commits the search box. Submitting always refetches, even
// when the query did not change.
func (a *App) submitSearch() tea.Cmd {
	a.state.Submit(a.searchInput.Value())
	a.searchInput.SetValue(a.state.Filter.Query)
	a.searchInput.Blur()
	return a.startFetch(a.sync.Force(a.state.Filter))
}

func (a *App) toggleTheme() {
	a.state.ToggleTheme()
	a.applyTheme()
	if a.view == ViewReader && !a.loadingReader {
		a.rerenderReader()
	}
}

// rerenderReader renders the stored markdown on the UI loop.
func (a *App) rerenderReader() {
	if a.readerMarkdown == "" {
		return
	}
	out, err := a.renderer.Render(a.readerMarkdown, a.wrapWidth(), a.state.Theme)
	if err != nil {
		debuglog.Warnf("rendering article: %v", err)
		out = a.readerMarkdown
	}
	a.viewport.SetContent(out)
}

func (a *App) openReader(article news.Article, from View) tea.Cmd {
	a.readerArticle = article
	a.readerMarkdown = reader.ArticleMarkdown(article)
	a.readerSeq++
	a.loadingReader = true
	a.previousView = from
	a.view = ViewReader
	a.viewport.SetContent("")
	return tea.Batch(
		a.spinner.Tick,
		a.renderArticle(a.readerMarkdown),
		a.setStatus(MsgLoadingArticle, StatusInfo, 0),
	)
}

func (a *App) articleItems(articles []news.Article) []list.Item {
	items := make([]list.Item, len(articles))
	for i, art := range articles {
		items[i] = articleItem{article: art, maxDesc: a.config.UI.Article.MaxDescriptionLength}
	}
	return items
}

func (a *App) selectedArticle() (news.Article, bool) {
	if a.state.Display() != newsview.DisplayLoaded {
		return news.Article{}, false
	}
	i, ok := a.newsList.SelectedItem().(articleItem)
	if !ok {
		return news.Article{}, false
	}
	return i.article, true
}

func (a *App) Init() tea.Cmd {
	return a.syncFetch()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.update(msg)
	a.layoutNews()
	return model, cmd
}

// layoutNews fits the article list between the news chrome, whose height
// depends on pagination and the bookmarks panel.
func (a *App) layoutNews() {
	_, _, bodyHeight := a.newsChrome()
	if a.newsList.Width() != a.width || a.newsList.Height() != bodyHeight {
		a.newsList.SetSize(a.width, bodyHeight)
	}
}

func (a *App) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.bookmarkList.SetSize(msg.Width, msg.Height-3)
		a.findList.SetSize(msg.Width, max(msg.Height-10, 5))
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - 3

		inputWidth := msg.Width - 8
		if inputWidth < 10 {
			inputWidth = msg.Width
		}
		a.searchInput.Width = inputWidth
		a.findInput.Width = inputWidth

		if a.view == ViewReader && !a.loadingReader {
			a.rerenderReader()
		}

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case newsLoadedMsg:
		if !a.sync.Current(msg.ticket) {
			debuglog.Debugf("dropping stale results for generation %d", msg.ticket.Gen)
			return a, nil
		}
		if a.cancelFetch != nil {
			a.cancelFetch()
			a.cancelFetch = nil
		}
		if msg.err != nil {
			debuglog.WithFields(map[string]any{"gen": msg.ticket.Gen}).Errorf("fetch failed: %v", msg.err)
		} else {
			debuglog.Debugf("loaded %d articles for generation %d", len(msg.articles), msg.ticket.Gen)
		}
		a.state.Resolve(msg.articles, msg.err)
		if msg.err != nil {
			return a, nil
		}
		a.newsList.ResetFilter()
		a.newsList.SetItems(a.articleItems(a.state.Articles))
		a.newsList.ResetSelected()
		return a, a.indexArticles(msg.articles)

	case articleRenderedMsg:
		if msg.seq != a.readerSeq || a.view != ViewReader {
			return a, nil
		}
		a.loadingReader = false
		a.viewport.SetContent(msg.content)
		a.viewport.GotoTop()
		a.clearStatus()
		if msg.theme != a.state.Theme {
			a.rerenderReader()
		}
		return a, nil

	case fullTextMsg:
		if msg.seq != a.readerSeq || a.view != ViewReader {
			return a, nil
		}
		if msg.err != nil {
			a.loadingReader = false
			debuglog.Warnf("%v", msg.err)
			return a, a.setStatus(msg.err.Error(), StatusError, statusTTL)
		}
		a.readerMarkdown = msg.markdown
		return a, a.renderArticle(msg.markdown)

	case findDebounceMsg:
		if msg.seq != a.findSeq || a.view != ViewFind {
			return a, nil
		}
		return a, a.performFind(strings.TrimSpace(a.findInput.Value()))

	case findResultsMsg:
		if msg.seq != a.findSeq || a.view != ViewFind {
			return a, nil
		}
		if msg.err != nil {
			debuglog.Warnf("find: %v", msg.err)
			return a, a.setStatus(msg.err.Error(), StatusError, statusTTL)
		}
		items := make([]list.Item, len(msg.results))
		for i, r := range msg.results {
			items[i] = findResultItem{result: r}
		}
		a.findList.SetItems(items)
		a.findList.ResetSelected()
		if len(items) == 0 {
			return a, a.setStatus(MsgNoResults, StatusWarn, 0)
		}
		return a, a.setStatus(MsgResultsCount(len(items)), StatusInfo, 0)

	case openedMsg:
		return a, a.setStatus("Opened "+msg.what, StatusSuccess, statusTTL)

	case errorMsg:
		debuglog.Warnf("%v", msg.err)
		return a, a.setStatus(msg.err.Error(), StatusError, statusTTL)

	case clearStatusMsg:
		if msg.seq == a.statusSeq {
			a.status = ""
		}
		return a, nil
	}

	var cmd tea.Cmd
	switch a.view {
	case ViewNews:
		a.newsList, cmd = a.newsList.Update(msg)
		cmds = append(cmds, cmd)
		a.searchInput, cmd = a.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	case ViewBookmarks:
		a.bookmarkList, cmd = a.bookmarkList.Update(msg)
		cmds = append(cmds, cmd)
	case ViewFind:
		a.findInput, cmd = a.findInput.Update(msg)
		cmds = append(cmds, cmd)
		a.findList, cmd = a.findList.Update(msg)
		cmds = append(cmds, cmd)
	case ViewReader:
		if _, ok := msg.(tea.MouseMsg); ok {
			a.viewport, cmd = a.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return a, tea.Batch(cmds...)
}

func (a *App) View() string {
	var content string

	switch a.view {
	case ViewNews:
		content = a.newsView()
	case ViewReader:
		if a.loadingReader {
			content = a.styles.renderCentered(a.width, a.height-3,
				a.spinner.View()+" "+a.styles.MutedText.Render(MsgLoadingArticle))
		} else {
			content = a.viewport.View()
		}
	case ViewBookmarks:
		content = a.bookmarkList.View()
	case ViewFind:
		content = a.findView()
	}

	if status := a.getCustomStatusBar(); status != "" {
		separator := a.styles.Separator.Render(strings.Repeat("─", max(a.width-1, 1)))
		return lipgloss.JoinVertical(lipgloss.Top, content, separator, status)
	}
	return content
}

// newsChrome renders the rows around the article list and returns the
// height left for it.
func (a *App) newsChrome() (top, bottom []string, bodyHeight int) {
	s := a.styles
	kh := a.keyHandler

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		s.Title.Render("Latest News"),
		"  ",
		s.Help.Render(a.state.ThemeHint()+" ("+kh.bind(a.config.Keys.Bindings.Theme)+")"),
	)

	input := s.renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width)

	b := a.config.Keys.Bindings
	f := a.state.Filter
	selectors := strings.Join([]string{
		s.renderSelector("Category", a.catalog.CategoryLabel(f.Category), kh.bind(b.Category)),
		s.renderSelector("Select Country", a.catalog.CountryLabel(f.Country), kh.bind(b.Country)),
		s.renderSelector("Sort By", a.catalog.SortLabel(f.Sort), kh.bind(b.Sort)),
	}, s.Separator.Render(" · "))

	top = []string{header, input, selectors, ""}
	if a.state.ShowPagination() {
		bottom = append(bottom, "", a.paginationView())
	}
	if a.state.ShowBookmarks() {
		bottom = append(bottom, a.bookmarksPanel())
	}

	chrome := lipgloss.Height(strings.Join(top, "\n")) + 2
	if len(bottom) > 0 {
		chrome += lipgloss.Height(strings.Join(bottom, "\n"))
	}
	return top, bottom, max(a.height-chrome, 3)
}

func (a *App) newsView() string {
	s := a.styles
	top, bottom, bodyHeight := a.newsChrome()

	var body string
	switch a.state.Display() {
	case newsview.DisplayLoading:
		body = s.renderCentered(a.width, bodyHeight,
			a.spinner.View()+" "+s.MutedText.Render(MsgLoadingNews))
	case newsview.DisplayError:
		body = s.renderCentered(a.width, bodyHeight, s.ErrorMessage.Render(newsview.FetchFailedMessage))
	default:
		if len(a.state.Articles) == 0 {
			body = s.renderCentered(a.width, bodyHeight, s.MutedText.Render(MsgNoArticles))
		} else {
			body = a.newsList.View()
		}
	}

	rows := append(top, body)
	rows = append(rows, bottom...)
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) paginationView() string {
	s := a.styles
	b := a.config.Keys.Bindings

	prev := s.Disabled.Render("‹ Previous")
	if a.state.CanPrev() {
		prev = s.Link.Render("‹ Previous") + " " + s.Time.Render("("+a.keyHandler.bind(b.PrevPage)+")")
	}
	next := s.Link.Render("Next ›") + " " + s.Time.Render("("+a.keyHandler.bind(b.NextPage)+")")
	page := s.Text.Render(fmt.Sprintf("Page %d", a.state.Filter.Page))

	return lipgloss.JoinHorizontal(lipgloss.Top, prev, "   ", page, "   ", next)
}

func (a *App) bookmarksPanel() string {
	s := a.styles
	bookmarks := a.state.Bookmarks

	rows := []string{s.Header.Render("Bookmarked Articles")}
	limit := min(len(bookmarks), maxBookmarkPreview)
	for _, bm := range bookmarks[len(bookmarks)-limit:] {
		title := articleItem{article: bm}.Title()
		rows = append(rows, s.Text.Render("• "+truncateEnd(title, max(a.width-8, 10))))
	}
	if extra := len(bookmarks) - limit; extra > 0 {
		rows = append(rows, s.MutedText.Render(fmt.Sprintf("+%d more (%s)", extra,
			a.keyHandler.bind(a.config.Keys.Bindings.Bookmarks))))
	}

	return s.Panel.Width(max(a.width-4, 10)).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a *App) findView() string {
	s := a.styles

	var helpText string
	switch {
	case a.findInput.Focused():
		helpText = "Type to find • Tab/↓: results • Esc: back"
	case len(a.findList.Items()) > 0:
		helpText = "↑↓: navigate • Enter: read • Tab: find box • Esc: back"
	default:
		helpText = "No results • Tab: find box • Esc: back"
	}

	content := lipgloss.JoinVertical(lipgloss.Top,
		s.renderHeader("› find", "", a.width),
		"",
		s.renderInputFrame(a.findInput.View(), a.findInput.Focused(), a.findInput.Width),
		s.MutedText.Render(helpText),
		"",
		a.findList.View(),
	)

	return lipgloss.NewStyle().
		Width(a.width).
		MaxHeight(max(a.height-3, 1)).
		Render(content)
}

func (a *App) getCustomStatusBar() string {
	width := max(a.width, 20)
	if a.status != "" {
		return a.styles.StatusBar.Width(width).Render(
			a.statusKind.style(a.styles).Render(truncateEnd(a.status, width-2)))
	}

	commands := a.keyHandler.GetHelpForCurrentView()
	if len(commands) == 0 {
		return ""
	}
	return a.styles.StatusBar.Width(width).Render(
		truncateEnd(strings.Join(commands, " • "), width-2))
}
