package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/pders01/headlines/internal/debuglog"
	"github.com/pders01/headlines/internal/news"
	"github.com/pders01/headlines/internal/newsview"
	"github.com/pders01/headlines/internal/reader"
	"github.com/pders01/headlines/internal/search"
)

const (
	findDebounce = 200 * time.Millisecond
	statusTTL    = 4 * time.Second
)

type newsLoadedMsg struct {
	ticket   newsview.Ticket
	articles []news.Article
	err      error
}

type articleRenderedMsg struct {
	seq     int
	theme   news.Theme
	content string
}

type fullTextMsg struct {
	seq      int
	markdown string
	err      error
}

type findResultsMsg struct {
	seq     int
	results []*search.Result
	err     error
}

type findDebounceMsg struct {
	seq int
}

type clearStatusMsg struct {
	seq int
}

type openedMsg struct {
	what string
}

type errorMsg struct {
	err error
}

// fetchNews runs one ticket off the UI loop.
func (a *App) fetchNews(ctx context.Context, t newsview.Ticket) tea.Cmd {
	fetcher := a.fetcher
	return func() tea.Msg {
		if fetcher == nil {
			return newsLoadedMsg{ticket: t, err: errUnavailable}
		}
		articles, err := fetcher.Fetch(ctx, t.Filter)
		return newsLoadedMsg{ticket: t, articles: articles, err: err}
	}
}

// indexArticles adds accepted results to the find index.
func (a *App) indexArticles(articles []news.Article) tea.Cmd {
	finder := a.finder
	if finder == nil || len(articles) == 0 {
		return nil
	}
	return func() tea.Msg {
		if err := finder.Add(articles...); err != nil {
			debuglog.Warnf("indexing %d articles: %v", len(articles), err)
		}
		return nil
	}
}

// mdRenderer caches a glamour renderer per width and theme. The underlying
// renderer is not safe for concurrent use, so Render serializes.
type mdRenderer struct {
	mu    sync.Mutex
	r     *glamour.TermRenderer
	width int
	theme news.Theme
}

func (m *mdRenderer) Render(markdown string, width int, theme news.Theme) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.r == nil || m.width != width || m.theme != theme {
		style := "light"
		if theme == news.ThemeDark {
			style = "dark"
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		m.r, m.width, m.theme = r, width, theme
	}
	return m.r.Render(markdown)
}

func (a *App) renderArticle(markdown string) tea.Cmd {
	renderer, width, theme, seq := a.renderer, a.wrapWidth(), a.state.Theme, a.readerSeq
	return func() tea.Msg {
		out, err := renderer.Render(markdown, width, theme)
		if err != nil {
			debuglog.Warnf("rendering article: %v", err)
			return articleRenderedMsg{seq: seq, theme: theme, content: markdown}
		}
		return articleRenderedMsg{seq: seq, theme: theme, content: out}
	}
}

func (a *App) extractFullText(article news.Article) tea.Cmd {
	extractor, seq, timeout := a.extractor, a.readerSeq, a.config.API.HTTPTimeout
	return func() tea.Msg {
		if extractor == nil {
			return fullTextMsg{seq: seq, err: wrapErr("full text", errUnavailable)}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		ft, err := extractor.Extract(ctx, article.URL)
		if err != nil {
			return fullTextMsg{seq: seq, err: wrapErr("full text", err)}
		}
		return fullTextMsg{seq: seq, markdown: reader.FullTextMarkdown(article, ft)}
	}
}

func (a *App) openLink(rawURL string) tea.Cmd {
	opener := a.opener
	return func() tea.Msg {
		if opener == nil {
			return errorMsg{err: wrapErr("open link", errUnavailable)}
		}
		if err := opener.OpenLink(rawURL); err != nil {
			return errorMsg{err: wrapErr("open link", err)}
		}
		return openedMsg{what: "link"}
	}
}

func (a *App) openImage(rawURL string) tea.Cmd {
	opener := a.opener
	return func() tea.Msg {
		if opener == nil {
			return errorMsg{err: wrapErr("open image", errUnavailable)}
		}
		if err := opener.OpenImage(rawURL); err != nil {
			return errorMsg{err: wrapErr("open image", err)}
		}
		return openedMsg{what: "image"}
	}
}

func (a *App) performFind(query string) tea.Cmd {
	finder, seq, limit := a.finder, a.findSeq, a.config.Search.Limit
	return func() tea.Msg {
		if finder == nil {
			return findResultsMsg{seq: seq, err: wrapErr("find", errUnavailable)}
		}
		results, err := finder.Search(query, limit)
		return findResultsMsg{seq: seq, results: results, err: err}
	}
}

// scheduleFind waits for typing to settle before searching.
func (a *App) scheduleFind() tea.Cmd {
	a.findSeq++
	seq := a.findSeq
	return tea.Tick(findDebounce, func(time.Time) tea.Msg { return findDebounceMsg{seq: seq} })
}
