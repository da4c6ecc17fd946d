package tui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/pders01/headlines/internal/config"
	"github.com/pders01/headlines/internal/news"
	"github.com/pders01/headlines/internal/newsview"
	"github.com/pders01/headlines/internal/reader"
	"github.com/pders01/headlines/internal/search"
)

type stubFetcher struct {
	mu       sync.Mutex
	calls    []news.FilterState
	ctxs     []context.Context
	articles []news.Article
	err      error
}

func (s *stubFetcher) Fetch(ctx context.Context, f news.FilterState) ([]news.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, f)
	s.ctxs = append(s.ctxs, ctx)
	if s.err != nil {
		return nil, s.err
	}
	return append([]news.Article(nil), s.articles...), nil
}

func (s *stubFetcher) lastCall(t *testing.T) news.FilterState {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.calls, "no fetch was made")
	return s.calls[len(s.calls)-1]
}

type stubOpener struct {
	links  []string
	images []string
}

func (o *stubOpener) OpenLink(rawURL string) error {
	o.links = append(o.links, rawURL)
	return nil
}

func (o *stubOpener) OpenImage(rawURL string) error {
	o.images = append(o.images, rawURL)
	return nil
}

type stubExtractor struct {
	urls []string
	ft   *reader.FullText
	err  error
}

func (e *stubExtractor) Extract(_ context.Context, rawURL string) (*reader.FullText, error) {
	e.urls = append(e.urls, rawURL)
	return e.ft, e.err
}

type stubFinder struct {
	added   []news.Article
	queries []string
	results []*search.Result
}

func (f *stubFinder) Add(articles ...news.Article) error {
	f.added = append(f.added, articles...)
	return nil
}

func (f *stubFinder) Search(query string, limit int) ([]*search.Result, error) {
	f.queries = append(f.queries, query)
	return f.results, nil
}

func (f *stubFinder) DocCount() (int, error) {
	return len(f.added), nil
}

func sampleArticles() []news.Article {
	return []news.Article{
		{
			Source:      news.Source{Name: "Wire"},
			Title:       "First Story",
			Description: "<p>Alpha <b>beta</b></p>",
			URL:         "https://news.example.org/1",
			URLToImage:  "https://img.example.org/1.jpg",
			PublishedAt: "2024-03-01T10:30:00Z",
		},
		{
			Source: news.Source{Name: "Daily"},
			Title:  "Second Story",
			URL:    "https://news.example.org/2",
		},
	}
}

func newTestApp(t *testing.T, deps Deps) *App {
	t.Helper()
	app := NewApp(config.TestConfig(), deps)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app
}

// runCmd executes cmd and any commands it batches, collecting their
// messages. Callers must not pass commands that wait on a timer.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// deliver runs cmd and feeds every resulting message back into the app.
func deliver(app *App, cmd tea.Cmd) {
	for _, msg := range runCmd(cmd) {
		app.Update(msg)
	}
}

// deliverNews is deliver that also returns the commands the app scheduled in
// response to loaded news.
func deliverNews(app *App, cmd tea.Cmd) []tea.Cmd {
	var follows []tea.Cmd
	for _, msg := range runCmd(cmd) {
		_, follow := app.Update(msg)
		if _, ok := msg.(newsLoadedMsg); ok {
			follows = append(follows, follow)
		}
	}
	return follows
}

func loadedApp(t *testing.T, deps Deps) *App {
	t.Helper()
	app := newTestApp(t, deps)
	for _, follow := range deliverNews(app, app.Init()) {
		runCmd(follow)
	}
	require.Equal(t, newsview.DisplayLoaded, app.state.Display())
	return app
}

func ctrl(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyCtrlA + tea.KeyType(r-'a')}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(app *App, msg tea.KeyMsg) tea.Cmd {
	_, cmd := app.Update(msg)
	return cmd
}
