package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/headlines/internal/news"
	"github.com/pders01/headlines/internal/newsview"
	"github.com/pders01/headlines/internal/reader"
	"github.com/pders01/headlines/internal/search"
)

func TestInitFetchesConfiguredFilter(t *testing.T) {
	fetcher := &stubFetcher{articles: sampleArticles()}
	finder := &stubFinder{}
	app := newTestApp(t, Deps{Fetcher: fetcher, Finder: finder})

	cmd := app.Init()
	require.NotNil(t, cmd)
	assert.Equal(t, newsview.DisplayLoading, app.state.Display())
	assert.Contains(t, app.View(), MsgLoadingNews)
	assert.NotContains(t, app.View(), "Page 1")

	for _, follow := range deliverNews(app, cmd) {
		runCmd(follow)
	}

	assert.Equal(t, news.DefaultFilter(), fetcher.lastCall(t))
	assert.Equal(t, newsview.DisplayLoaded, app.state.Display())
	assert.Len(t, app.newsList.Items(), 2)
	assert.Len(t, finder.added, 2, "fetched articles are indexed for find")

	view := app.View()
	assert.Contains(t, view, "Latest News")
	assert.Contains(t, view, "First Story")
	assert.Contains(t, view, "Page 1")
	assert.NotContains(t, view, "Bookmarked Articles")
}

func TestInitIsIdempotentForSameFilter(t *testing.T) {
	app := newTestApp(t, Deps{Fetcher: &stubFetcher{}})

	require.NotNil(t, app.Init())
	assert.Nil(t, app.syncFetch(), "unchanged filter must not refetch")
}

func TestFetchFailureShowsOnlyErrorMessage(t *testing.T) {
	fetcher := &stubFetcher{articles: sampleArticles()}
	app := loadedApp(t, Deps{Fetcher: fetcher})

	fetcher.err = errors.New("boom: apiKey=test-key")
	deliver(app, press(app, ctrl('n')))

	assert.Equal(t, newsview.DisplayError, app.state.Display())
	view := app.View()
	assert.Contains(t, view, newsview.FetchFailedMessage)
	assert.NotContains(t, view, "First Story")
	assert.NotContains(t, view, "boom")
	assert.NotContains(t, view, "Page 2", "pagination is hidden on error")
	assert.Len(t, app.state.Articles, 2, "previous articles are kept but hidden")
}

func TestEmptyResultShowsNoArticles(t *testing.T) {
	app := loadedApp(t, Deps{Fetcher: &stubFetcher{}})

	view := app.View()
	assert.Contains(t, view, MsgNoArticles)
	assert.NotContains(t, view, "Page 1")
}

func TestStaleResultsAreDropped(t *testing.T) {
	fetcher := &stubFetcher{articles: sampleArticles()}
	app := loadedApp(t, Deps{Fetcher: fetcher})

	first := press(app, ctrl('g'))
	second := press(app, ctrl('g'))
	require.NotNil(t, first)
	require.NotNil(t, second)

	fetcher.articles = []news.Article{{Title: "Stale"}}
	staleMsgs := runCmd(first)

	fetcher.mu.Lock()
	firstCtx := fetcher.ctxs[len(fetcher.ctxs)-1]
	fetcher.mu.Unlock()
	assert.ErrorIs(t, firstCtx.Err(), context.Canceled, "superseded request is canceled")

	fetcher.articles = []news.Article{{Title: "Fresh"}}
	deliver(app, second)
	for _, msg := range staleMsgs {
		app.Update(msg)
	}

	require.Len(t, app.state.Articles, 1)
	assert.Equal(t, "Fresh", app.state.Articles[0].Title)
	assert.Equal(t, news.Category("technology"), app.state.Filter.Category)
}

func TestStaleResultsAreNotIndexed(t *testing.T) {
	fetcher := &stubFetcher{articles: sampleArticles()}
	finder := &stubFinder{}
	app := loadedApp(t, Deps{Fetcher: fetcher, Finder: finder})
	finder.added = nil

	first := press(app, ctrl('g'))
	second := press(app, ctrl('g'))

	fetcher.articles = []news.Article{{Title: "Stale", URL: "https://news.example.org/stale"}}
	for _, follow := range deliverNews(app, first) {
		assert.Nil(t, follow, "superseded results schedule no work")
	}
	assert.Empty(t, finder.added)

	fetcher.articles = []news.Article{{Title: "Fresh", URL: "https://news.example.org/fresh"}}
	for _, follow := range deliverNews(app, second) {
		runCmd(follow)
	}
	require.Len(t, finder.added, 1)
	assert.Equal(t, "Fresh", finder.added[0].Title)
}

func TestFailedFetchIsNotIndexed(t *testing.T) {
	fetcher := &stubFetcher{articles: sampleArticles()}
	finder := &stubFinder{}
	app := loadedApp(t, Deps{Fetcher: fetcher, Finder: finder})
	finder.added = nil

	fetcher.err = errors.New("boom")
	follows := deliverNews(app, press(app, ctrl('n')))
	require.Len(t, follows, 1)
	assert.Nil(t, follows[0])
	assert.Empty(t, finder.added)
}

func TestSelectorsCycleAndKeepPage(t *testing.T) {
	fetcher := &stubFetcher{articles: sampleArticles()}
	app := loadedApp(t, Deps{Fetcher: fetcher})

	deliver(app, press(app, ctrl('n')))
	require.Equal(t, 2, app.state.Filter.Page)

	tests := []struct {
		name  string
		key   tea.KeyMsg
		check func(t *testing.T, f news.FilterState)
	}{
		{"category", ctrl('g'), func(t *testing.T, f news.FilterState) {
			assert.Equal(t, news.Category("business"), f.Category)
		}},
		{"country", ctrl('r'), func(t *testing.T, f news.FilterState) {
			assert.Equal(t, news.Country("gb"), f.Country)
		}},
		{"sort", ctrl('o'), func(t *testing.T, f news.FilterState) {
			assert.Equal(t, news.SortPopularity, f.Sort)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deliver(app, press(app, tt.key))
			got := fetcher.lastCall(t)
			tt.check(t, got)
			assert.Equal(t, 2, got.Page)
		})
	}
}

func TestSubmitResetsPageAndForcesFetch(t *testing.T) {
	fetcher := &stubFetcher{articles: sampleArticles()}
	app := loadedApp(t, Deps{Fetcher: fetcher})

	deliver(app, press(app, ctrl('n')))
	require.Equal(t, 2, app.state.Filter.Page)

	press(app, ctrl('s'))
	require.True(t, app.searchInput.Focused())
	press(app, runes("  covid "))

	deliver(app, press(app, tea.KeyMsg{Type: tea.KeyEnter}))

	got := fetcher.lastCall(t)
	assert.Equal(t, "covid", got.Query)
	assert.Equal(t, 1, got.Page)
	assert.False(t, app.searchInput.Focused())
	assert.Equal(t, "covid", app.searchInput.Value())

	before := len(fetcher.calls)
	press(app, ctrl('s'))
	deliver(app, press(app, tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Len(t, fetcher.calls, before+1, "resubmitting the same query fetches again")
}

func TestSearchEscapeKeepsCommittedQuery(t *testing.T) {
	app := loadedApp(t, Deps{Fetcher: &stubFetcher{articles: sampleArticles()}})

	press(app, ctrl('s'))
	press(app, runes("draft"))
	press(app, tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, app.searchInput.Focused())
	assert.Empty(t, app.searchInput.Value())
	assert.Empty(t, app.state.Filter.Query)
}

func TestPagination(t *testing.T) {
	fetcher := &stubFetcher{articles: sampleArticles()}
	app := loadedApp(t, Deps{Fetcher: fetcher})

	assert.Nil(t, press(app, ctrl('p')), "previous is a no-op on page 1")
	assert.Equal(t, 1, app.state.Filter.Page)

	deliver(app, press(app, ctrl('n')))
	assert.Equal(t, 2, fetcher.lastCall(t).Page)
	assert.Contains(t, app.View(), "Page 2")

	deliver(app, press(app, ctrl('p')))
	assert.Equal(t, 1, fetcher.lastCall(t).Page)
}

func TestPaginationIgnoredWhileLoading(t *testing.T) {
	app := newTestApp(t, Deps{Fetcher: &stubFetcher{articles: sampleArticles()}})
	app.Init()

	assert.Nil(t, press(app, ctrl('n')))
	assert.Equal(t, 1, app.state.Filter.Page)
}

func TestThemeToggle(t *testing.T) {
	app := loadedApp(t, Deps{Fetcher: &stubFetcher{articles: sampleArticles()}})

	before := app.View()
	assert.Contains(t, before, "Switch to Dark Mode")

	assert.Nil(t, press(app, ctrl('t')), "theme toggle issues no command")
	assert.Equal(t, news.ThemeDark, app.state.Theme)
	assert.Contains(t, app.View(), "Switch to Light Mode")

	assert.Nil(t, press(app, ctrl('t')))
	assert.Equal(t, news.ThemeLight, app.state.Theme)
	assert.Equal(t, before, app.View())
}

func TestBookmarkLeavesArticlesAlone(t *testing.T) {
	app := loadedApp(t, Deps{Fetcher: &stubFetcher{articles: sampleArticles()}})
	articles := append([]news.Article(nil), app.state.Articles...)

	press(app, ctrl('b'))
	press(app, ctrl('b'))

	assert.Equal(t, articles, app.state.Articles)
	require.Len(t, app.state.Bookmarks, 2, "duplicates are allowed")
	assert.Equal(t, "First Story", app.state.Bookmarks[0].Title)
	assert.Contains(t, app.status, "Bookmarked 'First Story'")
	assert.Contains(t, app.View(), "Bookmarked Articles")
}

func TestNewsListFitsChrome(t *testing.T) {
	app := loadedApp(t, Deps{Fetcher: &stubFetcher{articles: sampleArticles()}})

	_, _, want := app.newsChrome()
	assert.Equal(t, want, app.newsList.Height())
	assert.Equal(t, 120, app.newsList.Width())

	before := app.newsList.Height()
	press(app, ctrl('b'))
	assert.Less(t, app.newsList.Height(), before, "bookmarks panel takes room from the list")

	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	_, _, want = app.newsChrome()
	assert.Equal(t, want, app.newsList.Height())
	assert.Equal(t, 100, app.newsList.Width())
}

func TestViewDoesNotResizeList(t *testing.T) {
	app := loadedApp(t, Deps{Fetcher: &stubFetcher{articles: sampleArticles()}})

	app.newsList.SetSize(50, 7)
	app.View()

	assert.Equal(t, 50, app.newsList.Width())
	assert.Equal(t, 7, app.newsList.Height())
}

func TestBookmarksView(t *testing.T) {
	app := loadedApp(t, Deps{Fetcher: &stubFetcher{articles: sampleArticles()}})

	press(app, ctrl('l'))
	assert.Equal(t, ViewNews, app.view, "nothing to show without bookmarks")

	press(app, ctrl('b'))
	press(app, ctrl('l'))
	require.Equal(t, ViewBookmarks, app.view)
	assert.Len(t, app.bookmarkList.Items(), 1)

	deliver(app, press(app, tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Equal(t, ViewReader, app.view)
	assert.Equal(t, "First Story", app.readerArticle.Title)

	press(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewBookmarks, app.view)
	press(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewNews, app.view)
}

func TestReaderOpenAndBack(t *testing.T) {
	app := loadedApp(t, Deps{Fetcher: &stubFetcher{articles: sampleArticles()}})

	cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ViewReader, app.view)
	assert.True(t, app.loadingReader)
	assert.Contains(t, app.readerMarkdown, "# First Story")

	deliver(app, cmd)
	assert.False(t, app.loadingReader)
	assert.NotEmpty(t, app.viewport.View())

	press(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewNews, app.view)
}

func TestReaderDropsLateRender(t *testing.T) {
	app := loadedApp(t, Deps{Fetcher: &stubFetcher{articles: sampleArticles()}})

	cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	press(app, tea.KeyMsg{Type: tea.KeyEsc})
	deliver(app, cmd)

	assert.Equal(t, ViewNews, app.view)
	assert.False(t, app.loadingReader)
}

func TestReaderOpensLinkAndImage(t *testing.T) {
	opener := &stubOpener{}
	app := loadedApp(t, Deps{Fetcher: &stubFetcher{articles: sampleArticles()}, Opener: opener})
	deliver(app, press(app, tea.KeyMsg{Type: tea.KeyEnter}))

	msgs := runCmd(press(app, ctrl('w')))
	require.Len(t, msgs, 1)
	assert.Equal(t, openedMsg{what: "link"}, msgs[0])

	msgs = runCmd(press(app, ctrl('v')))
	require.Len(t, msgs, 1)
	assert.Equal(t, openedMsg{what: "image"}, msgs[0])

	assert.Equal(t, []string{"https://news.example.org/1"}, opener.links)
	assert.Equal(t, []string{"https://img.example.org/1.jpg"}, opener.images)
}

func TestReaderWithoutImage(t *testing.T) {
	opener := &stubOpener{}
	app := loadedApp(t, Deps{Fetcher: &stubFetcher{articles: sampleArticles()}, Opener: opener})

	press(app, tea.KeyMsg{Type: tea.KeyDown})
	deliver(app, press(app, tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, "Second Story", app.readerArticle.Title)

	press(app, ctrl('v'))
	assert.Empty(t, opener.images)
	assert.Equal(t, MsgNoImage, app.status)
}

func TestReaderFullText(t *testing.T) {
	extractor := &stubExtractor{ft: &reader.FullText{Markdown: "Extracted body paragraph."}}
	app := loadedApp(t, Deps{Fetcher: &stubFetcher{articles: sampleArticles()}, Extractor: extractor})
	deliver(app, press(app, tea.KeyMsg{Type: tea.KeyEnter}))

	cmd := press(app, ctrl('e'))
	assert.True(t, app.loadingReader)
	assert.Equal(t, MsgExtracting, app.status)

	// The extraction result schedules a render, which finishes loading.
	for _, msg := range runCmd(cmd) {
		_, next := app.Update(msg)
		deliver(app, next)
	}

	assert.Equal(t, []string{"https://news.example.org/1"}, extractor.urls)
	assert.Contains(t, app.readerMarkdown, "Extracted body paragraph.")
	assert.False(t, app.loadingReader)
}

func TestReaderFullTextFailure(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("no readable content")}
	app := loadedApp(t, Deps{Fetcher: &stubFetcher{articles: sampleArticles()}, Extractor: extractor})
	deliver(app, press(app, tea.KeyMsg{Type: tea.KeyEnter}))
	original := app.readerMarkdown

	for _, msg := range runCmd(press(app, ctrl('e'))) {
		app.Update(msg)
	}

	assert.False(t, app.loadingReader)
	assert.Equal(t, StatusError, app.statusKind)
	assert.Contains(t, app.status, "no readable content")
	assert.Equal(t, original, app.readerMarkdown)
}

func TestFind(t *testing.T) {
	articles := sampleArticles()
	finder := &stubFinder{results: []*search.Result{{Article: articles[1], Score: 1.5}}}
	app := loadedApp(t, Deps{Fetcher: &stubFetcher{articles: articles}, Finder: finder})

	press(app, ctrl('f'))
	require.Equal(t, ViewFind, app.view)
	assert.True(t, app.findInput.Focused())
	assert.Equal(t, MsgIndexed(2), app.status)

	app.findInput.SetValue("second")
	stale := app.findSeq
	app.scheduleFind()

	_, cmd := app.Update(findDebounceMsg{seq: stale})
	assert.Nil(t, cmd, "superseded debounce is ignored")

	_, cmd = app.Update(findDebounceMsg{seq: app.findSeq})
	deliver(app, cmd)

	assert.Equal(t, []string{"second"}, finder.queries)
	require.Len(t, app.findList.Items(), 1)
	assert.Equal(t, MsgResultsCount(1), app.status)

	press(app, tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, app.findInput.Focused())

	deliver(app, press(app, tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, ViewReader, app.view)
	assert.Equal(t, "Second Story", app.readerArticle.Title)

	press(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewFind, app.view)
	press(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewNews, app.view)
}

func TestMissingServicesReportUnavailable(t *testing.T) {
	app := loadedApp(t, Deps{Fetcher: &stubFetcher{articles: sampleArticles()}})
	deliver(app, press(app, tea.KeyMsg{Type: tea.KeyEnter}))

	msgs := runCmd(press(app, ctrl('w')))
	require.Len(t, msgs, 1)
	em, ok := msgs[0].(errorMsg)
	require.True(t, ok)
	assert.ErrorIs(t, em.err, errUnavailable)
}
