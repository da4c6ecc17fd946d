package newsview

import (
	"strings"

	"github.com/pders01/headlines/internal/news"
)

// FetchFailedMessage is the only error text ever shown for a failed fetch.
const FetchFailedMessage = "Failed to load news. Please try again later."

// Display is what the main area shows. Exactly one applies at a time.
type Display int

const (
	DisplayLoading Display = iota
	DisplayError
	DisplayLoaded
)

func (d Display) String() string {
	switch d {
	case DisplayLoading:
		return "loading"
	case DisplayError:
		return "error"
	case DisplayLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// State holds everything the news screen renders from. Only the UI loop
// mutates it.
type State struct {
	Filter    news.FilterState
	Theme     news.Theme
	Articles  []news.Article
	Loading   bool
	Err       string
	Bookmarks []news.Article
}

func New(filter news.FilterState, theme news.Theme) *State {
	if filter.Page < 1 {
		filter.Page = 1
	}
	return &State{
		Filter: filter,
		Theme:  theme,
	}
}

func (s *State) Display() Display {
	switch {
	case s.Loading:
		return DisplayLoading
	case s.Err != "":
		return DisplayError
	default:
		return DisplayLoaded
	}
}

// ShowPagination reports whether Previous/Next are rendered.
func (s *State) ShowPagination() bool {
	return s.Display() == DisplayLoaded && len(s.Articles) > 0
}

func (s *State) ShowBookmarks() bool {
	return len(s.Bookmarks) > 0
}

func (s *State) CanPrev() bool {
	return s.Filter.Page > 1
}

// ThemeHint names the action the theme toggle performs.
func (s *State) ThemeHint() string {
	if s.Theme == news.ThemeDark {
		return "Switch to Light Mode"
	}
	return "Switch to Dark Mode"
}

// Submit commits a search. The page always goes back to 1.
func (s *State) Submit(query string) {
	s.Filter.Query = strings.TrimSpace(query)
	s.Filter.Page = 1
}

func (s *State) SetCountry(c news.Country) {
	s.Filter.Country = c
}

func (s *State) SetCategory(c news.Category) {
	s.Filter.Category = c
}

func (s *State) SetSort(o news.SortOption) {
	s.Filter.Sort = o
}

func (s *State) NextPage() {
	s.Filter.Page++
}

// PrevPage does nothing on the first page.
func (s *State) PrevPage() {
	if s.CanPrev() {
		s.Filter.Page--
	}
}

func (s *State) ToggleTheme() {
	s.Theme = s.Theme.Toggle()
}

// AddBookmark appends a; the article list is left alone.
func (s *State) AddBookmark(a news.Article) {
	s.Bookmarks = append(s.Bookmarks, a)
}

// BeginFetch marks a request as in flight.
func (s *State) BeginFetch() {
	s.Loading = true
	s.Err = ""
}

// Resolve applies the outcome of a fetch. On failure the previous articles
// are kept but the error state hides them.
func (s *State) Resolve(articles []news.Article, err error) {
	s.Loading = false
	if err != nil {
		s.Err = FetchFailedMessage
		return
	}
	s.Err = ""
	s.Articles = articles
}
