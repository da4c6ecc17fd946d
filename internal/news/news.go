package news

import (
	"fmt"
	"strings"
	"time"
)

type Country string

type Category string

type SortOption string

const (
	SortPublishedAt SortOption = "publishedAt"
	SortPopularity  SortOption = "popularity"
	SortRelevancy   SortOption = "relevancy"
)

// Theme is the color scheme of the UI.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the opposite theme. Anything that is not dark toggles to dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ParseTheme accepts "light" or "dark" in any case.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", fmt.Errorf("unknown theme %q (valid: light, dark)", s)
	}
}

// FilterState is everything that determines which articles are requested.
// Two equal FilterStates always produce the same request.
type FilterState struct {
	Query    string
	Country  Country
	Category Category
	Sort     SortOption
	Page     int
}

func DefaultFilter() FilterState {
	return FilterState{
		Country:  "us",
		Category: "",
		Sort:     SortPublishedAt,
		Page:     1,
	}
}

// IsSearch reports whether the filter targets the free-text search endpoint
// rather than the headlines endpoint.
func (f FilterState) IsSearch() bool {
	return f.Query != ""
}

// Validate checks the filter against the catalog.
func (f FilterState) Validate(c *Catalog) error {
	if f.Page < 1 {
		return fmt.Errorf("page must be >= 1, got %d", f.Page)
	}
	if !c.HasCountry(f.Country) {
		return fmt.Errorf("unknown country %q", f.Country)
	}
	if !c.HasCategory(f.Category) {
		return fmt.Errorf("unknown category %q", f.Category)
	}
	if !c.HasSort(f.Sort) {
		return fmt.Errorf("unknown sort option %q", f.Sort)
	}
	return nil
}

type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Article is one record as returned by the news API. Fields are kept
// verbatim; optional ones are empty when the API sends null.
type Article struct {
	Source      Source `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// Published parses PublishedAt. The zero time and false are returned when
// the field is missing or not RFC 3339.
func (a Article) Published() (time.Time, bool) {
	if a.PublishedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, a.PublishedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Key identifies an article within a session. The URL is used when present.
func (a Article) Key() string {
	if a.URL != "" {
		return a.URL
	}
	return a.Source.Name + "\x00" + a.Title
}
