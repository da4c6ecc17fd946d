package search

import "github.com/pders01/headlines/internal/news"

// Finder is the search API used by the TUI.
type Finder interface {
	Add(articles ...news.Article) error
	Search(query string, limit int) ([]*Result, error)
}

// DebugStatser provides lightweight stats for visibility/debugging.
type DebugStatser interface {
	DocCount() (int, error)
}

type Result struct {
	Article news.Article
	Score   float64
}
