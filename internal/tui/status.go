package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgLoadingNews    = "Loading news..."
	MsgLoadingArticle = "Loading article…"
	MsgExtracting     = "Fetching full text…"
	MsgNoArticles     = "No articles found."
	MsgNoResults      = "No results"
	MsgNothingToOpen  = "Nothing to open"
	MsgNoImage        = "This article has no image"
)

func MsgBookmarked(title string) string {
	return fmt.Sprintf("Bookmarked '%s'", strings.TrimSpace(title))
}

func MsgOpening(target string) string {
	return "Opening " + target + "…"
}

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgIndexed(docs int) string {
	return fmt.Sprintf("Find across this session • idx: %d docs", docs)
}
