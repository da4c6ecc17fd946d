package tui

import (
	"fmt"
	"strings"

	"github.com/pders01/headlines/internal/news"
	"github.com/pders01/headlines/internal/reader"
	"github.com/pders01/headlines/internal/search"
)

const untitled = "Untitled"

type articleItem struct {
	article news.Article
	maxDesc int
}

func (i articleItem) Title() string {
	if t := strings.TrimSpace(i.article.Title); t != "" {
		return t
	}
	return untitled
}

func (i articleItem) Description() string {
	desc := truncateEnd(reader.PlainText(i.article.Description), i.maxDesc)
	return desc + articleMeta(i.article)
}

func (i articleItem) FilterValue() string {
	return i.article.Title + " " + i.article.Source.Name
}

// articleMeta renders " • source • time" for whichever parts exist.
func articleMeta(a news.Article) string {
	var b strings.Builder
	if a.Source.Name != "" {
		b.WriteString(" • " + a.Source.Name)
	}
	if t, ok := a.Published(); ok {
		b.WriteString(" • " + t.Local().Format("Jan 2, 15:04"))
	}
	return b.String()
}

type findResultItem struct {
	result *search.Result
}

func (i findResultItem) Title() string {
	return articleItem{article: i.result.Article}.Title()
}

func (i findResultItem) Description() string {
	return strings.TrimPrefix(articleMeta(i.result.Article), " • ") +
		fmt.Sprintf(" • score %.2f", i.result.Score)
}

func (i findResultItem) FilterValue() string {
	return i.result.Article.Title
}
