package reader

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/pders01/headlines/internal/news"
)

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// ToMarkdown converts an HTML fragment to markdown. Relative links resolve
// against pageURL. When conversion fails or yields nothing, the plain text
// of the fragment is returned instead.
func ToMarkdown(fragment, pageURL string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	result, err := mdConverter.ConvertString(fragment, converter.WithDomain(pageURL))
	if err != nil || strings.TrimSpace(result) == "" {
		return PlainText(fragment)
	}
	return strings.TrimSpace(result)
}

// ArticleMarkdown lays out a for the reader view.
func ArticleMarkdown(a news.Article) string {
	var b strings.Builder

	title := a.Title
	if title == "" {
		title = "Untitled"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	var meta []string
	if a.Source.Name != "" {
		meta = append(meta, a.Source.Name)
	}
	if a.Author != "" && a.Author != a.Source.Name {
		meta = append(meta, a.Author)
	}
	if ts, ok := a.Published(); ok {
		meta = append(meta, ts.Local().Format("Mon, 02 Jan 2006 15:04"))
	}
	if len(meta) > 0 {
		fmt.Fprintf(&b, "*%s*\n\n", strings.Join(meta, " · "))
	}

	if a.URL != "" {
		fmt.Fprintf(&b, "[Read Online](%s)\n\n", a.URL)
	}
	if a.URLToImage != "" {
		fmt.Fprintf(&b, "**Image:** %s\n\n", a.URLToImage)
	}

	b.WriteString("---\n\n")

	description := ToMarkdown(a.Description, a.URL)
	content := ToMarkdown(a.Content, a.URL)

	switch {
	case description == "" && content == "":
		b.WriteString("_No summary available._\n")
	case content == "" || strings.HasPrefix(content, description):
		b.WriteString(firstNonEmpty(content, description))
		b.WriteString("\n")
	default:
		if description != "" {
			b.WriteString(description)
			b.WriteString("\n\n")
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	return b.String()
}

// FullTextMarkdown lays out an extracted page, falling back to the
// article's own title when extraction found none.
func FullTextMarkdown(a news.Article, ft *FullText) string {
	var b strings.Builder

	title := ft.Title
	if title == "" {
		title = a.Title
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if ft.Byline != "" {
		fmt.Fprintf(&b, "*%s*\n\n", ft.Byline)
	}
	if a.URL != "" {
		fmt.Fprintf(&b, "[Read Online](%s)\n\n", a.URL)
	}

	b.WriteString("---\n\n")
	b.WriteString(ft.Markdown)
	b.WriteString("\n")
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
