package reader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/pders01/headlines/internal/debuglog"
	"github.com/pders01/headlines/internal/validation"
)

const maxPageSize = 10 << 20

// FullText is the readable part of a web page, converted to markdown.
type FullText struct {
	Title    string
	Byline   string
	SiteName string
	Markdown string
}

// Extractor fetches a page and pulls out its readable content.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (*FullText, error)
}

type HTTPExtractor struct {
	client    *http.Client
	userAgent string
	validator *validation.LinkValidator
}

func NewHTTPExtractor(timeout time.Duration, userAgent string, validator *validation.LinkValidator) *HTTPExtractor {
	if validator == nil {
		validator = validation.NewLinkValidator()
	}
	return &HTTPExtractor{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		validator: validator,
	}
}

func (e *HTTPExtractor) Extract(ctx context.Context, rawURL string) (*FullText, error) {
	pageURL, err := e.validator.Validate(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetching page: HTTP %d", resp.StatusCode)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, maxPageSize), pageURL)
	if err != nil {
		return nil, fmt.Errorf("extracting content: %w", err)
	}

	md := ToMarkdown(article.Content, pageURL.String())
	if md == "" {
		md = strings.TrimSpace(article.TextContent)
	}
	if md == "" {
		return nil, fmt.Errorf("extracting content: no readable text at %s", pageURL.Host)
	}

	debuglog.WithFields(map[string]any{
		"host":     pageURL.Host,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debugf("extracted %d characters", len(md))

	return &FullText{
		Title:    strings.TrimSpace(article.Title),
		Byline:   strings.TrimSpace(article.Byline),
		SiteName: strings.TrimSpace(article.SiteName),
		Markdown: md,
	}, nil
}
