package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pders01/headlines/internal/config"
	"github.com/pders01/headlines/internal/debuglog"
	"github.com/pders01/headlines/internal/news"
)

const (
	everythingPath   = "/v2/everything"
	topHeadlinesPath = "/v2/top-headlines"

	// maxBodySize bounds how much of a response is read before decoding.
	maxBodySize = 8 << 20
)

// ErrFetchFailed wraps every failure returned by Fetch.
var ErrFetchFailed = errors.New("fetch failed")

// APIError is a response the API answered with, either a non-2xx status or a
// body with "status":"error".
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	// RetryAfter is how long the server asked clients to back off, zero
	// when it did not say.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	case e.Message != "":
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("api error %d", e.StatusCode)
	}
}

type response struct {
	Status       string         `json:"status"`
	TotalResults int            `json:"totalResults"`
	Articles     []news.Article `json:"articles"`
	Code         string         `json:"code"`
	Message      string         `json:"message"`
}

type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	client    *http.Client
}

func NewClient(cfg config.APIConfig) *Client {
	// The key reaches error strings both raw and query-escaped.
	debuglog.Redact(cfg.Key, url.QueryEscape(cfg.Key))
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.Key,
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
	}
}

// BuildURL returns the request URL for f. Parameters are written in a fixed
// order and category is always present on the headlines endpoint.
func (c *Client) BuildURL(f news.FilterState) string {
	var b strings.Builder
	b.WriteString(c.baseURL)

	if f.IsSearch() {
		b.WriteString(everythingPath)
		writeParam(&b, '?', "q", f.Query)
		writeParam(&b, '&', "sortBy", string(f.Sort))
	} else {
		b.WriteString(topHeadlinesPath)
		writeParam(&b, '?', "country", string(f.Country))
		writeParam(&b, '&', "category", string(f.Category))
	}
	writeParam(&b, '&', "page", strconv.Itoa(f.Page))
	writeParam(&b, '&', "apiKey", c.apiKey)

	return b.String()
}

func writeParam(b *strings.Builder, sep byte, key, value string) {
	b.WriteByte(sep)
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(value))
}

// Fetch requests the articles for f. Any failure is wrapped in ErrFetchFailed.
func (c *Client) Fetch(ctx context.Context, f news.FilterState) ([]news.Article, error) {
	endpoint := topHeadlinesPath
	if f.IsSearch() {
		endpoint = everythingPath
	}
	log := debuglog.WithFields(map[string]any{
		"request":  uuid.NewString(),
		"endpoint": endpoint,
		"page":     f.Page,
	})

	start := time.Now()
	articles, err := c.fetch(ctx, f)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		log.With("duration", elapsed).Debugf("fetch failed: %v", err)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
			log.Warnf("server asked to retry after %s", apiErr.RetryAfter)
		}
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	log.With("duration", elapsed).Infof("fetched %d articles", len(articles))
	return articles, nil
}

func (c *Client) fetch(ctx context.Context, f news.FilterState) ([]news.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BuildURL(f), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting articles: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var payload response
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       payload.Code,
			Message:    payload.Message,
			RetryAfter: retryAfter(resp),
		}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decoding response: %w", decodeErr)
	}
	if payload.Status == "error" {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       payload.Code,
			Message:    payload.Message,
		}
	}

	if payload.Articles == nil {
		return []news.Article{}, nil
	}
	return payload.Articles, nil
}

// retryAfter reads a Retry-After header given in seconds. HTTP dates are
// not used by the API and yield zero.
func retryAfter(resp *http.Response) time.Duration {
	v := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if v == "" {
		return 0
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
