package search

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/headlines/internal/news"
)

// minQueryLen is the shortest query that is sent to the index.
const minQueryLen = 2

// Index is a memory-only full-text index of every article seen in the
// session. It is safe for concurrent use.
type Index struct {
	mu   sync.RWMutex
	idx  bleve.Index
	docs map[string]news.Article
}

func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	return &Index{
		idx:  idx,
		docs: make(map[string]news.Article),
	}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.IncludeTermVectors = true

	text := func() *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		fm.Store = false
		fm.IncludeTermVectors = false
		return fm
	}

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("description", text())
	dm.AddFieldMappingsAt("content", text())
	dm.AddFieldMappingsAt("source", text())
	dm.AddFieldMappingsAt("author", text())
	dm.AddFieldMappingsAt("url", text())

	im.DefaultMapping = dm
	return im
}

// Add indexes articles. An article already present is replaced.
func (x *Index) Add(articles ...news.Article) error {
	if len(articles) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	batch := x.idx.NewBatch()
	for _, a := range articles {
		id := docID(a)
		if err := batch.Index(id, map[string]any{
			"title":       a.Title,
			"description": a.Description,
			"content":     a.Content,
			"source":      a.Source.Name,
			"author":      a.Author,
			"url":         a.URL,
		}); err != nil {
			return err
		}
		x.docs[id] = a
	}
	return x.idx.Batch(batch)
}

// Search returns up to limit articles ranked by relevance. Queries shorter
// than two characters return nothing.
func (x *Index) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < minQueryLen {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	q := buildQuery(tokenize(query))
	if q == nil {
		return []*Result{}, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	res, err := x.idx.Search(bleve.NewSearchRequestOptions(q, limit, 0, false))
	if err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		a, ok := x.docs[h.ID]
		if !ok {
			continue
		}
		out = append(out, &Result{Article: a, Score: h.Score})
	}
	return out, nil
}

var fieldBoosts = []struct {
	field  string
	match  float64
	prefix float64
}{
	{"title", 4.0, 3.5},
	{"description", 2.0, 1.8},
	{"source", 1.5, 1.2},
	{"author", 1.2, 1.0},
	{"content", 1.0, 0.8},
	{"url", 0.5, 0.3},
}

// buildQuery ORs a match and a prefix query per token and field.
func buildQuery(tokens []string) bleveQuery.Query {
	var qs []bleveQuery.Query
	for _, tok := range tokens {
		for _, fb := range fieldBoosts {
			mq := bleve.NewMatchQuery(tok)
			mq.SetField(fb.field)
			mq.SetBoost(fb.match)
			qs = append(qs, mq)

			pq := bleve.NewPrefixQuery(tok)
			pq.SetField(fb.field)
			pq.SetBoost(fb.prefix)
			qs = append(qs, pq)
		}
	}
	if len(qs) == 0 {
		return nil
	}
	return bleve.NewDisjunctionQuery(qs...)
}

// DocCount reports total documents in the index.
func (x *Index) DocCount() (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	n, err := x.idx.DocCount()
	return int(n), err
}

func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.idx.Close()
}

func docID(a news.Article) string {
	sum := sha256.Sum256([]byte(a.Key()))
	return hex.EncodeToString(sum[:])
}

// tokenize lowercases text and splits it on anything that is not a letter
// or digit. Single characters are dropped.
func tokenize(text string) []string {
	var terms []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 1 {
			terms = append(terms, current.String())
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()

	return terms
}
