// Package search builds precision-mode query expressions, executes ranked
// retrieval against the normalized full-text index, and renders highlighted
// snippets around the first match.
package search

import (
	"strings"

	"github.com/jbradf0rd/projectgranada/core/arabic"
	"github.com/jbradf0rd/projectgranada/internal/logging"
)

// Precision selects how query terms combine.
type Precision string

const (
	// PrecisionSome matches pages containing any query term.
	PrecisionSome Precision = "some"
	// PrecisionAll matches pages containing every query term, in any order.
	// This is the default.
	PrecisionAll Precision = "all"
	// PrecisionPhrase matches the query as a contiguous phrase.
	PrecisionPhrase Precision = "phrase"
)

// Filters restrict a search conjunctively. Empty slices impose no
// restriction.
type Filters struct {
	BookIDs     []string
	AuthorIDs   []string
	CategoryIDs []int64
}

// PageHit is one raw index match joined with its book metadata, before
// snippeting.
type PageHit struct {
	PageID       int64
	BookID       string
	PageNum      int
	Content      string
	BookTitle    string
	AuthorName   string
	AuthorDeath  int
	CategoryName string
}

// Index is the ranked full-text index collaborator.
type Index interface {
	// SearchPages runs ftsQuery against the normalized index with
	// conjunctive filters, returning one result page plus the total match
	// count across all pages.
	SearchPages(ftsQuery string, f Filters, limit, offset int) ([]PageHit, int, error)
	// RecordSearch appends to the bounded search history.
	RecordSearch(query string, results int) error
	// RecentSearches lists distinct recent queries, newest first.
	RecentSearches(limit int) ([]string, error)
}

// Options controls one search call. Zero-value pagination fields are
// normalized; use DefaultOptions for the documented defaults.
type Options struct {
	Filters    Filters
	Page       int
	Limit      int
	Precision  Precision
	Simplify   bool
	FullResult bool
	Highlight  bool
}

func DefaultOptions() Options {
	return Options{
		Page:      1,
		Limit:     20,
		Precision: PrecisionAll,
		Simplify:  true,
		Highlight: true,
	}
}

// Hit is one snippeted search result.
type Hit struct {
	ID          int64  `json:"id"`
	BookID      string `json:"book_id"`
	BookTitle   string `json:"book_title"`
	Author      string `json:"author"`
	AuthorDeath int    `json:"author_death,omitempty"`
	Category    string `json:"category,omitempty"`
	Page        int    `json:"page"`
	Snippet     string `json:"snippet"`
}

// Result is one page of ranked hits plus pagination metadata.
type Result struct {
	Results   []Hit `json:"results"`
	Total     int   `json:"total"`
	Page      int   `json:"page"`
	PageCount int   `json:"pages"`
}

// Engine runs searches against an Index.
type Engine struct {
	index Index
}

func New(index Index) *Engine {
	return &Engine{index: index}
}

// Search executes query under opts. An empty or whitespace-only query
// returns an empty result without touching the index or the history.
func (e *Engine) Search(query string, opts Options) (*Result, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 20
	}

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return &Result{Results: []Hit{}, Page: opts.Page}, nil
	}

	matchQuery := trimmed
	if opts.Simplify {
		matchQuery = arabic.Normalize(matchQuery)
	}
	ftsQuery := BuildFTSQuery(matchQuery, opts.Precision)

	offset := (opts.Page - 1) * opts.Limit
	hits, total, err := e.index.SearchPages(ftsQuery, opts.Filters, opts.Limit, offset)
	if err != nil {
		return nil, err
	}

	results := make([]Hit, 0, len(hits))
	for _, h := range hits {
		results = append(results, Hit{
			ID:          h.PageID,
			BookID:      h.BookID,
			BookTitle:   h.BookTitle,
			Author:      h.AuthorName,
			AuthorDeath: h.AuthorDeath,
			Category:    h.CategoryName,
			Page:        h.PageNum,
			Snippet:     Snippet(h.Content, trimmed, opts.FullResult, opts.Highlight),
		})
	}

	// History is best-effort: a logging failure never fails the search.
	if err := e.index.RecordSearch(trimmed, total); err != nil {
		logging.Warn("search history write failed", "error", err)
	}
	logging.SearchExecuted(trimmed, string(opts.Precision), total)

	return &Result{
		Results:   results,
		Total:     total,
		Page:      opts.Page,
		PageCount: (total + opts.Limit - 1) / opts.Limit,
	}, nil
}

// History lists distinct recent queries, newest first.
func (e *Engine) History(limit int) ([]string, error) {
	if limit < 1 {
		limit = 10
	}
	return e.index.RecentSearches(limit)
}

// BuildFTSQuery renders the normalized query as an FTS5 boolean expression
// for the given precision mode. Individual terms are always quoted so
// FTS5 operators inside user input stay inert.
func BuildFTSQuery(query string, precision Precision) string {
	escaped := strings.ReplaceAll(query, `"`, `""`)
	words := strings.Fields(escaped)
	if len(words) == 0 || precision == PrecisionPhrase {
		return `"` + escaped + `"`
	}

	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = `"` + w + `"`
	}
	if precision == PrecisionSome {
		return strings.Join(quoted, " OR ")
	}
	return strings.Join(quoted, " ")
}
