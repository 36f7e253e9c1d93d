package search

import (
	"strings"
	"testing"
)

type fakeIndex struct {
	hits     []PageHit
	total    int
	lastFTS  string
	lastF    Filters
	searches int
	history  []string
}

func (f *fakeIndex) SearchPages(ftsQuery string, filters Filters, limit, offset int) ([]PageHit, int, error) {
	f.lastFTS = ftsQuery
	f.lastF = filters
	f.searches++
	return f.hits, f.total, nil
}

func (f *fakeIndex) RecordSearch(query string, results int) error {
	f.history = append(f.history, query)
	return nil
}

func (f *fakeIndex) RecentSearches(limit int) ([]string, error) {
	if len(f.history) > limit {
		return f.history[:limit], nil
	}
	return f.history, nil
}

func TestBuildFTSQuery(t *testing.T) {
	tests := []struct {
		query     string
		precision Precision
		want      string
	}{
		{"الحمد رب", PrecisionAll, `"الحمد" "رب"`},
		{"الحمد رب", PrecisionSome, `"الحمد" OR "رب"`},
		{"الحمد رب", PrecisionPhrase, `"الحمد رب"`},
		{"كلمة", PrecisionAll, `"كلمة"`},
		{`قال "الراوي"`, PrecisionPhrase, `"قال ""الراوي"""`},
		{`"`, PrecisionAll, `""""`},
	}
	for _, tt := range tests {
		if got := BuildFTSQuery(tt.query, tt.precision); got != tt.want {
			t.Errorf("BuildFTSQuery(%q, %s) = %q, want %q", tt.query, tt.precision, got, tt.want)
		}
	}
}

func TestEmptyQueryShortCircuits(t *testing.T) {
	idx := &fakeIndex{}
	eng := New(idx)

	res, err := eng.Search("  \t ", DefaultOptions())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != 0 || len(res.Results) != 0 {
		t.Errorf("result = %+v, want empty", res)
	}
	if idx.searches != 0 {
		t.Errorf("index queried %d times for empty query", idx.searches)
	}
	if len(idx.history) != 0 {
		t.Errorf("history written for empty query: %v", idx.history)
	}
}

func TestSearchNormalizesQueryAndRecordsHistory(t *testing.T) {
	idx := &fakeIndex{
		hits:  []PageHit{{PageID: 7, BookID: "kitab", PageNum: 3, Content: "الحمد لله", BookTitle: "كتاب"}},
		total: 1,
	}
	eng := New(idx)

	res, err := eng.Search("الحَمْدُ", DefaultOptions())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if idx.lastFTS != `"الحمد"` {
		t.Errorf("fts query = %q, want normalized %q", idx.lastFTS, `"الحمد"`)
	}
	if len(idx.history) != 1 || idx.history[0] != "الحَمْدُ" {
		t.Errorf("history = %v, want the raw query", idx.history)
	}
	if len(res.Results) != 1 || res.Results[0].Page != 3 || res.Results[0].BookID != "kitab" {
		t.Errorf("results = %+v", res.Results)
	}
}

func TestSearchLiteralWhenSimplifyOff(t *testing.T) {
	idx := &fakeIndex{}
	eng := New(idx)

	opts := DefaultOptions()
	opts.Simplify = false
	if _, err := eng.Search("الحَمْدُ", opts); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if idx.lastFTS != `"الحَمْدُ"` {
		t.Errorf("fts query = %q, want diacritics preserved", idx.lastFTS)
	}
}

func TestSearchPagination(t *testing.T) {
	idx := &fakeIndex{total: 45}
	eng := New(idx)

	opts := DefaultOptions()
	opts.Page = 2
	opts.Limit = 20
	res, err := eng.Search("كلمة", opts)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Page != 2 || res.PageCount != 3 || res.Total != 45 {
		t.Errorf("pagination = page %d / %d, total %d; want 2 / 3, 45",
			res.Page, res.PageCount, res.Total)
	}
}

func TestSnippetLiteralMatch(t *testing.T) {
	content := strings.Repeat("كلمة ", 40) + "المقصود بالبحث" + strings.Repeat(" كلمة", 60)

	got := Snippet(content, "المقصود", false, true)
	if !strings.Contains(got, "<mark>") {
		t.Fatalf("snippet has no highlight: %q", got)
	}
	if !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "...") {
		t.Errorf("snippet not ellipsized on both sides: %q", got)
	}
	if !strings.Contains(got, "المقصود") {
		t.Errorf("snippet lost the match: %q", got)
	}
}

func TestSnippetNormalizedFallback(t *testing.T) {
	// The content is vocalized; the query is bare. Only the normalized
	// forms line up.
	got := Snippet("قال: الحَمْدُ لِلَّهِ رَبِّ العَالَمِينَ", "الحمد لله", false, true)
	if !strings.Contains(got, "<mark>") {
		t.Errorf("no highlight via normalized fallback: %q", got)
	}
}

func TestSnippetNoMatchFallsBackToHead(t *testing.T) {
	long := strings.Repeat("نص ", 200)
	got := Snippet(long, "غائب", false, true)
	if strings.Contains(got, "<mark>") {
		t.Errorf("unexpected highlight: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("head fallback not truncated: %q", got)
	}
	if n := len([]rune(got)); n > 203 {
		t.Errorf("head fallback too long: %d runes", n)
	}
}

func TestSnippetFullResultWidth(t *testing.T) {
	content := strings.Repeat("قبل ", 80) + "هدف" + strings.Repeat(" بعد", 200)

	normal := Snippet(content, "هدف", false, false)
	full := Snippet(content, "هدف", true, false)
	if len([]rune(full)) <= len([]rune(normal)) {
		t.Errorf("full result (%d runes) not wider than normal (%d runes)",
			len([]rune(full)), len([]rune(normal)))
	}
}

func TestSnippetShortContentUntouched(t *testing.T) {
	got := Snippet("جملة قصيرة", "قصيرة", false, false)
	if strings.Contains(got, "...") {
		t.Errorf("short content was ellipsized: %q", got)
	}
}
