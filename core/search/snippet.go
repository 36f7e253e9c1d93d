package search

import (
	"strings"
	"unicode/utf8"

	"github.com/jbradf0rd/projectgranada/core/arabic"
)

// Snippet extracts a context window around the first occurrence of query in
// content. The match is located by a literal case-insensitive search first,
// then by searching the normalized forms, so queries without diacritics
// still land inside fully vocalized text. All offsets are in runes; the
// normalized position is an approximation of the original position, close
// enough for a human-readable window.
func Snippet(content, query string, fullResult, highlight bool) string {
	maxLen := 200
	before, after := 50, 100
	if fullResult {
		maxLen = 400
		before, after = 100, 300
	}

	if content == "" {
		return ""
	}
	if strings.TrimSpace(query) == "" {
		return truncate(content, maxLen)
	}

	runes := []rune(content)
	queryLen := utf8.RuneCountInString(query)

	pos := locate(content, query)
	if pos < 0 {
		return truncate(content, maxLen)
	}
	if pos > len(runes) {
		pos = len(runes)
	}

	start := pos - before
	if start < 0 {
		start = 0
	}
	end := pos + queryLen + after
	if end > len(runes) {
		end = len(runes)
	}

	snippet := string(runes[start:end])
	if highlight {
		snippet = markMatch(snippet, query, queryLen)
	}

	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet = snippet + "..."
	}
	return snippet
}

// locate returns the rune offset of query's first occurrence in content, or
// -1. Literal match wins; the normalized fallback maps the normalized byte
// offset to a rune count, which drifts by at most the number of characters
// normalization removed before the match.
func locate(content, query string) int {
	lowerContent := strings.ToLower(content)
	lowerQuery := strings.ToLower(query)

	if idx := strings.Index(lowerContent, lowerQuery); idx >= 0 {
		return utf8.RuneCountInString(lowerContent[:idx])
	}

	normContent := arabic.Normalize(lowerContent)
	normQuery := arabic.Normalize(lowerQuery)
	if normQuery == "" {
		return -1
	}
	if idx := strings.Index(normContent, normQuery); idx >= 0 {
		return utf8.RuneCountInString(normContent[:idx])
	}
	return -1
}

// markMatch wraps the matched region of snippet in <mark> tags. The region
// extends a few runes past the query length to cover diacritics the query
// omitted.
func markMatch(snippet, query string, queryLen int) string {
	const diacriticSlack = 5

	pos := locate(snippet, query)
	if pos < 0 {
		return snippet
	}

	runes := []rune(snippet)
	if pos > len(runes) {
		return snippet
	}
	end := pos + queryLen + diacriticSlack
	if end > len(runes) {
		end = len(runes)
	}

	return string(runes[:pos]) + "<mark>" + string(runes[pos:end]) + "</mark>" + string(runes[end:])
}

func truncate(content string, maxLen int) string {
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen]) + "..."
}
