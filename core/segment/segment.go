// Package segment splits raw book text into an ordered page sequence and
// extracts table-of-contents headings. Pages and headings share one
// character-offset scan: heading positions are only meaningful against the
// marker offsets found in the same raw text, so the combined Parse entry
// point computes both in a single traversal.
package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jbradf0rd/projectgranada/core/markup"
	"github.com/jbradf0rd/projectgranada/core/metadata"
	"github.com/jbradf0rd/projectgranada/internal/logging"
)

// chunkSize is the soft character cap for fallback pages when a book has no
// page markers.
const chunkSize = 2000

// Page is one page of a segmented book. PageNum is a dense 1-based counter
// over kept pages; OriginalPage carries the source numbering and may repeat
// across volumes.
type Page struct {
	PageNum      int
	Volume       int
	OriginalPage int
	Content      string

	// charStart is the page's source offset, used for TOC assignment.
	charStart int
}

// TocEntry is a positioned table-of-contents heading. Position is a stable
// document-order ordinal for display, since several headings can share a page.
type TocEntry struct {
	Title    string
	Level    int
	PageNum  int
	Position int
}

// Grammar identifies which page-marker grammar matched a document.
type Grammar string

const (
	GrammarDashVolume     Grammar = "dash-volume"     // ---PAGE V01P001---
	GrammarDashSequential Grammar = "dash-sequential" // ---PAGE 1---
	GrammarOpenitiInline  Grammar = "openiti-inline"  // PageV01P001
	GrammarNone           Grammar = ""                // fallback chunking
)

// markerPattern is one page-marker grammar. Grammars are tried in strict
// priority order; the first one with any match wins and no mixing occurs.
type markerPattern struct {
	re        *regexp.Regexp
	hasVolume bool
	grammar   Grammar
}

var markerPatterns = []markerPattern{
	{regexp.MustCompile(`---PAGE\s+V?(\d{1,2})P(\d{1,4})---`), true, GrammarDashVolume},
	{regexp.MustCompile(`---PAGE\s+(\d+)---`), false, GrammarDashSequential},
	{regexp.MustCompile(`#?\s*PageV(\d{2})P(\d{2,4})`), true, GrammarOpenitiInline},
}

// marker is a matched page marker with its source offsets.
type marker struct {
	volume       int
	originalPage int
	start        int // offset of the marker itself
	contentStart int // offset just past the marker
}

// markerScan is the tagged result of scanning for page markers.
type markerScan struct {
	markers []marker
	grammar Grammar
}

// scanMarkers tries each grammar in priority order against content and
// returns the markers of the first grammar that matches at all.
func scanMarkers(content string) markerScan {
	for _, p := range markerPatterns {
		locs := p.re.FindAllStringSubmatchIndex(content, -1)
		if locs == nil {
			continue
		}
		scan := markerScan{grammar: p.grammar}
		for _, loc := range locs {
			var vol, pg int
			if p.hasVolume {
				vol = atoi(content[loc[2]:loc[3]])
				pg = atoi(content[loc[4]:loc[5]])
			} else {
				vol = 1
				pg = atoi(content[loc[2]:loc[3]])
			}
			if vol < 1 {
				vol = 1
			}
			scan.markers = append(scan.markers, marker{
				volume:       vol,
				originalPage: pg,
				start:        loc[0],
				contentStart: loc[1],
			})
		}
		return scan
	}
	return markerScan{grammar: GrammarNone}
}

// Parse segments raw book text into pages and positioned TOC entries in one
// pass over shared character offsets.
func Parse(raw string) ([]Page, []TocEntry) {
	marks := scanHeadings(raw)

	// Header metadata is captured elsewhere; only the residual body matters
	// for fallback chunking. Marker offsets are taken against the raw text
	// so they stay comparable with heading offsets.
	_, body := metadata.ParseHeader(raw)

	var pages []Page

	scan := scanMarkers(raw)
	if len(scan.markers) > 0 {
		for i, m := range scan.markers {
			end := len(raw)
			if i+1 < len(scan.markers) {
				end = scan.markers[i+1].start
			}
			content := markup.Clean(raw[m.contentStart:end])
			if content == "" {
				continue
			}
			pages = append(pages, Page{
				PageNum:      len(pages) + 1,
				Volume:       m.volume,
				OriginalPage: m.originalPage,
				Content:      content,
				charStart:    m.start,
			})
		}
	}

	if len(pages) == 0 && strings.TrimSpace(body) != "" {
		logging.ParseFallback("page markers", "paragraph chunking")
		pages = chunkParagraphs(markup.Clean(body))
	}

	return pages, assignPages(marks, pages)
}

// Segment splits raw text into pages, discarding TOC information.
func Segment(raw string) []Page {
	pages, _ := Parse(raw)
	return pages
}

// chunkParagraphs greedily accumulates blank-line-delimited paragraphs into
// pages capped at chunkSize characters. Paragraphs are never split: a chunk
// closes once adding the next paragraph would exceed the cap.
func chunkParagraphs(content string) []Page {
	var pages []Page
	var current strings.Builder
	curLen := 0 // rune count; the cap is in characters, not bytes
	charPos := 0

	flush := func() {
		chunk := strings.TrimSpace(current.String())
		if chunk == "" {
			return
		}
		pages = append(pages, Page{
			PageNum:      len(pages) + 1,
			Volume:       1,
			OriginalPage: len(pages) + 1,
			Content:      chunk,
			charStart:    charPos,
		})
		charPos += curLen
	}

	for _, para := range strings.Split(content, "\n\n") {
		paraLen := utf8.RuneCountInString(para)
		if curLen > 0 && curLen+paraLen > chunkSize {
			flush()
			current.Reset()
			curLen = 0
		}
		if curLen > 0 {
			current.WriteString("\n\n")
			curLen += 2
		}
		current.WriteString(para)
		curLen += paraLen
	}
	flush()

	return pages
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
