package segment

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Heading heuristics, scanned over pre-clean text so character offsets stay
// comparable with page-marker offsets:
//
//	### | title        level = pipe count (###, uncapped)
//	# | title          level 1
//	| title            level 2, title at least 3 characters
var (
	tripleHashRegex = regexp.MustCompile(`###\s*(\|+)\s*([^\n]*)`)
	hashPipeRegex   = regexp.MustCompile(`(?m)^#\s*\|\s*(.+)$`)
	barePipeRegex   = regexp.MustCompile(`(?m)^\|\s*([^|\n]+)$`)
)

// headingMark is a heading with its source character offset, before page
// assignment.
type headingMark struct {
	title   string
	level   int
	charPos int
}

// scanHeadings collects all heading matches, sorts them by position, and
// collapses immediately adjacent entries with an identical title. Entries
// with the same title that are not adjacent are both kept: recurring section
// headers (e.g. repeated "فصل") are legitimate.
func scanHeadings(raw string) []headingMark {
	var marks []headingMark

	for _, loc := range tripleHashRegex.FindAllStringSubmatchIndex(raw, -1) {
		pipes := raw[loc[2]:loc[3]]
		title := strings.TrimSpace(raw[loc[4]:loc[5]])
		if title == "" {
			continue
		}
		marks = append(marks, headingMark{title: title, level: len(pipes), charPos: loc[0]})
	}

	for _, loc := range hashPipeRegex.FindAllStringSubmatchIndex(raw, -1) {
		title := strings.TrimSpace(raw[loc[2]:loc[3]])
		if title == "" {
			continue
		}
		marks = append(marks, headingMark{title: title, level: 1, charPos: loc[0]})
	}

	for _, loc := range barePipeRegex.FindAllStringSubmatchIndex(raw, -1) {
		title := strings.TrimSpace(raw[loc[2]:loc[3]])
		if utf8.RuneCountInString(title) < 3 {
			continue
		}
		marks = append(marks, headingMark{title: title, level: 2, charPos: loc[0]})
	}

	sort.SliceStable(marks, func(i, j int) bool { return marks[i].charPos < marks[j].charPos })

	var deduped []headingMark
	for _, m := range marks {
		if len(deduped) > 0 && deduped[len(deduped)-1].title == m.title {
			continue
		}
		deduped = append(deduped, m)
	}

	return deduped
}

// assignPages maps each heading to the page whose source span contains it:
// the last page whose start offset is at or before the heading's offset,
// defaulting to page 1.
func assignPages(marks []headingMark, pages []Page) []TocEntry {
	entries := make([]TocEntry, 0, len(marks))
	for i, m := range marks {
		pageNum := 1
		for _, p := range pages {
			if m.charPos >= p.charStart {
				pageNum = p.PageNum
			} else {
				break
			}
		}
		entries = append(entries, TocEntry{
			Title:    m.title,
			Level:    m.level,
			PageNum:  pageNum,
			Position: i + 1,
		})
	}
	return entries
}
