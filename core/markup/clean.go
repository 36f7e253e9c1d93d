// Package markup strips manuscript annotation markers from raw book text,
// producing prose suitable for storage and search. It handles the page-marker
// spellings recognized by the segmenter, OpenITI milestone and editorial
// marks, poetry hemistich separators, and residual metadata blocks.
package markup

import (
	"regexp"
	"strings"
)

var (
	// Page markers, all recognized spellings.
	dashPageRegex   = regexp.MustCompile(`---PAGE[^-]*---`)
	inlinePageRegex = regexp.MustCompile(`PageV\d+P\d+`)

	// OpenITI milestone tags (ms0017 and friends).
	milestoneRegex = regexp.MustCompile(`\bms\d+\b`)

	// Editorial asides delimited by double tildes.
	editorialRegex = regexp.MustCompile(`~~[^~]*~~`)

	// Poetry hemistich separators.
	hemistichRegex = regexp.MustCompile(`\s*%\s*`)

	// Misplaced verse/line numbers: trailing integers at line end and
	// standalone numeric lines.
	trailingNumRegex   = regexp.MustCompile(`(?m)[ \t]+\d+[ \t]*$`)
	leadingNumRegex    = regexp.MustCompile(`^\d+[ \t]*\n`)
	standaloneNumRegex = regexp.MustCompile(`\n\d+[ \t]*\n`)
	tailNumRegex       = regexp.MustCompile(`\n\d+[ \t]*$`)

	// Leading # line markers (OpenITI comments/headers).
	hashPrefixRegex = regexp.MustCompile(`(?m)^#[ \t]*`)

	// Metadata block remnants.
	metaBlockRegex     = regexp.MustCompile(`(?s)#META#.*?#META#END#`)
	openitiHeaderRegex = regexp.MustCompile(`(?s)######OpenITI#.*?#META#Header#End#`)

	// Whitespace canonicalization.
	hspaceRegex    = regexp.MustCompile(`[ \t]+`)
	newlinesRegex  = regexp.MustCompile(`\n{3,}`)
	blankLineRegex = regexp.MustCompile(`(?m)^[ \t]+$`)
)

// Clean removes annotation markup from raw manuscript text. It is total: any
// input yields a (possibly empty) prose string. Callers segmenting pages must
// drop pages whose content is empty after cleaning.
func Clean(text string) string {
	// Page markers first so the later metadata-block pass never sees a
	// marker split across a partial match.
	text = dashPageRegex.ReplaceAllString(text, "")
	text = inlinePageRegex.ReplaceAllString(text, "")

	text = milestoneRegex.ReplaceAllString(text, "")

	text = editorialRegex.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "~~", "")

	text = strings.ReplaceAll(text, "%~%", " ")
	text = hemistichRegex.ReplaceAllString(text, " ")

	text = trailingNumRegex.ReplaceAllString(text, "")
	text = leadingNumRegex.ReplaceAllString(text, "")
	text = standaloneNumRegex.ReplaceAllString(text, "\n")
	text = tailNumRegex.ReplaceAllString(text, "")

	// Metadata blocks before the line-leading # pass, which would otherwise
	// eat the block delimiters' first character and leave the block behind.
	text = metaBlockRegex.ReplaceAllString(text, "")
	text = openitiHeaderRegex.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "#META#Header#End#", "")

	text = hashPrefixRegex.ReplaceAllString(text, "")

	text = hspaceRegex.ReplaceAllString(text, " ")
	text = newlinesRegex.ReplaceAllString(text, "\n\n")
	text = blankLineRegex.ReplaceAllString(text, "")

	return strings.TrimSpace(text)
}
