package metadata

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The two header dialects are mutually exclusive: the simple #META# block is
// tried first, then the OpenITI field-code form. A document never yields
// metadata from both in one parse.
const (
	openitiHeaderEnd   = "#META#Header#End#"
	openitiHeaderStart = "######OpenITI#"
)

// metaBlockRegex captures the interior of a simple-dialect header.
var metaBlockRegex = regexp.MustCompile(`(?s)#META#[ \t]*\n(.*?)\n#META#END#`)

// metaBlock is the participle AST for the simple dialect interior: a run of
// lines, where only Key: value lines carry information.
type metaBlock struct {
	Lines []metaLine `parser:"@@*"`
}

type metaLine struct {
	Field string `parser:"@Field"`
}

// metaLexer tokenizes the block line by line. Order matters: a line with a
// colon is a field, anything else is junk to skip.
var metaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Field", Pattern: `[^:\r\n]+:[^\r\n]*`},
	{Name: "Junk", Pattern: `[^\r\n]+`},
	{Name: "Newline", Pattern: `[\r\n]+`},
})

var metaParser = participle.MustBuild[metaBlock](
	participle.Lexer(metaLexer),
	participle.Elide("Junk", "Newline"),
)

// simpleKeyMap maps simple-dialect keys to canonical field names. Unknown
// keys pass through lower-cased into Extra.
var simpleKeyMap = map[string]string{
	"Title":       "title",
	"TitleLatin":  "title_latin",
	"Author":      "author",
	"AuthorDeath": "author_death",
	"Editor":      "editor",
	"Publisher":   "publisher",
	"Edition":     "edition",
	"Volumes":     "volumes",
}

// openitiFieldRegexes are the OpenITI field-code patterns, searched
// independently over the entire text (the header block is not isolated).
var openitiFieldRegexes = map[string]*regexp.Regexp{
	"title":             regexp.MustCompile(`#META#\s*020\.BookTITLE\s*::\s*(.+)`),
	"subtitle":          regexp.MustCompile(`#META#\s*020\.BookTITLESUB\s*::\s*(.+)`),
	"alt_title":         regexp.MustCompile(`#META#\s*029\.BookTITLEalt\s*::\s*(.+)`),
	"subject":           regexp.MustCompile(`#META#\s*021\.BookSUBJ\s*::\s*(.+)`),
	"volumes":           regexp.MustCompile(`#META#\s*022\.BookVOLS\s*::\s*(\d+)`),
	"language":          regexp.MustCompile(`#META#\s*025\.BookLANG\s*::\s*(.+)`),
	"openiti_uri":       regexp.MustCompile(`#META#\s*000\.BookURI\s*::\s*(.+)`),
	"author":            regexp.MustCompile(`#META#\s*010\.AuthorNAME\s*::\s*(.+)`),
	"author_aka":        regexp.MustCompile(`#META#\s*010\.AuthorAKA\s*::\s*(.+)`),
	"author_born":       regexp.MustCompile(`#META#\s*011\.AuthorBORN\s*::\s*(\d+)`),
	"author_death":      regexp.MustCompile(`#META#\s*011\.AuthorDIED\s*::\s*(\d+)`),
	"editor":            regexp.MustCompile(`#META#\s*040\.EdEDITOR\s*::\s*(.+)`),
	"edition":           regexp.MustCompile(`#META#\s*041\.EdNUMBER\s*::\s*(.+)`),
	"publisher":         regexp.MustCompile(`#META#\s*043\.EdPUBLISHER\s*::\s*(.+)`),
	"publication_place": regexp.MustCompile(`#META#\s*044\.EdPLACE\s*::\s*(.+)`),
	"publication_year":  regexp.MustCompile(`#META#\s*045\.EdYEAR\s*::\s*(.+)`),
	"isbn":              regexp.MustCompile(`#META#\s*049\.EdISBN\s*::\s*(.+)`),
	"page_count":        regexp.MustCompile(`#META#\s*049\.EdPAGES\s*::\s*(\d+)`),
}

// subjectRegex extracts just the subject field; used by folder ingestion to
// auto-assign categories from a file preview.
var subjectRegex = openitiFieldRegexes["subject"]

// openitiSentinels are placeholder values meaning "field absent".
var openitiSentinels = map[string]bool{
	"NODATA":   true,
	"NOTGIVEN": true,
	"NOCODE":   true,
	"9999":     true,
	"-":        true,
	"":         true,
}

// ParseHeader recognizes at most one metadata dialect in content, returning
// the extracted metadata and the residual body. It never fails: absence of
// metadata is a valid outcome with the body returned unchanged.
func ParseHeader(content string) (*BookMetadata, string) {
	if loc := metaBlockRegex.FindStringSubmatchIndex(content); loc != nil {
		block := content[loc[2]:loc[3]]
		body := strings.TrimSpace(content[loc[1]:])
		return parseSimpleBlock(block), body
	}

	if strings.Contains(content, openitiHeaderEnd) || strings.Contains(content, openitiHeaderStart) {
		body := content
		if _, after, ok := strings.Cut(content, openitiHeaderEnd); ok {
			body = strings.TrimSpace(after)
		}
		return parseOpenitiFields(content), body
	}

	return &BookMetadata{}, content
}

// ExtractSubject returns the OpenITI subject field from a content preview,
// or "" if absent or a sentinel placeholder.
func ExtractSubject(preview string) string {
	m := subjectRegex.FindStringSubmatch(preview)
	if m == nil {
		return ""
	}
	value := strings.TrimSpace(m[1])
	if openitiSentinels[value] {
		return ""
	}
	return value
}

func parseSimpleBlock(block string) *BookMetadata {
	meta := &BookMetadata{}

	parsed, err := metaParser.ParseString("", block)
	if err != nil {
		// Degraded, not fatal: an unparseable block yields empty metadata.
		return meta
	}

	for _, line := range parsed.Lines {
		key, value, ok := strings.Cut(line.Field, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		mapped, known := simpleKeyMap[key]
		if !known {
			mapped = strings.ToLower(key)
		}

		switch mapped {
		case "title":
			meta.Title = value
		case "title_latin":
			meta.TitleLatin = value
		case "author":
			meta.Author = value
		case "author_death":
			if n, err := strconv.Atoi(value); err == nil {
				meta.AuthorDeath = n
			} else {
				meta.setExtra("author_death", value)
			}
		case "editor":
			meta.Editor = value
		case "publisher":
			meta.Publisher = value
		case "edition":
			meta.Edition = value
		case "volumes":
			if n, err := strconv.Atoi(value); err == nil {
				meta.Volumes = n
			} else {
				meta.setExtra("volumes", value)
			}
		default:
			meta.setExtra(mapped, value)
		}
	}

	return meta
}

func parseOpenitiFields(content string) *BookMetadata {
	meta := &BookMetadata{}

	for field, re := range openitiFieldRegexes {
		m := re.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[1])
		if openitiSentinels[value] {
			continue
		}

		switch field {
		case "title":
			meta.Title = value
		case "subtitle":
			meta.Subtitle = value
		case "alt_title":
			meta.AltTitle = value
		case "subject":
			meta.Subject = value
		case "volumes":
			if n, err := strconv.Atoi(value); err == nil {
				meta.Volumes = n
			}
		case "language":
			meta.Language = value
		case "openiti_uri":
			meta.OpenitiURI = value
		case "author":
			meta.Author = value
		case "author_aka":
			meta.AuthorAKA = value
		case "author_born":
			if n, err := strconv.Atoi(value); err == nil {
				meta.AuthorBorn = n
			}
		case "author_death":
			if n, err := strconv.Atoi(value); err == nil {
				meta.AuthorDeath = n
			}
		case "editor":
			meta.Editor = value
		case "edition":
			meta.Edition = value
		case "publisher":
			meta.Publisher = value
		case "publication_place":
			meta.PublicationPlace = value
		case "publication_year":
			meta.PublicationYear = value
		case "isbn":
			meta.ISBN = value
		case "page_count":
			if n, err := strconv.Atoi(value); err == nil {
				meta.PageCount = n
			}
		}
	}

	return meta
}
