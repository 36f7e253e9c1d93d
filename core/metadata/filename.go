package metadata

import (
	"regexp"
	"strconv"
	"strings"
)

// openitiFilenameRegex matches the OpenITI filename convention:
//
//	0001AbuTalibCabdManaf.Diwan.JK007501-ara1
//	│   │                 │     │        │
//	│   │                 │     │        └── language code
//	│   │                 │     └── version id
//	│   │                 └── book title (CamelCase)
//	│   └── author name (CamelCase)
//	└── author death date (AH)
var openitiFilenameRegex = regexp.MustCompile(`^(\d{4})([A-Za-z]+)\.([^.]+)(?:\.([^-]+))?(?:-([a-z]{3}\d?))?$`)

var camelBoundaryRegex = regexp.MustCompile(`([a-z])([A-Z])`)

// bookFileExtensions are the plain-text extensions accepted for book files.
// OpenITI files use dots as field separators, so only these are treated as
// real extensions when deriving the filename stem.
var bookFileExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// arabicNames maps common transliterated name and title tokens to their
// Arabic spellings, for a best-effort Arabic rendering of filename metadata.
var arabicNames = map[string]string{
	"Abu": "أبو", "Ibn": "ابن", "Al": "ال", "Abd": "عبد",
	"Muhammad": "محمد", "Ahmad": "أحمد", "Ali": "علي",
	"Umar": "عمر", "Uthman": "عثمان", "Bukhari": "البخاري",
	"Muslim": "مسلم", "Tirmidhi": "الترمذي", "Nasai": "النسائي",
	"Malik": "مالك", "Hanbal": "حنبل", "Dawud": "داود",
	"Maja": "ماجه", "Darimi": "الدارمي", "Talib": "طالب",
	"Manaf": "مناف", "Diwan": "ديوان", "Sahih": "صحيح",
	"Sunan": "سنن", "Musnad": "مسند", "Muwatta": "موطأ",
	"Kitab": "كتاب", "Sharh": "شرح", "Tafsir": "تفسير",
}

// ParseFilename derives metadata from an OpenITI-convention filename.
// It returns nil if the name does not match the convention; callers use
// that as the discriminator for "is this an OpenITI-style file".
func ParseFilename(filename string) *BookMetadata {
	stem := FileStem(filename)

	m := openitiFilenameRegex.FindStringSubmatch(stem)
	if m == nil {
		return nil
	}

	death, author, title, version := m[1], m[2], m[3], m[4]

	deathYear, err := strconv.Atoi(death)
	if err != nil {
		return nil
	}

	return &BookMetadata{
		AuthorDeath: deathYear,
		Author:      transliterate(author),
		AuthorLatin: camelToSpaced(author),
		Title:       transliterate(title),
		TitleLatin:  camelToSpaced(title),
		OpenitiID:   stem,
		VersionID:   version,
		Source:      "openiti",
	}
}

// FileStem strips a recognized book-file extension from a filename. Dotted
// OpenITI names keep their full form: their dots are field separators, not
// extension boundaries.
func FileStem(filename string) string {
	lower := strings.ToLower(filename)
	for ext := range bookFileExtensions {
		if strings.HasSuffix(lower, ext) {
			return filename[:len(filename)-len(ext)]
		}
	}
	return filename
}

// camelToSpaced inserts a space before each internal capital letter.
func camelToSpaced(s string) string {
	return camelBoundaryRegex.ReplaceAllString(s, "$1 $2")
}

// transliterate replaces known tokens with their Arabic spellings, leaving
// unmatched words as-is.
func transliterate(s string) string {
	words := strings.Fields(camelToSpaced(s))
	for i, w := range words {
		if ar, ok := arabicNames[w]; ok {
			words[i] = ar
		}
	}
	return strings.Join(words, " ")
}
