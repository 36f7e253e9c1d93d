// Package metadata extracts bibliographic metadata for Arabic books from
// in-body headers (the simple #META# dialect and the OpenITI field-code
// dialect) and from OpenITI-convention filenames, and merges the results
// under an explicit precedence order.
package metadata

// Placeholder values used when a book carries no usable title or author.
const (
	DefaultTitle  = "بدون عنوان"
	DefaultAuthor = "غير معروف"
)

// BookMetadata is the fixed schema of recognized bibliographic fields.
// The zero value of a field means "absent". Numeric fields that fail integer
// coercion in the simple dialect are preserved as strings in Extra.
type BookMetadata struct {
	Title       string
	TitleLatin  string
	Subtitle    string
	AltTitle    string
	Author      string
	AuthorLatin string
	AuthorAKA   string
	AuthorDeath int
	AuthorBorn  int
	Editor      string
	Edition     string
	Publisher   string
	Volumes     int
	Subject     string
	Language    string

	PublicationPlace string
	PublicationYear  string
	ISBN             string
	PageCount        int

	OpenitiURI string
	OpenitiID  string
	VersionID  string
	Source     string

	// Extra holds unrecognized keys from the simple dialect (lower-cased)
	// and known numeric fields whose values were not coercible.
	Extra map[string]string
}

// Apply overlays patch onto m: every non-zero field of patch overwrites the
// corresponding field of m. Extra keys merge with patch taking precedence.
func (m *BookMetadata) Apply(patch *BookMetadata) {
	if patch == nil {
		return
	}
	applyString(&m.Title, patch.Title)
	applyString(&m.TitleLatin, patch.TitleLatin)
	applyString(&m.Subtitle, patch.Subtitle)
	applyString(&m.AltTitle, patch.AltTitle)
	applyString(&m.Author, patch.Author)
	applyString(&m.AuthorLatin, patch.AuthorLatin)
	applyString(&m.AuthorAKA, patch.AuthorAKA)
	applyInt(&m.AuthorDeath, patch.AuthorDeath)
	applyInt(&m.AuthorBorn, patch.AuthorBorn)
	applyString(&m.Editor, patch.Editor)
	applyString(&m.Edition, patch.Edition)
	applyString(&m.Publisher, patch.Publisher)
	applyInt(&m.Volumes, patch.Volumes)
	applyString(&m.Subject, patch.Subject)
	applyString(&m.Language, patch.Language)
	applyString(&m.PublicationPlace, patch.PublicationPlace)
	applyString(&m.PublicationYear, patch.PublicationYear)
	applyString(&m.ISBN, patch.ISBN)
	applyInt(&m.PageCount, patch.PageCount)
	applyString(&m.OpenitiURI, patch.OpenitiURI)
	applyString(&m.OpenitiID, patch.OpenitiID)
	applyString(&m.VersionID, patch.VersionID)
	applyString(&m.Source, patch.Source)

	for k, v := range patch.Extra {
		m.setExtra(k, v)
	}
}

// Merge combines metadata sources in increasing priority order: later
// patches overwrite earlier ones field by field. Nil patches are skipped.
func Merge(patches ...*BookMetadata) *BookMetadata {
	merged := &BookMetadata{}
	for _, p := range patches {
		merged.Apply(p)
	}
	return merged
}

// FillDefaults sets the placeholder title and author on records that still
// lack them after merging.
func (m *BookMetadata) FillDefaults() {
	if m.Title == "" {
		m.Title = DefaultTitle
	}
	if m.Author == "" {
		m.Author = DefaultAuthor
	}
}

func (m *BookMetadata) setExtra(key, value string) {
	if m.Extra == nil {
		m.Extra = make(map[string]string)
	}
	m.Extra[key] = value
}

func applyString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func applyInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}
