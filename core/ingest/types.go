// Package ingest orchestrates book ingestion: reading and decoding a file,
// deriving metadata from its name and header, segmenting it into pages with
// a table of contents, assigning a stable identity, and persisting the
// result through the storage collaborator.
package ingest

import (
	"github.com/jbradf0rd/projectgranada/core/metadata"
	"github.com/jbradf0rd/projectgranada/core/segment"
)

// Status classifies the outcome of an ingestion attempt. Duplicate is a
// distinct outcome, not an error: the book already exists and is downloaded.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusDuplicate Status = "duplicate"
	StatusError     Status = "error"
)

// Result reports the outcome of ingesting one file.
type Result struct {
	Status       Status `json:"status"`
	Message      string `json:"message,omitempty"`
	BookID       string `json:"book_id,omitempty"`
	Title        string `json:"title,omitempty"`
	Pages        int    `json:"pages,omitempty"`
	TocCount     int    `json:"toc_count,omitempty"`
	Filename     string `json:"filename,omitempty"`
	AutoCategory string `json:"auto_category,omitempty"`

	// Err carries the underlying error for StatusError results.
	Err error `json:"-"`
}

// BatchResult aggregates a folder ingestion. One bad file never aborts the
// batch; per-file outcomes are retained in Results.
type BatchResult struct {
	Status    Status   `json:"status"`
	BatchID   string   `json:"batch_id"`
	Message   string   `json:"message,omitempty"`
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Results   []Result `json:"results"`
}

// FileInfo describes a candidate book file found by ScanFolder.
type FileInfo struct {
	Path          string `json:"path"`
	Name          string `json:"name"`
	Size          int64  `json:"size"`
	SizeFormatted string `json:"size_formatted"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	IsOpeniti     bool   `json:"is_openiti"`
}

// ScanResult lists the book files detected in a folder.
type ScanResult struct {
	Files []FileInfo `json:"files"`
	Count int        `json:"count"`
}

// CategoryAssignment tells the pipeline which category a book belongs to.
// When AutoAssign is set during folder ingestion, the OpenITI subject field
// overrides ID/Custom per file.
type CategoryAssignment struct {
	ID         int64
	Custom     bool
	AutoAssign bool
}

// ExistingBook identifies an already-ingested book found by the duplicate
// check.
type ExistingBook struct {
	ID    string
	Title string
}

// BookRecord is the unit handed to the storage collaborator: one book with
// its pages and TOC, persisted atomically with replace-on-reingest
// semantics.
type BookRecord struct {
	ID             string
	Meta           *metadata.BookMetadata
	Pages          []segment.Page
	Toc            []segment.TocEntry
	CategoryID     int64
	CustomCategory bool
	FileSize       int64
}

// Storage is the relational-store collaborator the pipeline persists
// through.
type Storage interface {
	// FindDownloaded returns the existing downloaded book with the given
	// identity, or nil if none exists.
	FindDownloaded(bookID string) (*ExistingBook, error)
	// SaveBook persists a book atomically, replacing any prior book with
	// the same identity along with its pages, TOC entries, and index rows.
	SaveBook(rec *BookRecord) error
	// CategoryFromSubject resolves (creating if needed) a category from the
	// first segment of a hierarchical subject string.
	CategoryFromSubject(subject string) (id int64, custom bool, err error)
}
