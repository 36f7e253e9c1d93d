package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	gerrors "github.com/jbradf0rd/projectgranada/core/errors"
	"github.com/jbradf0rd/projectgranada/core/metadata"
	"github.com/jbradf0rd/projectgranada/core/segment"
	"github.com/jbradf0rd/projectgranada/internal/logging"
)

// minContentRunes guards against ingesting empty or truncated files.
const minContentRunes = 100

// Pipeline runs book ingestion against a storage backend.
type Pipeline struct {
	store Storage
}

func New(store Storage) *Pipeline {
	return &Pipeline{store: store}
}

// IngestFile ingests a single book file. Metadata precedence is filename,
// then header, then caller overrides, each later source winning field by
// field. A book whose identity is already downloaded produces a duplicate
// result without touching storage.
func (p *Pipeline) IngestFile(path string, cat CategoryAssignment, overrides *metadata.BookMetadata) Result {
	name := filepath.Base(path)

	info, err := os.Stat(path)
	if err != nil {
		return errResult(name, gerrors.NewValidation("path", "file not found: "+path))
	}
	if !acceptable(name) {
		return errResult(name, gerrors.NewValidation("path", "unsupported file type: "+name))
	}

	content, err := readBookText(path)
	if err != nil {
		logging.IngestSkipped(path, err.Error())
		return errResult(name, err)
	}
	if utf8.RuneCountInString(content) < minContentRunes {
		return errResult(name, gerrors.NewValidation("content", "file too short to be a book"))
	}

	inner, _ := innerName(name)
	fnMeta := metadata.ParseFilename(inner)
	headMeta, _ := metadata.ParseHeader(content)
	meta := metadata.Merge(fnMeta, headMeta, overrides)
	if meta.Title == "" {
		meta.Title = strings.ReplaceAll(metadata.FileStem(inner), "_", " ")
	}
	meta.FillDefaults()

	dupKey := meta.OpenitiID
	if dupKey == "" {
		dupKey = metadata.FileStem(inner)
	}
	existing, err := p.store.FindDownloaded(dupKey)
	if err != nil {
		return errResult(name, err)
	}
	if existing != nil {
		logging.IngestSkipped(path, "already downloaded")
		return Result{
			Status:   StatusDuplicate,
			Message:  fmt.Sprintf("الكتاب موجود مسبقاً: %s", existing.Title),
			BookID:   existing.ID,
			Title:    existing.Title,
			Filename: name,
			Err:      gerrors.NewDuplicate(existing.ID, existing.Title),
		}
	}

	bookID := meta.OpenitiID
	if bookID == "" {
		bookID = GenerateBookID(meta.Title, meta.Author, meta.AuthorDeath)
	}

	pages, toc := segment.Parse(content)
	if len(pages) == 0 {
		return errResult(name, gerrors.NewParse("segment", path, "no readable content after cleaning"))
	}
	if meta.PageCount == 0 {
		meta.PageCount = len(pages)
	}

	rec := &BookRecord{
		ID:             bookID,
		Meta:           meta,
		Pages:          pages,
		Toc:            toc,
		CategoryID:     cat.ID,
		CustomCategory: cat.Custom,
		FileSize:       info.Size(),
	}
	if err := p.store.SaveBook(rec); err != nil {
		return errResult(name, err)
	}

	logging.BookIngested(bookID, meta.Title, len(pages), len(toc))
	return Result{
		Status:   StatusSuccess,
		Message:  fmt.Sprintf("تم رفع الكتاب: %s", meta.Title),
		BookID:   bookID,
		Title:    meta.Title,
		Pages:    len(pages),
		TocCount: len(toc),
		Filename: name,
	}
}

func errResult(name string, err error) Result {
	return Result{
		Status:   StatusError,
		Message:  err.Error(),
		Filename: name,
		Err:      err,
	}
}
