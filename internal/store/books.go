package store

import (
	"database/sql"
	"regexp"

	"github.com/jbradf0rd/projectgranada/core/arabic"
	gerrors "github.com/jbradf0rd/projectgranada/core/errors"
	"github.com/jbradf0rd/projectgranada/core/ingest"
	"github.com/jbradf0rd/projectgranada/core/segment"
)

var _ ingest.Storage = (*Store)(nil)

var authorIDRegex = regexp.MustCompile(`[^\p{L}\p{N}_]`)

// authorID derives a stable author key from the display name: word
// characters only, capped at 20 runes. Arabic letters survive the squeeze.
func authorID(name string) string {
	id := authorIDRegex.ReplaceAllString(name, "")
	runes := []rune(id)
	if len(runes) > 20 {
		id = string(runes[:20])
	}
	return id
}

// FindDownloaded returns the downloaded book with the given identity, or nil
// when absent.
func (s *Store) FindDownloaded(bookID string) (*ingest.ExistingBook, error) {
	row := s.db.QueryRow(
		`SELECT id, title FROM books WHERE id = ? AND is_downloaded = 1`, bookID)

	var b ingest.ExistingBook
	switch err := row.Scan(&b.ID, &b.Title); err {
	case nil:
		return &b, nil
	case sql.ErrNoRows:
		return nil, nil
	default:
		return nil, gerrors.NewPersistence("find book", err)
	}
}

// SaveBook persists a book atomically with replace-on-reingest semantics:
// any prior book under the same identity has its pages, index rows, and TOC
// entries deleted before the new rows go in. The whole unit commits or rolls
// back together.
func (s *Store) SaveBook(rec *ingest.BookRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return gerrors.NewPersistence("begin save", err)
	}
	defer tx.Rollback()

	aid := authorID(rec.Meta.Author)
	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO authors (id, name, death_date) VALUES (?, ?, ?)`,
		aid, rec.Meta.Author, nullInt(rec.Meta.AuthorDeath)); err != nil {
		return gerrors.NewPersistence("save author", err)
	}

	// Old child rows first, so re-ingestion never leaves orphans.
	for _, stmt := range []string{
		`DELETE FROM pages WHERE book_id = ?`,
		`DELETE FROM pages_fts WHERE book_id = ?`,
		`DELETE FROM toc_entries WHERE book_id = ?`,
		`DELETE FROM books WHERE id = ?`,
	} {
		if _, err := tx.Exec(stmt, rec.ID); err != nil {
			return gerrors.NewPersistence("replace book", err)
		}
	}

	// Books in a custom category keep a NULL main category; the link lives
	// in book_custom_categories instead.
	var mainCategory interface{}
	if !rec.CustomCategory && rec.CategoryID != 0 {
		mainCategory = rec.CategoryID
	}

	m := rec.Meta
	if _, err := tx.Exec(
		`INSERT INTO books (id, title, author_id, category_id, death_date,
		                    file_size, is_downloaded, download_date, source,
		                    volumes_count, editor, edition, publisher,
		                    author_name, author_aka, author_born, subtitle,
		                    alt_title, subject, language, publication_place,
		                    publication_year, isbn, page_count, openiti_uri)
		 VALUES (?, ?, ?, ?, ?, ?, 1, datetime('now'), ?, ?, ?, ?, ?,
		         ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, m.Title, aid, mainCategory, nullInt(m.AuthorDeath),
		rec.FileSize, nullStr(m.Source, "local"),
		orInt(m.Volumes, 1), m.Editor, m.Edition, m.Publisher,
		m.Author, m.AuthorAKA, nullInt(m.AuthorBorn), m.Subtitle,
		m.AltTitle, m.Subject, m.Language, m.PublicationPlace,
		m.PublicationYear, m.ISBN, nullInt(m.PageCount), m.OpenitiURI); err != nil {
		return gerrors.NewPersistence("save book", err)
	}

	if rec.CustomCategory && rec.CategoryID != 0 {
		if _, err := tx.Exec(
			`INSERT INTO book_custom_categories (book_id, category_id) VALUES (?, ?)`,
			rec.ID, rec.CategoryID); err != nil {
			return gerrors.NewPersistence("save category link", err)
		}
	}

	for _, p := range rec.Pages {
		if err := insertPageTx(tx, rec.ID, p); err != nil {
			return err
		}
	}

	for i, t := range rec.Toc {
		if _, err := tx.Exec(
			`INSERT INTO toc_entries (book_id, title, level, page_num, position)
			 VALUES (?, ?, ?, ?, ?)`,
			rec.ID, t.Title, t.Level, t.PageNum, i+1); err != nil {
			return gerrors.NewPersistence("save toc entry", err)
		}
	}

	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO reading_progress (book_id, current_page, total_pages)
		 VALUES (?, 1, ?)`, rec.ID, len(rec.Pages)); err != nil {
		return gerrors.NewPersistence("save reading progress", err)
	}

	if err := tx.Commit(); err != nil {
		return gerrors.NewPersistence("commit save", err)
	}
	return nil
}

func insertPageTx(tx *sql.Tx, bookID string, p segment.Page) error {
	normalized := arabic.Normalize(p.Content)
	if _, err := tx.Exec(
		`INSERT INTO pages (book_id, page_num, volume, original_page, content, content_normalized)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		bookID, p.PageNum, p.Volume, p.OriginalPage, p.Content, normalized); err != nil {
		return gerrors.NewPersistence("save page", err)
	}
	// The FTS table keys page_num as text; joins cast it back.
	if _, err := tx.Exec(
		`INSERT INTO pages_fts (book_id, page_num, content) VALUES (?, CAST(? AS TEXT), ?)`,
		bookID, p.PageNum, normalized); err != nil {
		return gerrors.NewPersistence("index page", err)
	}
	return nil
}

// BookSummary is the listing row for the books command.
type BookSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	DeathDate  int    `json:"death_date,omitempty"`
	Category   string `json:"category,omitempty"`
	PageCount  int    `json:"page_count"`
	Source     string `json:"source"`
	Downloaded string `json:"download_date,omitempty"`
}

// ListBooks returns downloaded books ordered by title.
func (s *Store) ListBooks() ([]BookSummary, error) {
	rows, err := s.db.Query(
		`SELECT b.id, b.title, COALESCE(a.name, ''), COALESCE(a.death_date, 0),
		        COALESCE(c.name, ''),
		        (SELECT COUNT(*) FROM pages p WHERE p.book_id = b.id),
		        COALESCE(b.source, ''), COALESCE(b.download_date, '')
		 FROM books b
		 LEFT JOIN authors a ON b.author_id = a.id
		 LEFT JOIN categories c ON b.category_id = c.id
		 WHERE b.is_downloaded = 1
		 ORDER BY b.title`)
	if err != nil {
		return nil, gerrors.NewPersistence("list books", err)
	}
	defer rows.Close()

	var books []BookSummary
	for rows.Next() {
		var b BookSummary
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.DeathDate,
			&b.Category, &b.PageCount, &b.Source, &b.Downloaded); err != nil {
			return nil, gerrors.NewPersistence("list books", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// TocEntries returns a book's table of contents in document order.
func (s *Store) TocEntries(bookID string) ([]segment.TocEntry, error) {
	rows, err := s.db.Query(
		`SELECT title, level, page_num, position FROM toc_entries
		 WHERE book_id = ? ORDER BY position`, bookID)
	if err != nil {
		return nil, gerrors.NewPersistence("load toc", err)
	}
	defer rows.Close()

	var entries []segment.TocEntry
	for rows.Next() {
		var t segment.TocEntry
		if err := rows.Scan(&t.Title, &t.Level, &t.PageNum, &t.Position); err != nil {
			return nil, gerrors.NewPersistence("load toc", err)
		}
		entries = append(entries, t)
	}
	return entries, rows.Err()
}

func nullInt(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}

func nullStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func orInt(n, fallback int) int {
	if n == 0 {
		return fallback
	}
	return n
}
