package store

import (
	"strings"

	"github.com/jbradf0rd/projectgranada/core/arabic"
	gerrors "github.com/jbradf0rd/projectgranada/core/errors"
	"github.com/jbradf0rd/projectgranada/core/search"
)

var _ search.Index = (*Store)(nil)

// historyLimit bounds the search-history log.
const historyLimit = 50

// SearchPages runs an FTS5 MATCH over the normalized page index joined with
// book, author, and category metadata. Filters are conjunctive. Rows come
// back best-match-first by bm25 score; total counts every match, not just
// the returned page.
func (s *Store) SearchPages(ftsQuery string, f search.Filters, limit, offset int) ([]search.PageHit, int, error) {
	var sb strings.Builder
	sb.WriteString(
		`SELECT p.id, p.book_id, p.page_num, p.content,
		        b.title, COALESCE(a.name, ''), COALESCE(a.death_date, 0),
		        COALESCE(c.name, '')
		 FROM pages_fts
		 JOIN pages p ON pages_fts.book_id = p.book_id
		              AND CAST(pages_fts.page_num AS INTEGER) = p.page_num
		 JOIN books b ON p.book_id = b.id
		 LEFT JOIN authors a ON b.author_id = a.id
		 LEFT JOIN categories c ON b.category_id = c.id
		 WHERE pages_fts MATCH ?`)
	args := []interface{}{ftsQuery}

	if len(f.BookIDs) > 0 {
		sb.WriteString(` AND p.book_id IN (` + placeholders(len(f.BookIDs)) + `)`)
		for _, id := range f.BookIDs {
			args = append(args, id)
		}
	}
	if len(f.AuthorIDs) > 0 {
		sb.WriteString(` AND b.author_id IN (` + placeholders(len(f.AuthorIDs)) + `)`)
		for _, id := range f.AuthorIDs {
			args = append(args, id)
		}
	}
	if len(f.CategoryIDs) > 0 {
		sb.WriteString(` AND b.category_id IN (` + placeholders(len(f.CategoryIDs)) + `)`)
		for _, id := range f.CategoryIDs {
			args = append(args, id)
		}
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM (`+sb.String()+`)`, args...).Scan(&total); err != nil {
		return nil, 0, gerrors.NewPersistence("count search", err)
	}

	sb.WriteString(` ORDER BY bm25(pages_fts) LIMIT ? OFFSET ?`)
	args = append(args, limit, offset)

	rows, err := s.db.Query(sb.String(), args...)
	if err != nil {
		return nil, 0, gerrors.NewPersistence("search pages", err)
	}
	defer rows.Close()

	var hits []search.PageHit
	for rows.Next() {
		var h search.PageHit
		if err := rows.Scan(&h.PageID, &h.BookID, &h.PageNum, &h.Content,
			&h.BookTitle, &h.AuthorName, &h.AuthorDeath, &h.CategoryName); err != nil {
			return nil, 0, gerrors.NewPersistence("search pages", err)
		}
		hits = append(hits, h)
	}
	return hits, total, rows.Err()
}

// RecordSearch appends to the history log and prunes it to the most recent
// entries.
func (s *Store) RecordSearch(query string, results int) error {
	if _, err := s.db.Exec(
		`INSERT INTO search_history (query, results_count) VALUES (?, ?)`,
		query, results); err != nil {
		return gerrors.NewPersistence("record search", err)
	}
	if _, err := s.db.Exec(
		`DELETE FROM search_history WHERE id NOT IN (
			SELECT id FROM search_history ORDER BY searched_at DESC, id DESC LIMIT ?
		)`, historyLimit); err != nil {
		return gerrors.NewPersistence("prune search history", err)
	}
	return nil
}

// RecentSearches lists distinct queries, most recently searched first.
func (s *Store) RecentSearches(limit int) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT query FROM search_history
		 GROUP BY query
		 ORDER BY MAX(searched_at) DESC, MAX(id) DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, gerrors.NewPersistence("load search history", err)
	}
	defer rows.Close()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, gerrors.NewPersistence("load search history", err)
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// RebuildIndex repopulates the FTS table from the pages table.
func (s *Store) RebuildIndex() error {
	tx, err := s.db.Begin()
	if err != nil {
		return gerrors.NewPersistence("begin rebuild", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM pages_fts`); err != nil {
		return gerrors.NewPersistence("clear index", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO pages_fts (book_id, page_num, content)
		 SELECT book_id, CAST(page_num AS TEXT), content_normalized
		 FROM pages WHERE content_normalized IS NOT NULL`); err != nil {
		return gerrors.NewPersistence("rebuild index", err)
	}
	return tx.Commit()
}

// IndexBook repopulates the FTS rows for a single book from its stored
// normalized pages.
func (s *Store) IndexBook(bookID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return gerrors.NewPersistence("begin index book", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM pages_fts WHERE book_id = ?`, bookID); err != nil {
		return gerrors.NewPersistence("index book", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO pages_fts (book_id, page_num, content)
		 SELECT book_id, CAST(page_num AS TEXT), content_normalized
		 FROM pages WHERE book_id = ? AND content_normalized IS NOT NULL`,
		bookID); err != nil {
		return gerrors.NewPersistence("index book", err)
	}
	return tx.Commit()
}

// IndexPage upserts one page and its index row, normalizing the content.
func (s *Store) IndexPage(bookID string, pageNum int, content string) error {
	normalized := arabic.Normalize(content)
	tx, err := s.db.Begin()
	if err != nil {
		return gerrors.NewPersistence("begin index", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM pages WHERE book_id = ? AND page_num = ?`, bookID, pageNum); err != nil {
		return gerrors.NewPersistence("index page", err)
	}
	if _, err := tx.Exec(
		`DELETE FROM pages_fts WHERE book_id = ? AND page_num = CAST(? AS TEXT)`,
		bookID, pageNum); err != nil {
		return gerrors.NewPersistence("index page", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO pages (book_id, page_num, content, content_normalized)
		 VALUES (?, ?, ?, ?)`, bookID, pageNum, content, normalized); err != nil {
		return gerrors.NewPersistence("index page", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO pages_fts (book_id, page_num, content)
		 VALUES (?, CAST(? AS TEXT), ?)`, bookID, pageNum, normalized); err != nil {
		return gerrors.NewPersistence("index page", err)
	}
	return tx.Commit()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
