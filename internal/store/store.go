// Package store implements the relational storage collaborator on SQLite:
// Book/Page/TocEntry/Author/Category entities, an FTS5 page index over
// normalized content, and a bounded search-history log. Re-ingestion uses
// replace semantics: a book's prior pages, TOC entries, and index rows are
// deleted in the same transaction that inserts the new set.
package store

import (
	"database/sql"

	"github.com/jbradf0rd/projectgranada/core/errors"
	"github.com/jbradf0rd/projectgranada/core/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS books (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	author_id TEXT,
	category_id INTEGER,
	death_date INTEGER,
	file_size INTEGER,
	is_downloaded INTEGER DEFAULT 0,
	download_date TEXT,
	source TEXT DEFAULT 'local',
	volumes_count INTEGER DEFAULT 1,
	editor TEXT,
	edition TEXT,
	publisher TEXT,
	author_name TEXT,
	author_aka TEXT,
	author_born INTEGER,
	subtitle TEXT,
	alt_title TEXT,
	subject TEXT,
	language TEXT,
	publication_place TEXT,
	publication_year TEXT,
	isbn TEXT,
	page_count INTEGER,
	openiti_uri TEXT,
	FOREIGN KEY (author_id) REFERENCES authors(id),
	FOREIGN KEY (category_id) REFERENCES categories(id)
);

CREATE TABLE IF NOT EXISTS pages (
	id INTEGER PRIMARY KEY,
	book_id TEXT,
	page_num INTEGER,
	volume INTEGER DEFAULT 1,
	original_page INTEGER,
	content TEXT,
	content_normalized TEXT,
	FOREIGN KEY (book_id) REFERENCES books(id)
);

CREATE INDEX IF NOT EXISTS idx_pages_book ON pages(book_id);
CREATE INDEX IF NOT EXISTS idx_pages_book_page ON pages(book_id, page_num);

CREATE TABLE IF NOT EXISTS authors (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	death_date INTEGER
);

CREATE INDEX IF NOT EXISTS idx_authors_death ON authors(death_date);

CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS custom_categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS book_custom_categories (
	book_id TEXT,
	category_id INTEGER,
	PRIMARY KEY (book_id, category_id),
	FOREIGN KEY (book_id) REFERENCES books(id),
	FOREIGN KEY (category_id) REFERENCES custom_categories(id)
);

CREATE TABLE IF NOT EXISTS reading_progress (
	book_id TEXT PRIMARY KEY,
	current_page INTEGER DEFAULT 1,
	total_pages INTEGER,
	last_read TEXT,
	is_complete INTEGER DEFAULT 0,
	FOREIGN KEY (book_id) REFERENCES books(id)
);

CREATE TABLE IF NOT EXISTS search_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	query TEXT NOT NULL,
	searched_at TEXT DEFAULT CURRENT_TIMESTAMP,
	results_count INTEGER
);

CREATE TABLE IF NOT EXISTS toc_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	book_id TEXT NOT NULL,
	title TEXT NOT NULL,
	level INTEGER DEFAULT 1,
	page_num INTEGER,
	position INTEGER,
	FOREIGN KEY (book_id) REFERENCES books(id)
);

CREATE INDEX IF NOT EXISTS idx_toc_book ON toc_entries(book_id);
CREATE INDEX IF NOT EXISTS idx_toc_page ON toc_entries(book_id, page_num);

CREATE VIRTUAL TABLE IF NOT EXISTS pages_fts USING fts5(
	book_id,
	page_num,
	content,
	tokenize='unicode61'
);

INSERT OR IGNORE INTO categories (id, name) VALUES
	(1, 'كتب السنة'),
	(2, 'كتب الفقه'),
	(3, 'كتب التفسير'),
	(4, 'كتب العقيدة'),
	(5, 'كتب السيرة'),
	(6, 'كتب التاريخ');
`

// Store is the SQLite-backed storage collaborator.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the library database at path and
// bootstraps the schema. The connection uses a write-ahead journal with a
// bounded busy wait, deferring concurrent-writer safety to SQLite.
func Open(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA busy_timeout=30000`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "apply %s", pragma)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "bootstrap schema")
	}

	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing library database for query-only use. The
// schema is not bootstrapped and a missing database is an error.
func OpenReadOnly(path string) (*Store, error) {
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, errors.Wrap(err, "open database read-only")
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=30000`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "open database read-only")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for callers that need raw access.
func (s *Store) DB() *sql.DB {
	return s.db
}
