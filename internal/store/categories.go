package store

import (
	"database/sql"
	"strings"

	gerrors "github.com/jbradf0rd/projectgranada/core/errors"
)

// defaultCategoryID is the built-in catch-all used when a subject yields no
// usable category name.
const defaultCategoryID = 1

// CategoryFromSubject resolves a category from a hierarchical subject like
// "الحديث :: الصحاح": the first ::-delimited segment names the category.
// Built-in categories are checked first, then custom ones; an unknown name
// becomes a new custom category.
func (s *Store) CategoryFromSubject(subject string) (int64, bool, error) {
	name := strings.TrimSpace(strings.SplitN(subject, "::", 2)[0])
	if name == "" {
		return defaultCategoryID, false, nil
	}

	var id int64
	err := s.db.QueryRow(`SELECT id FROM categories WHERE name = ?`, name).Scan(&id)
	switch {
	case err == nil:
		return id, false, nil
	case err != sql.ErrNoRows:
		return 0, false, gerrors.NewPersistence("find category", err)
	}

	err = s.db.QueryRow(`SELECT id FROM custom_categories WHERE name = ?`, name).Scan(&id)
	switch {
	case err == nil:
		return id, true, nil
	case err != sql.ErrNoRows:
		return 0, false, gerrors.NewPersistence("find category", err)
	}

	res, err := s.db.Exec(`INSERT INTO custom_categories (name) VALUES (?)`, name)
	if err != nil {
		return 0, false, gerrors.NewPersistence("create category", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, gerrors.NewPersistence("create category", err)
	}
	return id, true, nil
}

// Category is one assignable category, built-in or custom.
type Category struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Custom bool   `json:"is_custom"`
}

// ListCategories returns custom categories first, then built-in ones, each
// group ordered by name.
func (s *Store) ListCategories() ([]Category, error) {
	var out []Category
	for _, q := range []struct {
		sql    string
		custom bool
	}{
		{`SELECT id, name FROM custom_categories ORDER BY name`, true},
		{`SELECT id, name FROM categories ORDER BY name`, false},
	} {
		rows, err := s.db.Query(q.sql)
		if err != nil {
			return nil, gerrors.NewPersistence("list categories", err)
		}
		for rows.Next() {
			c := Category{Custom: q.custom}
			if err := rows.Scan(&c.ID, &c.Name); err != nil {
				rows.Close()
				return nil, gerrors.NewPersistence("list categories", err)
			}
			out = append(out, c)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}
