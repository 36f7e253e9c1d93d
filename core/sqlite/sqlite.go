// Package sqlite selects the SQLite driver at build time: pure Go
// (modernc.org/sqlite) by default, CGO (mattn/go-sqlite3) behind the
// cgo_sqlite build tag. Both ship the FTS5 extension the page index depends
// on. Use Open or OpenReadOnly instead of sql.Open so the compiled-in driver
// name is used.
package sqlite

import (
	"database/sql"
)

// DriverName returns the registered SQL driver name, "sqlite" or "sqlite3"
// depending on the build.
func DriverName() string {
	return driverName
}

// Info describes the compiled-in driver for diagnostics.
func Info() string {
	return driverName + " (" + driverPackage + ")"
}

// Open opens a SQLite database using the compiled-in driver.
func Open(dataSourceName string) (*sql.DB, error) {
	return sql.Open(driverName, dataSourceName)
}

// OpenReadOnly opens a SQLite database in read-only mode.
func OpenReadOnly(path string) (*sql.DB, error) {
	return Open(path + "?mode=ro")
}
