package store

import "database/sql"

// SetOpenDB swaps the database opener and returns a func restoring it.
// This file only compiles during `go test`.
func SetOpenDB(f func(driver, dsn string) (*sql.DB, error)) func() {
	orig := openDB
	openDB = f
	return func() { openDB = orig }
}

// DB exposes the internal *sql.DB for test helpers in store_test.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}
