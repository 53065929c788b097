package store

import "database/sql"

// DBTX is the subset of *sql.DB and *sql.Tx the stores use. Engines rebind
// stores to a transaction for multi-write operations.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
