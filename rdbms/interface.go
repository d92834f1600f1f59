package rdbms

import "context"

// Rows is the subset of database/sql rows behaviour the pipeline consumes.
// *sql.Rows satisfies it directly; tests supply fakes.
type Rows interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close() error
}

// Connector abstracts access to a source database connection.
type Connector interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error)
	GetType() string
	Close() error
}
