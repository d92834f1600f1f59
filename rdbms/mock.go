package rdbms

import (
	"context"
	"database/sql"
	"fmt"
)

// MockRows is a canned Rows implementation for tests.
type MockRows struct {
	Cols []string
	Data [][]interface{}
	// ErrAfter, when >= 0, stops iteration after that many rows and makes
	// Err() return IterErr, simulating a mid-query failure.
	ErrAfter int
	IterErr  error
	// ScanErr, when set, is returned by every Scan call.
	ScanErr error

	pos    int
	failed bool
	Closed bool
}

func NewMockRows(cols []string, data [][]interface{}) *MockRows {
	return &MockRows{Cols: cols, Data: data, ErrAfter: -1}
}

func (r *MockRows) Columns() ([]string, error) {
	return r.Cols, nil
}

func (r *MockRows) Next() bool {
	if r.ErrAfter >= 0 && r.pos >= r.ErrAfter {
		r.failed = true
		return false
	}
	if r.pos >= len(r.Data) {
		return false
	}
	r.pos++
	return true
}

func (r *MockRows) Scan(dest ...interface{}) error {
	if r.ScanErr != nil {
		return r.ScanErr
	}
	row := r.Data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan expected %d destinations; got %d", len(row), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *interface{}:
			*p = row[i]
		case *string:
			*p = row[i].(string)
		case *sql.NullInt64:
			if row[i] == nil {
				*p = sql.NullInt64{}
			} else {
				switch v := row[i].(type) {
				case int:
					*p = sql.NullInt64{Int64: int64(v), Valid: true}
				case int64:
					*p = sql.NullInt64{Int64: v, Valid: true}
				default:
					return fmt.Errorf("unsupported NullInt64 source %T", row[i])
				}
			}
		default:
			return fmt.Errorf("unsupported scan destination %T", d)
		}
	}
	return nil
}

func (r *MockRows) Err() error {
	if r.failed {
		return r.IterErr
	}
	return nil
}

func (r *MockRows) Close() error {
	r.Closed = true
	return nil
}

// MockConnector replays canned row sets in query order.
type MockConnector struct {
	DbType   string
	Results  []*MockRows
	QueryErr error

	Queries  []string
	LastArgs []interface{}
	Closed   bool
}

func NewMockConnector(dbType string, results ...*MockRows) *MockConnector {
	return &MockConnector{DbType: dbType, Results: results}
}

func (c *MockConnector) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	c.Queries = append(c.Queries, query)
	c.LastArgs = args
	if c.QueryErr != nil {
		return nil, c.QueryErr
	}
	if len(c.Results) == 0 {
		return NewMockRows([]string{}, nil), nil
	}
	next := c.Results[0]
	c.Results = c.Results[1:]
	return next, nil
}

func (c *MockConnector) GetType() string {
	return c.DbType
}

func (c *MockConnector) Close() error {
	c.Closed = true
	return nil
}

var _ Connector = &MockConnector{}
var _ Rows = &MockRows{}
