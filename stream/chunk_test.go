package stream

import "testing"

func TestChunkColumnIndex(t *testing.T) {
	c := NewChunk(1, []string{"id", "name", "updated_at"}, 10)
	if i := c.ColumnIndex("name"); i != 1 {
		t.Fatalf("expected 1; got %v", i)
	}
	if i := c.ColumnIndex("missing"); i != -1 {
		t.Fatalf("expected -1; got %v", i)
	}
}

func TestChunkNumRows(t *testing.T) {
	c := NewChunk(1, []string{"id"}, 2)
	if c.NumRows() != 0 {
		t.Fatalf("expected 0 rows; got %v", c.NumRows())
	}
	c.Rows = append(c.Rows, []interface{}{int64(1)}, []interface{}{int64(2)})
	if c.NumRows() != 2 {
		t.Fatalf("expected 2 rows; got %v", c.NumRows())
	}
}
