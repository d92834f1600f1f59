package stream

// Chunk is a bounded, ordered batch of rows pulled from the source during one
// extraction. It is owned by a single iteration of the run loop and is never
// retained past its transform and load step.
type Chunk struct {
	// Index is the 1-based sequence number of this chunk within the run.
	Index int
	// Columns holds the column names, in the order values appear in each row.
	Columns []string
	// Rows holds the raw values; nil represents a database NULL.
	Rows [][]interface{}
}

// NewChunk creates a chunk with preallocated row capacity.
func NewChunk(index int, columns []string, capacity int) Chunk {
	return Chunk{
		Index:   index,
		Columns: columns,
		Rows:    make([][]interface{}, 0, capacity),
	}
}

// NumRows returns the number of rows held by the chunk.
func (c Chunk) NumRows() int {
	return len(c.Rows)
}

// ColumnIndex returns the position of the named column or -1 when absent.
func (c Chunk) ColumnIndex(name string) int {
	for i, n := range c.Columns {
		if n == name {
			return i
		}
	}
	return -1
}
