package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/oiluj0002/raw-data-loader/constants"
	"github.com/oiluj0002/raw-data-loader/logger"
	"github.com/oiluj0002/raw-data-loader/rdbms"
)

func newExtractor(db rdbms.Connector, chunkSize int) *Extractor {
	return NewExtractor(ExtractorConfig{
		Log:             logger.NewLogger("raw-data-loader", "info", true),
		Db:              db,
		SchemaTable:     rdbms.NewSchemaTable("dbo", "customers"),
		CursorColumn:    "updated_at",
		ColumnsToSelect: []string{"id", "name", "updated_at"},
		ChunkSize:       chunkSize,
	})
}

func TestBuildIncrementalQuerySqlServer(t *testing.T) {
	e := newExtractor(rdbms.NewMockConnector(constants.ConnectionTypeSqlServer), 10)
	expected := "select [id], [name], [updated_at] from [dbo].[customers] where [updated_at] > @p1 order by [updated_at] asc"
	if got := e.buildIncrementalQuery(); got != expected {
		t.Fatalf("expected %q; got %q", expected, got)
	}
}

func TestBuildIncrementalQueryPostgres(t *testing.T) {
	e := NewExtractor(ExtractorConfig{
		Log:             logger.NewLogger("raw-data-loader", "info", true),
		Db:              rdbms.NewMockConnector(constants.ConnectionTypePostgres),
		SchemaTable:     rdbms.NewSchemaTable("public", "orders"),
		CursorColumn:    "modified",
		ColumnsToSelect: []string{"id", "modified"},
	})
	expected := "select id, modified from public.orders where modified > $1 order by modified asc"
	if got := e.buildIncrementalQuery(); got != expected {
		t.Fatalf("expected %q; got %q", expected, got)
	}
}

func TestExtractChunksAreBoundedAndIndexed(t *testing.T) {
	data := make([][]interface{}, 5)
	for i := range data {
		data[i] = []interface{}{int64(i), "n", "2024-01-01 00:00:00.000"}
	}
	rows := rdbms.NewMockRows([]string{"id", "name", "updated_at"}, data)
	db := rdbms.NewMockConnector(constants.ConnectionTypeSqlServer, rows)
	e := newExtractor(db, 2)

	reader, err := e.Extract(context.Background(), constants.CursorDefaultValue)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	var sizes []int
	var indices []int
	for {
		chunk, ok, err := reader.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		sizes = append(sizes, chunk.NumRows())
		indices = append(indices, chunk.Index)
	}
	expectedSizes := []int{2, 2, 1}
	if len(sizes) != len(expectedSizes) {
		t.Fatalf("expected %v chunks; got %v", expectedSizes, sizes)
	}
	for i := range expectedSizes {
		if sizes[i] != expectedSizes[i] {
			t.Fatalf("expected sizes %v; got %v", expectedSizes, sizes)
		}
		if indices[i] != i+1 {
			t.Fatalf("chunks must be 1-indexed; got %v", indices)
		}
	}
	if !rows.Closed {
		t.Fatal("expected result set to be closed when exhausted")
	}
	if len(db.LastArgs) != 1 || db.LastArgs[0] != constants.CursorDefaultValue {
		t.Fatalf("expected cursor bind argument; got %v", db.LastArgs)
	}
}

func TestExtractEmptyResultYieldsNoChunks(t *testing.T) {
	rows := rdbms.NewMockRows([]string{"id", "name", "updated_at"}, nil)
	e := newExtractor(rdbms.NewMockConnector(constants.ConnectionTypeSqlServer, rows), 2)

	reader, err := e.Extract(context.Background(), constants.CursorDefaultValue)
	if err != nil {
		t.Fatal(err)
	}
	_, ok, err := reader.Next()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected no chunks for an empty result set")
	}
}

func TestExtractQueryErrorPropagates(t *testing.T) {
	db := rdbms.NewMockConnector(constants.ConnectionTypeSqlServer)
	db.QueryErr = errors.New("connection reset")
	e := newExtractor(db, 2)

	if _, err := e.Extract(context.Background(), constants.CursorDefaultValue); err == nil {
		t.Fatal("expected query error to propagate")
	}
}

func TestExtractMidIterationErrorAborts(t *testing.T) {
	data := make([][]interface{}, 4)
	for i := range data {
		data[i] = []interface{}{int64(i), "n", "2024-01-01 00:00:00.000"}
	}
	rows := rdbms.NewMockRows([]string{"id", "name", "updated_at"}, data)
	rows.ErrAfter = 3 // fail while building the second chunk
	rows.IterErr = errors.New("network dropped")
	e := newExtractor(rdbms.NewMockConnector(constants.ConnectionTypeSqlServer, rows), 2)

	reader, err := e.Extract(context.Background(), constants.CursorDefaultValue)
	if err != nil {
		t.Fatal(err)
	}
	// First chunk arrives intact.
	chunk, ok, err := reader.Next()
	if err != nil || !ok || chunk.NumRows() != 2 {
		t.Fatalf("expected healthy first chunk; got ok=%v err=%v", ok, err)
	}
	// The failure surfaces on the next pull and the partial chunk is discarded.
	_, ok, err = reader.Next()
	if err == nil || ok {
		t.Fatalf("expected mid-iteration error; got ok=%v err=%v", ok, err)
	}
	if !rows.Closed {
		t.Fatal("expected result set to be closed on the error path")
	}
}

func TestChunkSizeDefaultApplied(t *testing.T) {
	e := NewExtractor(ExtractorConfig{
		Log:          logger.NewLogger("raw-data-loader", "info", true),
		Db:           rdbms.NewMockConnector(constants.ConnectionTypeSqlServer),
		SchemaTable:  rdbms.NewSchemaTable("dbo", "t"),
		CursorColumn: "c",
	})
	if e.cfg.ChunkSize != constants.ChunkSizeDefault {
		t.Fatalf("expected default chunk size; got %v", e.cfg.ChunkSize)
	}
}
