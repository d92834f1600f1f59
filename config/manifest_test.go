package config

import (
	"strings"
	"testing"

	"github.com/oiluj0002/raw-data-loader/aws/s3"
	"github.com/oiluj0002/raw-data-loader/logger"
)

const manifestJson = `[
  {"schema": "dbo", "table": "orders", "cursor_column": "updated_at", "chunk_size": 5000},
  {"schema": "dbo", "table": "customers", "cursor_column": "modified", "hour_partition": true}
]`

const manifestYaml = `
- schema: dbo
  table: orders
  cursor_column: updated_at
  chunk_size: 5000
- schema: dbo
  table: customers
  cursor_column: modified
  hour_partition: true
`

func TestParseManifestJson(t *testing.T) {
	m, err := ParseManifest([]byte(manifestJson))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Jobs) != 2 {
		t.Fatalf("expected 2 jobs; got %d", len(m.Jobs))
	}
	j := m.Jobs[0]
	if j.Schema != "dbo" || j.Table != "orders" || j.CursorColumn != "updated_at" || j.ChunkSize != 5000 {
		t.Fatalf("unexpected job %+v", j)
	}
	if !m.Jobs[1].HourPartition {
		t.Fatal("expected hour partition on second job")
	}
}

func TestParseManifestYaml(t *testing.T) {
	m, err := ParseManifest([]byte(manifestYaml))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Jobs) != 2 {
		t.Fatalf("expected 2 jobs; got %d", len(m.Jobs))
	}
	if m.Jobs[1].Table != "customers" {
		t.Fatalf("unexpected job %+v", m.Jobs[1])
	}
}

func TestParseManifestRejectsMissingTable(t *testing.T) {
	if _, err := ParseManifest([]byte(`[{"schema": "dbo"}]`)); err == nil {
		t.Fatal("expected error for entry without table")
	}
}

func TestFetchManifest(t *testing.T) {
	log := logger.NewLogger("raw-data-loader", "info", true)
	mock := s3.NewMockBasicClient()
	if err := mock.Put("manifest.json", []byte(manifestJson), "application/json"); err != nil {
		t.Fatal(err)
	}
	m, err := FetchManifest(log, mock, "manifest.json")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Jobs) != 2 {
		t.Fatalf("expected 2 jobs; got %d", len(m.Jobs))
	}
}

func TestFetchManifestMissingKey(t *testing.T) {
	log := logger.NewLogger("raw-data-loader", "info", true)
	if _, err := FetchManifest(log, s3.NewMockBasicClient(), "missing.json"); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

func TestJobSelection(t *testing.T) {
	m, err := ParseManifest([]byte(manifestJson))
	if err != nil {
		t.Fatal(err)
	}
	j, err := m.Job(1)
	if err != nil {
		t.Fatal(err)
	}
	if j.Table != "customers" {
		t.Fatalf("unexpected job %+v", j)
	}
	if _, err = m.Job(2); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("expected out of range error; got %v", err)
	}
	if _, err = m.Job(-1); err == nil {
		t.Fatal("expected out of range error for negative index")
	}
}
