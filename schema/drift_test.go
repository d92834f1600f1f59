package schema

import (
	"testing"

	"github.com/oiluj0002/raw-data-loader/logger"
)

func newSchemaFromPairs(pairs [][2]string) *ColumnSchema {
	s := NewColumnSchema()
	for _, p := range pairs {
		s.Set(p[0], p[1])
	}
	return s
}

func TestReconcileClassifiesDrift(t *testing.T) {
	log := logger.NewLogger("raw-data-loader", "info", true)
	reference := newSchemaFromPairs([][2]string{{"id", "int"}, {"name", "varchar(50)"}, {"old_col", "int"}})
	current := newSchemaFromPairs([][2]string{{"id", "int"}, {"name", "varchar(50)"}, {"fresh_col", "bit"}})

	d := Reconcile(log, reference, current)

	if len(d.NewColumns) != 1 {
		t.Fatalf("expected 1 new column; got %v", d.NewColumns)
	}
	if _, ok := d.NewColumns["fresh_col"]; !ok {
		t.Fatalf("expected fresh_col in new columns; got %v", d.NewColumns)
	}
	if len(d.DeletedColumns) != 1 {
		t.Fatalf("expected 1 deleted column; got %v", d.DeletedColumns)
	}
	if _, ok := d.DeletedColumns["old_col"]; !ok {
		t.Fatalf("expected old_col in deleted columns; got %v", d.DeletedColumns)
	}
	expected := []string{"id", "name"}
	if len(d.ColumnsToSelect) != len(expected) {
		t.Fatalf("expected %v; got %v", expected, d.ColumnsToSelect)
	}
	for i, n := range expected {
		if d.ColumnsToSelect[i] != n {
			t.Fatalf("expected %v; got %v", expected, d.ColumnsToSelect)
		}
	}
}

func TestReconcileIdenticalSchemasIsIdempotent(t *testing.T) {
	log := logger.NewLogger("raw-data-loader", "info", true)
	s := newSchemaFromPairs([][2]string{{"b", "int"}, {"a", "int"}, {"c", "datetime"}})

	d := Reconcile(log, s, s)

	if len(d.NewColumns) != 0 || len(d.DeletedColumns) != 0 {
		t.Fatalf("expected no drift; got new=%v deleted=%v", d.NewColumns, d.DeletedColumns)
	}
	expected := []string{"a", "b", "c"}
	for i, n := range expected {
		if d.ColumnsToSelect[i] != n {
			t.Fatalf("expected sorted select list %v; got %v", expected, d.ColumnsToSelect)
		}
	}
}

func TestReconcileColumnsToSelectIsSortedIntersection(t *testing.T) {
	log := logger.NewLogger("raw-data-loader", "info", true)
	reference := newSchemaFromPairs([][2]string{{"z", "int"}, {"m", "int"}, {"a", "int"}})
	current := newSchemaFromPairs([][2]string{{"m", "int"}, {"z", "int"}, {"q", "int"}})

	d := Reconcile(log, reference, current)

	expected := []string{"m", "z"}
	if len(d.ColumnsToSelect) != len(expected) {
		t.Fatalf("expected %v; got %v", expected, d.ColumnsToSelect)
	}
	for i, n := range expected {
		if d.ColumnsToSelect[i] != n {
			t.Fatalf("expected %v; got %v", expected, d.ColumnsToSelect)
		}
	}
}

func TestNoDrift(t *testing.T) {
	current := newSchemaFromPairs([][2]string{{"b", "int"}, {"a", "varchar(10)"}})
	d := NoDrift(current)
	if len(d.NewColumns) != 0 || len(d.DeletedColumns) != 0 {
		t.Fatal("bootstrap classification must not report drift")
	}
	expected := []string{"a", "b"}
	for i, n := range expected {
		if d.ColumnsToSelect[i] != n {
			t.Fatalf("expected %v; got %v", expected, d.ColumnsToSelect)
		}
	}
}
