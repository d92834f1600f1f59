package schema

import (
	"testing"
)

func TestColumnSchemaOrderAndLookup(t *testing.T) {
	s := NewColumnSchema()
	s.Set("id", "int")
	s.Set("name", "varchar(100)")
	s.Set("amount", "decimal(18,2)")

	if s.Len() != 3 {
		t.Fatalf("expected 3 columns; got %v", s.Len())
	}
	names := s.Names()
	expected := []string{"id", "name", "amount"}
	for i, n := range expected {
		if names[i] != n {
			t.Fatalf("expected insertion order %v; got %v", expected, names)
		}
	}
	sorted := s.SortedNames()
	expectedSorted := []string{"amount", "id", "name"}
	for i, n := range expectedSorted {
		if sorted[i] != n {
			t.Fatalf("expected sorted order %v; got %v", expectedSorted, sorted)
		}
	}
	v, ok := s.Get("amount")
	if !ok || v != "decimal(18,2)" {
		t.Fatalf("expected decimal(18,2); got %q ok=%v", v, ok)
	}
	if _, ok = s.Get("missing"); ok {
		t.Fatal("expected missing column to report not found")
	}
}

func TestColumnSchemaJSONRoundTrip(t *testing.T) {
	s := NewColumnSchema()
	s.Set("id", "int")
	s.Set("created_at", "datetime2")
	s.Set("name", "nvarchar(255)")

	data, err := s.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	got, err := FromJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if !s.Equal(got) {
		t.Fatalf("round trip mismatch: %v != %v", s, got)
	}
	// Insertion order survives the round trip too.
	names := got.Names()
	expected := []string{"id", "created_at", "name"}
	for i, n := range expected {
		if names[i] != n {
			t.Fatalf("expected order %v; got %v", expected, names)
		}
	}
}

func TestColumnSchemaJSONEmpty(t *testing.T) {
	s := NewColumnSchema()
	data, err := s.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	got, err := FromJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 0 {
		t.Fatalf("expected empty schema; got %v", got)
	}
}

func TestFromJSONRejectsNonObject(t *testing.T) {
	if _, err := FromJSON([]byte(`["id"]`)); err == nil {
		t.Fatal("expected error for non-object schema JSON")
	}
}

func TestColumnSchemaEqual(t *testing.T) {
	a := NewColumnSchema()
	a.Set("id", "int")
	a.Set("name", "text")
	b := NewColumnSchema()
	b.Set("name", "text")
	b.Set("id", "int")
	if !a.Equal(b) {
		t.Fatal("order must not affect equality")
	}
	b.Set("extra", "int")
	if a.Equal(b) {
		t.Fatal("expected inequality after adding a column")
	}
	c := NewColumnSchema()
	c.Set("id", "bigint")
	c.Set("name", "text")
	if a.Equal(c) {
		t.Fatal("expected inequality for differing native types")
	}
}
