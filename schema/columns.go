package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	om "github.com/cevaris/ordered_map"
	"github.com/pkg/errors"
)

// ColumnSchema maps column names to their native database type descriptor,
// e.g. "decimal(18,2)". Insertion order is preserved as returned by the
// source inspector; it is not semantically significant beyond display and
// stable serialization.
type ColumnSchema struct {
	cols *om.OrderedMap
}

func NewColumnSchema() *ColumnSchema {
	return &ColumnSchema{cols: om.NewOrderedMap()}
}

func (s *ColumnSchema) Set(name string, nativeType string) {
	s.cols.Set(name, nativeType)
}

func (s *ColumnSchema) Get(name string) (string, bool) {
	v, ok := s.cols.Get(name)
	if !ok {
		return "", false
	}
	return v.(string), true
}

func (s *ColumnSchema) Len() int {
	return s.cols.Len()
}

// Names returns the column names in insertion order.
func (s *ColumnSchema) Names() []string {
	names := make([]string, 0, s.cols.Len())
	iter := s.cols.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		names = append(names, kv.Key.(string))
	}
	return names
}

// SortedNames returns the column names sorted lexicographically.
func (s *ColumnSchema) SortedNames() []string {
	names := s.Names()
	sort.Strings(names)
	return names
}

// NameSet returns the column names as a set.
func (s *ColumnSchema) NameSet() map[string]struct{} {
	set := make(map[string]struct{}, s.cols.Len())
	for _, n := range s.Names() {
		set[n] = struct{}{}
	}
	return set
}

// Equal reports whether both schemas hold the same columns with the same
// native types. Order is ignored.
func (s *ColumnSchema) Equal(other *ColumnSchema) bool {
	if other == nil || s.Len() != other.Len() {
		return false
	}
	for _, n := range s.Names() {
		v, _ := s.Get(n)
		ov, ok := other.Get(n)
		if !ok || v != ov {
			return false
		}
	}
	return true
}

func (s *ColumnSchema) String() string {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, n := range s.Names() {
		if i > 0 {
			buf.WriteString(", ")
		}
		v, _ := s.Get(n)
		buf.WriteString(fmt.Sprintf("%s: %s", n, v))
	}
	buf.WriteString("}")
	return buf.String()
}

// ToJSON serializes the schema as a pretty-printed JSON object whose keys are
// column names. Key order follows insertion order.
func (s *ColumnSchema) ToJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	names := s.Names()
	for i, n := range names {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n    ")
		k, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		v, _ := s.Get(n)
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(vb)
	}
	if len(names) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}")
	return buf.Bytes(), nil
}

// FromJSON parses a JSON object of column name to native type, preserving the
// key order found in the document.
func FromJSON(data []byte) (*ColumnSchema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "error parsing schema JSON")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("schema JSON must be an object")
	}
	s := NewColumnSchema()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, "error parsing schema JSON key")
		}
		key := keyTok.(string)
		var val string
		if err = dec.Decode(&val); err != nil {
			return nil, errors.Wrapf(err, "error parsing schema JSON value for column %q", key)
		}
		s.Set(key, val)
	}
	return s, nil
}
