package schema

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/oiluj0002/raw-data-loader/logger"
)

// WriteField is one column of the output file schema.
type WriteField struct {
	Name string
	Type CanonicalType
}

// WriteSchema is the ordered column layout written to every output file.
// It is derived from the reference schema, not the current one, so that
// the structure of output files stays stable across runs for as long as
// the reference schema is not overwritten.
type WriteSchema struct {
	Fields []WriteField

	byName map[string]CanonicalType
}

// BuildWriteSchema applies the type mapper to each column of the reference
// schema, preserving its column order.
func BuildWriteSchema(log logger.Logger, reference *ColumnSchema) *WriteSchema {
	ws := &WriteSchema{
		Fields: make([]WriteField, 0, reference.Len()),
		byName: make(map[string]CanonicalType, reference.Len()),
	}
	for _, name := range reference.Names() {
		nativeType, _ := reference.Get(name)
		ct := MapNativeType(log, nativeType)
		ws.Fields = append(ws.Fields, WriteField{Name: name, Type: ct})
		ws.byName[name] = ct
	}
	return ws
}

// FieldType returns the canonical type for the named column.
func (ws *WriteSchema) FieldType(name string) (CanonicalType, bool) {
	t, ok := ws.byName[name]
	return t, ok
}

// Names returns the output column names in write order.
func (ws *WriteSchema) Names() []string {
	names := make([]string, len(ws.Fields))
	for i, f := range ws.Fields {
		names[i] = f.Name
	}
	return names
}

// ToArrow converts the write schema into an Arrow schema. All fields are
// nullable; nullability constraints from the source are not carried into
// output files.
func (ws *WriteSchema) ToArrow() *arrow.Schema {
	fields := make([]arrow.Field, len(ws.Fields))
	for i, f := range ws.Fields {
		fields[i] = arrow.Field{Name: f.Name, Type: arrowType(f.Type), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(t CanonicalType) arrow.DataType {
	switch t {
	case TypeInt64:
		return arrow.PrimitiveTypes.Int64
	case TypeDecimal:
		return &arrow.Decimal128Type{Precision: DecimalPrecision, Scale: DecimalScale}
	case TypeFloat64:
		return arrow.PrimitiveTypes.Float64
	case TypeBool:
		return arrow.FixedWidthTypes.Boolean
	case TypeTimestampMs:
		return arrow.FixedWidthTypes.Timestamp_ms
	case TypeDate32:
		return arrow.FixedWidthTypes.Date32
	default:
		return arrow.BinaryTypes.String
	}
}
