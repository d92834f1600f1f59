package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/pkg/errors"

	"github.com/oiluj0002/raw-data-loader/constants"
	"github.com/oiluj0002/raw-data-loader/logger"
	"github.com/oiluj0002/raw-data-loader/schema"
	"github.com/oiluj0002/raw-data-loader/stream"
)

// timestampLayouts are tried in order when a source value arrives as text.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// TransformerConfig wires a chunk transformer to the schema decisions made at
// the start of the run.
type TransformerConfig struct {
	Log         logger.Logger
	Drift       schema.Drift
	WriteSchema *schema.WriteSchema
	// Cipher, when set, enables encryption of the sensitive columns listed in
	// constants.SensitiveFields.
	Cipher *FieldCipher
}

// Transformer applies schema-drift corrections and type normalization to each
// chunk before it is written out.
type Transformer struct {
	cfg             TransformerConfig
	deletedColumns  []string
	sensitiveFields map[string]struct{}
}

func NewTransformer(cfg TransformerConfig) *Transformer {
	deleted := make([]string, 0, len(cfg.Drift.DeletedColumns))
	for name := range cfg.Drift.DeletedColumns {
		deleted = append(deleted, name)
	}
	sort.Strings(deleted)
	sensitive := make(map[string]struct{}, len(constants.SensitiveFields))
	for _, f := range constants.SensitiveFields {
		sensitive[f] = struct{}{}
	}
	return &Transformer{cfg: cfg, deletedColumns: deleted, sensitiveFields: sensitive}
}

// Transform returns a new chunk with deleted columns null-filled and every
// value normalized to its canonical output type. The input chunk is not
// mutated. Any failure aborts the run; there is no partial-row salvage.
func (t *Transformer) Transform(chunk stream.Chunk) (stream.Chunk, error) {
	columns := make([]string, 0, len(chunk.Columns)+len(t.deletedColumns))
	columns = append(columns, chunk.Columns...)
	columns = append(columns, t.deletedColumns...)

	out := stream.NewChunk(chunk.Index, columns, chunk.NumRows())
	for _, row := range chunk.Rows {
		newRow := make([]interface{}, len(columns))
		for i, name := range chunk.Columns {
			v, err := t.transformValue(name, row[i])
			if err != nil {
				return stream.Chunk{}, errors.Wrapf(err, "error transforming chunk %d column %q", chunk.Index, name)
			}
			newRow[i] = v
		}
		// Deleted source columns stay null so the output structure is stable.
		out.Rows = append(out.Rows, newRow)
	}
	t.cfg.Log.Debug("chunk ", chunk.Index, " transformed")
	return out, nil
}

func (t *Transformer) transformValue(name string, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	ct, ok := t.cfg.WriteSchema.FieldType(name)
	if !ok { // columns outside the write schema are dropped later by the loader.
		return value, nil
	}
	v, err := normalize(value, ct)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	if _, sensitive := t.sensitiveFields[strings.ToLower(name)]; sensitive && t.cfg.Cipher != nil {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("sensitive column %q must map to a string type, got %v", name, ct)
		}
		encrypted, err := t.cfg.Cipher.EncryptString(s)
		if err != nil {
			return nil, errors.Wrapf(err, "error encrypting column %q", name)
		}
		return encrypted, nil
	}
	return v, nil
}

// normalize coerces a raw driver value into the representation expected by
// the loader for the given canonical type.
func normalize(value interface{}, ct schema.CanonicalType) (interface{}, error) {
	switch ct {
	case schema.TypeInt64:
		return toInt64(value)
	case schema.TypeDecimal:
		return toDecimal(value)
	case schema.TypeFloat64:
		return toFloat64(value)
	case schema.TypeBool:
		return toBool(value)
	case schema.TypeTimestampMs:
		// Unparsable timestamps are coerced to null, not raised.
		return toTimestampMs(value), nil
	case schema.TypeDate32:
		return toDate(value), nil
	default:
		return toString(value), nil
	}
}

func toInt64(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case []byte:
		return parseInt64(string(v))
	case string:
		return parseInt64(v)
	default:
		return nil, fmt.Errorf("cannot convert %T to int64", value)
	}
}

func parseInt64(s string) (interface{}, error) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse %q as int64", s)
	}
	return i, nil
}

// toDecimal converts through the value's decimal string representation,
// never through binary float arithmetic, to avoid precision loss.
func toDecimal(value interface{}) (interface{}, error) {
	var s string
	switch v := value.(type) {
	case string:
		s = strings.TrimSpace(v)
	case []byte:
		s = strings.TrimSpace(string(v))
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int64:
		s = strconv.FormatInt(v, 10)
	case int:
		s = strconv.Itoa(v)
	default:
		return nil, fmt.Errorf("cannot convert %T to decimal", value)
	}
	num, err := decimal128.FromString(s, schema.DecimalPrecision, schema.DecimalScale)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse %q as decimal(%d,%d)", s, schema.DecimalPrecision, schema.DecimalScale)
	}
	return num, nil
}

func toFloat64(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case []byte:
		return parseFloat64(string(v))
	case string:
		return parseFloat64(v)
	default:
		return nil, fmt.Errorf("cannot convert %T to float64", value)
	}
}

func parseFloat64(s string) (interface{}, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse %q as float64", s)
	}
	return f, nil
}

func toBool(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case []byte:
		return parseBool(string(v))
	case string:
		return parseBool(v)
	default:
		return nil, fmt.Errorf("cannot convert %T to bool", value)
	}
}

func parseBool(s string) (interface{}, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse %q as bool", s)
	}
	return b, nil
}

// toTimestampMs coerces to a UTC time truncated to millisecond resolution.
// Unparsable values become null.
func toTimestampMs(value interface{}) interface{} {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Truncate(time.Millisecond)
	case string:
		return parseTimestamp(v)
	case []byte:
		return parseTimestamp(string(v))
	default:
		return nil
	}
}

func parseTimestamp(s string) interface{} {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Millisecond)
		}
	}
	return nil
}

// toDate coerces to a UTC time at midnight. Unparsable values become null.
func toDate(value interface{}) interface{} {
	t := toTimestampMs(value)
	if t == nil {
		return nil
	}
	tt := t.(time.Time)
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, time.UTC)
}

func toString(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC().Format(constants.TimeFormatCursor)
	default:
		return fmt.Sprintf("%v", v)
	}
}
