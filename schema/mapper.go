package schema

import (
	"strings"

	"github.com/oiluj0002/raw-data-loader/logger"
)

// CanonicalType is the closed set of columnar output types.
type CanonicalType int

const (
	TypeInt64 CanonicalType = iota
	TypeDecimal                   // fixed point, precision 38 scale 9
	TypeFloat64
	TypeBool
	TypeTimestampMs
	TypeString
	TypeDate32
)

const (
	DecimalPrecision = 38
	DecimalScale     = 9
)

func (t CanonicalType) String() string {
	switch t {
	case TypeInt64:
		return "int64"
	case TypeDecimal:
		return "decimal(38,9)"
	case TypeFloat64:
		return "float64"
	case TypeBool:
		return "bool"
	case TypeTimestampMs:
		return "timestamp[ms]"
	case TypeString:
		return "string"
	case TypeDate32:
		return "date32"
	default:
		return "unknown"
	}
}

// typeRule matches a native type descriptor by case-insensitive substring.
type typeRule struct {
	tokens []string
	result CanonicalType
}

// typeRules is evaluated in order; first match wins. "date" must come after
// "datetime"/"timestamp" so that datetime columns keep their time component,
// and the string tokens come before "date" so types like "datechar" cannot
// shadow real character types.
var typeRules = []typeRule{
	{tokens: []string{"int", "smallint", "tinyint", "bigint"}, result: TypeInt64},
	{tokens: []string{"decimal", "numeric", "money"}, result: TypeDecimal},
	{tokens: []string{"float", "real"}, result: TypeFloat64},
	{tokens: []string{"bit"}, result: TypeBool},
	{tokens: []string{"timestamp", "datetime"}, result: TypeTimestampMs},
	{tokens: []string{"char", "text", "varchar", "nvarchar"}, result: TypeString},
	{tokens: []string{"date"}, result: TypeDate32},
}

// MapNativeType maps a native database type descriptor to its canonical
// columnar type. The function is total: anything unmatched falls back to
// string with a single logged warning.
func MapNativeType(log logger.Logger, nativeType string) CanonicalType {
	lower := strings.ToLower(nativeType)
	for _, rule := range typeRules {
		for _, tok := range rule.tokens {
			if strings.Contains(lower, tok) {
				return rule.result
			}
		}
	}
	log.Warn("no canonical type mapping for native type ", nativeType, " - falling back to string")
	return TypeString
}
