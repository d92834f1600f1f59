package rdbms

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/oiluj0002/raw-data-loader/constants"
	"github.com/oiluj0002/raw-data-loader/logger"
	"github.com/oiluj0002/raw-data-loader/schema"
)

// columnsSql fetches column metadata for a schema-qualified table, one row per
// column in ordinal position order, keyed by connection type.
var columnsSql = map[string]string{
	constants.ConnectionTypeSqlServer: `select COLUMN_NAME, DATA_TYPE,
				CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, NUMERIC_SCALE
			from information_schema.columns
			where table_schema = @p1
			and table_name = @p2
			order by ordinal_position`,
	constants.ConnectionTypePostgres: `select column_name, data_type,
				character_maximum_length, numeric_precision, numeric_scale
			from information_schema.columns
			where table_schema = $1
			and table_name = $2
			order by ordinal_position`,
}

// GetTableSchema inspects the live table and returns its column name to
// native-type mapping in ordinal position order. The native type descriptor
// carries length or precision/scale where the engine reports them,
// e.g. "nvarchar(255)" or "decimal(18,2)".
func GetTableSchema(ctx context.Context, log logger.Logger, db Connector, st *SchemaTable) (*schema.ColumnSchema, error) {
	sqltext, ok := columnsSql[db.GetType()]
	if !ok {
		return nil, fmt.Errorf("no schema inspection SQL for database type %q", db.GetType())
	}
	rows, err := db.QueryContext(ctx, sqltext, st.GetSchema(), st.GetTable())
	if err != nil {
		return nil, errors.Wrapf(err, "error inspecting schema of table %q", st.String())
	}
	defer rows.Close()
	cols := schema.NewColumnSchema()
	for rows.Next() {
		var name, dataType string
		var charLen, precision, scale sql.NullInt64
		if err = rows.Scan(&name, &dataType, &charLen, &precision, &scale); err != nil {
			return nil, errors.Wrap(err, "error scanning column metadata")
		}
		cols.Set(name, buildTypeDescriptor(dataType, charLen, precision, scale))
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating column metadata")
	}
	if cols.Len() == 0 {
		return nil, fmt.Errorf("no column metadata found for table %q", st.String())
	}
	log.Info("fetched current schema for ", st.String(), " with ", cols.Len(), " columns")
	return cols, nil
}

// buildTypeDescriptor composes the native type string stored in the reference
// schema from the parts reported by information_schema.
func buildTypeDescriptor(dataType string, charLen, precision, scale sql.NullInt64) string {
	dt := strings.ToLower(dataType)
	switch {
	case isCharacterType(dt) && charLen.Valid:
		if charLen.Int64 < 0 { // varchar(max) and friends report -1
			return fmt.Sprintf("%s(max)", dt)
		}
		return fmt.Sprintf("%s(%d)", dt, charLen.Int64)
	case isExactNumericType(dt) && precision.Valid:
		s := int64(0)
		if scale.Valid {
			s = scale.Int64
		}
		return fmt.Sprintf("%s(%d,%d)", dt, precision.Int64, s)
	default:
		return dt
	}
}

func isCharacterType(dt string) bool {
	return strings.Contains(dt, "char") || strings.Contains(dt, "text")
}

func isExactNumericType(dt string) bool {
	return strings.Contains(dt, "decimal") || strings.Contains(dt, "numeric")
}
