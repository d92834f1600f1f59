package constants

const (
	// EnvVarPrefix is prepended to all environment variables read by the loader.
	EnvVarPrefix = "RDL"

	// CursorDefaultValue is the sentinel returned when no cursor state exists
	// for a table yet. It predates any plausible source data and therefore
	// triggers a full historical load.
	CursorDefaultValue = "1900-01-01 00:00:00.000"

	// TimeFormatCursor formats cursor timestamps. Lexicographic order of the
	// formatted value matches chronological order, so the running maximum can
	// be tracked with plain string comparison.
	TimeFormatCursor = "2006-01-02 15:04:05.000"

	// TimeFormatRunStamp is the compact run timestamp used in output file names.
	TimeFormatRunStamp = "20060102150405"

	ChunkSizeDefault = 100000

	// State object keys, relative to the bucket prefix.
	// Kind is the source connection type, e.g. "sqlserver" or "postgres".
	CursorKeyPattern    = "%s/tables/%s/state/%s_cursor.txt"    // kind, table, table
	SchemaKeyPattern    = "%s/tables/%s/state/%s_schema.json"   // kind, table, table
	IngestionKeyPattern = "%s/tables/%s/ingestion/%s/%s_%d.parquet" // kind, table, partition, runStamp, chunkIndex

	ManifestKeyDefault = "manifest.json"

	ParquetContentType = "application/parquet"

	ConnectionTypeSqlServer = "sqlserver"
	ConnectionTypePostgres  = "postgres"

	EnvVarLambdaMode = EnvVarPrefix + "_LAMBDA_MODE"
	EnvVarLogLevel   = EnvVarPrefix + "_LOG_LEVEL"
)

// SensitiveFields lists column names whose values are encrypted before they
// leave the pipeline. Matching is exact on the lower-cased column name.
var SensitiveFields = []string{
	"email",
	"ssn",
	"phone_number",
	"tax_id",
}
