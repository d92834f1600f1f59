package actions

import (
	"context"
	"time"

	"github.com/oiluj0002/raw-data-loader/aws/s3"
	"github.com/oiluj0002/raw-data-loader/config"
	"github.com/oiluj0002/raw-data-loader/constants"
	"github.com/oiluj0002/raw-data-loader/extract"
	"github.com/oiluj0002/raw-data-loader/load"
	"github.com/oiluj0002/raw-data-loader/logger"
	"github.com/oiluj0002/raw-data-loader/metadata"
	"github.com/oiluj0002/raw-data-loader/rdbms"
	"github.com/oiluj0002/raw-data-loader/schema"
	"github.com/oiluj0002/raw-data-loader/stats"
	"github.com/oiluj0002/raw-data-loader/stream"
	"github.com/oiluj0002/raw-data-loader/transform"
)

// ExtractLoadConfig carries everything one run needs. Db and S3Client may be
// pre-wired by tests; when nil they are opened from Settings.
type ExtractLoadConfig struct {
	Log              logger.Logger
	Settings         *config.Settings
	Db               rdbms.Connector
	S3Client         s3.BasicClient
	StackDumpOnPanic bool
}

// RunExtractLoad performs one incremental extract-load run for one table:
// reconcile the table schema against the stored reference, stream new rows
// in chunks through transform and Parquet load, then commit the new cursor.
// Any failure propagates without committing, so the next run re-reads from
// the last committed cursor.
func RunExtractLoad(cfg *ExtractLoadConfig) error {
	log := cfg.Log
	if log == nil {
		log = logger.NewLogger("raw-data-loader", cfg.Settings.LogLevel, cfg.StackDumpOnPanic)
	}
	s := cfg.Settings

	// Resolve per-table config from the manifest when a task index is set.
	if s.ManifestMode() {
		if cfg.S3Client == nil {
			cfg.S3Client = s3.NewBasicClient(s.BucketName, s.BucketRegion, s.BucketPrefix)
		}
		m, err := config.FetchManifest(log, cfg.S3Client, s.ManifestKey)
		if err != nil {
			return err
		}
		job, err := m.Job(s.TaskIndex)
		if err != nil {
			return err
		}
		s.ApplyJob(job)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if cfg.S3Client == nil {
		cfg.S3Client = s3.NewBasicClient(s.BucketName, s.BucketRegion, s.BucketPrefix)
	}
	if cfg.Db == nil {
		db, err := rdbms.OpenConnection(log, s.SourceDsn)
		if err != nil {
			return err
		}
		cfg.Db = db
		defer db.Close()
	}
	var cipher *transform.FieldCipher
	if len(s.EncryptionKey) > 0 {
		var err error
		cipher, err = transform.NewFieldCipher(s.EncryptionKey)
		if err != nil {
			return err
		}
	}

	ctx := context.Background()
	st := rdbms.NewSchemaTable(s.SchemaName, s.TableName)
	store := metadata.NewStore(log, cfg.S3Client, s.SourceKind, s.TableName)
	tracker := stats.NewRunTracker(log, s.TableName)

	// Schema reconciliation.
	current, err := rdbms.GetTableSchema(ctx, log, cfg.Db, &st)
	if err != nil {
		return err
	}
	reference, found, err := store.GetReferenceSchema()
	if err != nil {
		return err
	}
	var drift schema.Drift
	if !found { // first run for this table...
		log.Info("no reference schema found; storing current schema as reference")
		if err = store.SaveReferenceSchema(current); err != nil {
			return err
		}
		reference = current
		drift = schema.NoDrift(current)
	} else {
		drift = schema.Reconcile(log, reference, current)
	}
	// Output files follow the reference schema so their structure stays
	// stable across runs.
	writeSchema := schema.BuildWriteSchema(log, reference)

	lastCursor, err := store.GetLastCursor()
	if err != nil {
		return err
	}
	log.Info("extracting ", st.String(), " rows after cursor ", lastCursor)

	extractor := extract.NewExtractor(extract.ExtractorConfig{
		Log:             log,
		Db:              cfg.Db,
		SchemaTable:     st,
		CursorColumn:    s.CursorColumn,
		ColumnsToSelect: drift.ColumnsToSelect,
		ChunkSize:       s.ChunkSize,
	})
	transformer := transform.NewTransformer(transform.TransformerConfig{
		Log:         log,
		Drift:       drift,
		WriteSchema: writeSchema,
		Cipher:      cipher,
	})
	loader := load.NewPartitionedLoader(load.LoaderConfig{
		Log:          log,
		Client:       cfg.S3Client,
		WriteSchema:  writeSchema,
		SourceKind:   s.SourceKind,
		TableName:    s.TableName,
		RunTimestamp: s.ExecutionTimestamp,
		IncludeHour:  s.HourPartition,
	})

	reader, err := extractor.Extract(ctx, lastCursor)
	if err != nil {
		return err
	}
	defer reader.Close()
	for {
		chunk, ok, err := reader.Next()
		if err != nil {
			tracker.LogSummary("failed")
			return err
		}
		if !ok {
			break
		}
		observeChunkCursor(tracker, chunk, s.CursorColumn)
		out, err := transformer.Transform(chunk)
		if err != nil {
			tracker.LogSummary("failed")
			return err
		}
		if _, err = loader.Load(out); err != nil {
			tracker.LogSummary("failed")
			return err
		}
		tracker.AddChunk(chunk.NumRows())
	}

	// Commit. The cursor only moves once every chunk of the run is written.
	if tracker.NumChunks() > 0 {
		if err = store.UpdateCursor(tracker.MaxCursor()); err != nil {
			tracker.LogSummary("failed")
			return err
		}
	} else {
		log.Info("no new data for ", st.String(), "; cursor not moved")
	}
	tracker.LogSummary("complete")
	return nil
}

// observeChunkCursor feeds the raw cursor column values of a chunk into the
// tracker so the commit phase knows the max value extracted.
func observeChunkCursor(tracker *stats.RunTracker, chunk stream.Chunk, cursorColumn string) {
	idx := chunk.ColumnIndex(cursorColumn)
	if idx < 0 {
		return
	}
	for _, row := range chunk.Rows {
		tracker.ObserveCursor(formatCursorValue(row[idx]))
	}
}

func formatCursorValue(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(constants.TimeFormatCursor)
	case string:
		return t
	case []byte:
		return string(t)
	case nil:
		return ""
	default:
		return ""
	}
}
