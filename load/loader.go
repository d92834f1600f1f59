package load

import (
	"bytes"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/pkg/errors"

	"github.com/oiluj0002/raw-data-loader/aws/s3"
	"github.com/oiluj0002/raw-data-loader/constants"
	"github.com/oiluj0002/raw-data-loader/logger"
	"github.com/oiluj0002/raw-data-loader/schema"
	"github.com/oiluj0002/raw-data-loader/stream"
)

// LoaderConfig wires a loader to its output bucket and write schema.
type LoaderConfig struct {
	Log         logger.Logger
	Client      s3.BufferPutter
	WriteSchema *schema.WriteSchema
	SourceKind  string
	TableName   string
	// RunTimestamp is fixed for the whole run. It drives both the partition
	// path and the file name stamp so all files of one run land together.
	RunTimestamp time.Time
	IncludeHour  bool
}

// PartitionedLoader writes one Parquet object per chunk into the
// date-partitioned ingestion layout of the table.
type PartitionedLoader struct {
	cfg         LoaderConfig
	mem         memory.Allocator
	arrowSchema *arrow.Schema
	partition   string
	runStamp    string
	writerProps *parquet.WriterProperties
}

func NewPartitionedLoader(cfg LoaderConfig) *PartitionedLoader {
	return &PartitionedLoader{
		cfg:         cfg,
		mem:         memory.NewGoAllocator(),
		arrowSchema: cfg.WriteSchema.ToArrow(),
		partition:   PartitionPath(cfg.RunTimestamp, cfg.IncludeHour),
		runStamp:    cfg.RunTimestamp.Format(constants.TimeFormatRunStamp),
		writerProps: parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy)),
	}
}

// PartitionPath builds the Hive-style partition directory for a run timestamp.
func PartitionPath(t time.Time, includeHour bool) string {
	p := fmt.Sprintf("year=%04d/month=%02d/day=%02d", t.Year(), int(t.Month()), t.Day())
	if includeHour {
		p += fmt.Sprintf("/hour=%02d", t.Hour())
	}
	return p
}

// ObjectKey returns the bucket key for the given chunk index.
func (l *PartitionedLoader) ObjectKey(chunkIndex int) string {
	return fmt.Sprintf(constants.IngestionKeyPattern,
		l.cfg.SourceKind, l.cfg.TableName, l.partition, l.runStamp, chunkIndex)
}

// Load encodes the chunk as a Snappy-compressed Parquet file and puts it to
// the bucket. It returns the object key written.
func (l *PartitionedLoader) Load(chunk stream.Chunk) (string, error) {
	rec, err := l.buildRecord(chunk)
	if err != nil {
		return "", errors.Wrapf(err, "error building record for chunk %d", chunk.Index)
	}
	defer rec.Release()
	tbl := array.NewTableFromRecords(l.arrowSchema, []arrow.Record{rec})
	defer tbl.Release()
	var buf bytes.Buffer
	err = pqarrow.WriteTable(tbl, &buf, int64(chunk.NumRows()), l.writerProps, pqarrow.DefaultWriterProps())
	if err != nil {
		return "", errors.Wrapf(err, "error encoding parquet for chunk %d", chunk.Index)
	}
	key := l.ObjectKey(chunk.Index)
	err = l.cfg.Client.BufferPut(key, bytes.NewReader(buf.Bytes()), constants.ParquetContentType)
	if err != nil {
		return "", errors.Wrapf(err, "error putting chunk %d to key %v", chunk.Index, key)
	}
	l.cfg.Log.Info("chunk ", chunk.Index, " written to ", key, " (", chunk.NumRows(), " rows)")
	return key, nil
}

// buildRecord projects the chunk onto the write schema's column order.
// Chunk columns outside the write schema are dropped. Write schema columns
// missing from the chunk come out all-null.
func (l *PartitionedLoader) buildRecord(chunk stream.Chunk) (arrow.Record, error) {
	b := array.NewRecordBuilder(l.mem, l.arrowSchema)
	defer b.Release()
	for i, f := range l.cfg.WriteSchema.Fields {
		colIdx := chunk.ColumnIndex(f.Name)
		fb := b.Field(i)
		for _, row := range chunk.Rows {
			var v interface{}
			if colIdx >= 0 {
				v = row[colIdx]
			}
			if v == nil {
				fb.AppendNull()
				continue
			}
			if err := appendValue(fb, f.Type, v); err != nil {
				return nil, errors.Wrapf(err, "column %q", f.Name)
			}
		}
	}
	return b.NewRecord(), nil
}

func appendValue(fb array.Builder, ct schema.CanonicalType, v interface{}) error {
	switch ct {
	case schema.TypeInt64:
		b, ok := fb.(*array.Int64Builder)
		if !ok {
			return fmt.Errorf("builder mismatch for %v", ct)
		}
		i, ok := v.(int64)
		if !ok {
			return fmt.Errorf("expected int64, got %T", v)
		}
		b.Append(i)
	case schema.TypeDecimal:
		b, ok := fb.(*array.Decimal128Builder)
		if !ok {
			return fmt.Errorf("builder mismatch for %v", ct)
		}
		d, ok := v.(decimal128.Num)
		if !ok {
			return fmt.Errorf("expected decimal128.Num, got %T", v)
		}
		b.Append(d)
	case schema.TypeFloat64:
		b, ok := fb.(*array.Float64Builder)
		if !ok {
			return fmt.Errorf("builder mismatch for %v", ct)
		}
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("expected float64, got %T", v)
		}
		b.Append(f)
	case schema.TypeBool:
		b, ok := fb.(*array.BooleanBuilder)
		if !ok {
			return fmt.Errorf("builder mismatch for %v", ct)
		}
		t, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
		b.Append(t)
	case schema.TypeTimestampMs:
		b, ok := fb.(*array.TimestampBuilder)
		if !ok {
			return fmt.Errorf("builder mismatch for %v", ct)
		}
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("expected time.Time, got %T", v)
		}
		b.Append(arrow.Timestamp(t.UnixMilli()))
	case schema.TypeDate32:
		b, ok := fb.(*array.Date32Builder)
		if !ok {
			return fmt.Errorf("builder mismatch for %v", ct)
		}
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("expected time.Time, got %T", v)
		}
		b.Append(arrow.Date32FromTime(t))
	default:
		b, ok := fb.(*array.StringBuilder)
		if !ok {
			return fmt.Errorf("builder mismatch for %v", ct)
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		b.Append(s)
	}
	return nil
}
