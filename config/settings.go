package config

import (
	"encoding/base64"
	"time"

	"github.com/pkg/errors"

	"github.com/oiluj0002/raw-data-loader/constants"
	"github.com/oiluj0002/raw-data-loader/helper"
	"github.com/oiluj0002/raw-data-loader/rdbms"
)

// Settings holds the full runtime configuration of one extract-load run.
// All values come from RDL_* environment variables. When TaskIndex >= 0 the
// per-table fields (SchemaName, TableName, CursorColumn, ChunkSize,
// HourPartition) are filled in from the manifest instead.
type Settings struct {
	SourceDsn    string `errorTxt:"source DSN" mandatory:"yes"`
	SourceKind   string `errorTxt:"source kind" mandatory:"yes"`
	BucketName   string `errorTxt:"s3 bucket" mandatory:"yes"`
	BucketRegion string `errorTxt:"s3 region" mandatory:"yes"`
	BucketPrefix string `errorTxt:"s3 prefix"`

	SchemaName    string `errorTxt:"source schema" mandatory:"yes"`
	TableName     string `errorTxt:"source table" mandatory:"yes"`
	CursorColumn  string `errorTxt:"cursor column" mandatory:"yes"`
	ChunkSize     int    `errorTxt:"chunk size"`
	HourPartition bool

	ManifestKey string `errorTxt:"manifest key"`
	TaskIndex   int

	LogLevel           string `errorTxt:"log level" mandatory:"yes"`
	ExecutionTimestamp time.Time
	EncryptionKey      []byte
}

// FromEnv builds Settings from the environment. Per-table fields may still
// be empty when manifest mode is in use; call ApplyJob then Validate.
func FromEnv() (*Settings, error) {
	s := &Settings{}
	var err error
	s.SourceDsn, _ = helper.GetEnvVar(helper.GetEnvName("source-dsn"), false)
	if s.SourceDsn != "" {
		s.SourceKind, err = rdbms.ConnectionTypeFromDSN(s.SourceDsn)
		if err != nil {
			return nil, err
		}
	}
	s.BucketName, _ = helper.GetEnvVar(helper.GetEnvName("bucket-name"), false)
	s.BucketRegion, _ = helper.GetEnvVar(helper.GetEnvName("bucket-region"), false)
	s.BucketPrefix, _ = helper.GetEnvVar(helper.GetEnvName("bucket-prefix"), false)
	s.SchemaName, _ = helper.GetEnvVar(helper.GetEnvName("schema-name"), false)
	s.TableName, _ = helper.GetEnvVar(helper.GetEnvName("table-name"), false)
	s.CursorColumn, _ = helper.GetEnvVar(helper.GetEnvName("cursor-column"), false)
	s.ChunkSize, err = helper.ReadIntFromEnvWithDefault(helper.GetEnvName("chunk-size"), constants.ChunkSizeDefault)
	if err != nil {
		return nil, err
	}
	s.HourPartition = helper.ReadValueFromEnvWithDefault(helper.GetEnvName("hour-partition"), "") != ""
	s.ManifestKey = helper.ReadValueFromEnvWithDefault(helper.GetEnvName("manifest-key"), constants.ManifestKeyDefault)
	s.TaskIndex, err = helper.ReadIntFromEnvWithDefault(helper.GetEnvName("task-index"), -1)
	if err != nil {
		return nil, err
	}
	s.LogLevel = helper.ReadValueFromEnvWithDefault(constants.EnvVarLogLevel, "info")
	s.ExecutionTimestamp, err = readExecutionTimestamp()
	if err != nil {
		return nil, err
	}
	s.EncryptionKey, err = readEncryptionKey()
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyJob overlays one manifest job onto the per-table fields.
func (s *Settings) ApplyJob(j Job) {
	s.SchemaName = j.Schema
	s.TableName = j.Table
	s.CursorColumn = j.CursorColumn
	if j.ChunkSize > 0 {
		s.ChunkSize = j.ChunkSize
	}
	s.HourPartition = j.HourPartition
}

// Validate confirms all mandatory fields are populated.
func (s *Settings) Validate() error {
	return helper.ValidateStructIsPopulated(s)
}

// ManifestMode reports whether per-table config comes from the manifest.
func (s *Settings) ManifestMode() bool {
	return s.TaskIndex >= 0
}

// readExecutionTimestamp reads the optional fixed run timestamp, falling
// back to the current time. A fixed timestamp lets an external scheduler
// pin the partition a run writes into.
func readExecutionTimestamp() (time.Time, error) {
	v := helper.ReadValueFromEnvWithDefault(helper.GetEnvName("execution-timestamp"), "")
	if v == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(constants.TimeFormatCursor, v)
	if err != nil {
		// Accept the format without a fractional part too.
		t, err = time.Parse("2006-01-02 15:04:05", v)
		if err != nil {
			return time.Time{}, errors.Wrapf(err, "error parsing execution timestamp %q", v)
		}
	}
	return t.UTC(), nil
}

func readEncryptionKey() ([]byte, error) {
	v := helper.ReadValueFromEnvWithDefault(helper.GetEnvName("encryption-key"), "")
	if v == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding encryption key")
	}
	return key, nil
}
