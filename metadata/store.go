package metadata

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/oiluj0002/raw-data-loader/aws/s3"
	"github.com/oiluj0002/raw-data-loader/constants"
	"github.com/oiluj0002/raw-data-loader/logger"
	"github.com/oiluj0002/raw-data-loader/schema"
)

// Store persists the durable run state for one tracked table: the reference
// schema (JSON object) and the last-seen cursor value (plain text), both held
// as objects in the target bucket.
//
// Writes are unconditional overwrites with no compare-and-swap; the caller
// guarantees at most one concurrent run per table. Absent state objects are
// normal first-run outcomes, not errors.
type Store struct {
	log        logger.Logger
	client     s3.BasicClient
	sourceKind string
	tableName  string
	cursorKey  string
	schemaKey  string
}

func NewStore(log logger.Logger, client s3.BasicClient, sourceKind string, tableName string) *Store {
	return &Store{
		log:        log,
		client:     client,
		sourceKind: sourceKind,
		tableName:  tableName,
		cursorKey:  fmt.Sprintf(constants.CursorKeyPattern, sourceKind, tableName, tableName),
		schemaKey:  fmt.Sprintf(constants.SchemaKeyPattern, sourceKind, tableName, tableName),
	}
}

// GetLastCursor fetches the last committed cursor value. A missing cursor
// object signals an initial full load and yields the sentinel default.
func (s *Store) GetLastCursor() (string, error) {
	data, err := s.client.Get(s.cursorKey)
	if err != nil {
		if errors.Is(err, s3.ErrKeyNotFound) {
			s.log.Warn("cursor object not found for table ", s.tableName, " - assuming initial load")
			return constants.CursorDefaultValue, nil
		}
		return "", errors.Wrapf(err, "error fetching cursor for table %q", s.tableName)
	}
	cursor := strings.TrimSpace(string(data))
	s.log.Info("found last cursor value: ", cursor)
	return cursor, nil
}

// GetReferenceSchema loads the persisted reference schema. The second return
// value reports presence: a missing or unreadable object yields (nil, false)
// with a warning so the caller can bootstrap a fresh reference.
func (s *Store) GetReferenceSchema() (*schema.ColumnSchema, bool, error) {
	data, err := s.client.Get(s.schemaKey)
	if err != nil {
		if errors.Is(err, s3.ErrKeyNotFound) {
			s.log.Warn("no reference schema found for table ", s.tableName, " - a new one should be created")
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "error fetching reference schema for table %q", s.tableName)
	}
	ref, err := schema.FromJSON(data)
	if err != nil {
		s.log.Warn("reference schema for table ", s.tableName, " is unreadable - a new one should be created: ", err)
		return nil, false, nil
	}
	s.log.Info("reference schema loaded with ", ref.Len(), " columns")
	return ref, true, nil
}

// SaveReferenceSchema overwrites the reference schema object unconditionally.
func (s *Store) SaveReferenceSchema(ref *schema.ColumnSchema) error {
	data, err := ref.ToJSON()
	if err != nil {
		return errors.Wrap(err, "error serializing reference schema")
	}
	if err = s.client.Put(s.schemaKey, data, "application/json"); err != nil {
		return errors.Wrapf(err, "error saving reference schema for table %q", s.tableName)
	}
	s.log.Info("reference schema saved to ", s.schemaKey)
	return nil
}

// UpdateCursor overwrites the cursor object unconditionally.
// An empty value is a warned no-op so a failed upstream computation can never
// erase previously committed progress.
func (s *Store) UpdateCursor(value string) error {
	if value == "" {
		s.log.Warn("no new cursor value provided to update - skipping")
		return nil
	}
	if err := s.client.Put(s.cursorKey, []byte(value), "text/plain"); err != nil {
		return errors.Wrapf(err, "error updating cursor for table %q", s.tableName)
	}
	s.log.Info("cursor updated with new value: ", value)
	return nil
}
