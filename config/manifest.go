package config

import (
	"fmt"

	"github.com/ghodss/yaml"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/oiluj0002/raw-data-loader/aws/s3"
	"github.com/oiluj0002/raw-data-loader/logger"
)

// Job is one table entry in the manifest.
type Job struct {
	Schema        string `json:"schema" mapstructure:"schema"`
	Table         string `json:"table" mapstructure:"table"`
	CursorColumn  string `json:"cursor_column" mapstructure:"cursor_column"`
	ChunkSize     int    `json:"chunk_size" mapstructure:"chunk_size"`
	HourPartition bool   `json:"hour_partition" mapstructure:"hour_partition"`
}

// Manifest is the list of tables an external scheduler fans out over.
// Each worker picks its job by numeric task index.
type Manifest struct {
	Jobs []Job
}

// ParseManifest decodes a JSON or YAML manifest document.
func ParseManifest(data []byte) (*Manifest, error) {
	var raw []map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "error parsing manifest")
	}
	jobs := make([]Job, 0, len(raw))
	for i, entry := range raw {
		var j Job
		if err := mapstructure.Decode(entry, &j); err != nil {
			return nil, errors.Wrapf(err, "error decoding manifest entry %d", i)
		}
		if j.Table == "" {
			return nil, fmt.Errorf("manifest entry %d is missing a table name", i)
		}
		jobs = append(jobs, j)
	}
	return &Manifest{Jobs: jobs}, nil
}

// FetchManifest gets and parses the manifest object from the bucket.
func FetchManifest(log logger.Logger, getter s3.Getter, key string) (*Manifest, error) {
	log.Debug("fetching manifest from key ", key)
	data, err := getter.Get(key)
	if err != nil {
		return nil, errors.Wrapf(err, "error fetching manifest key %v", key)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	log.Info("manifest loaded with ", len(m.Jobs), " jobs")
	return m, nil
}

// Job returns the job at the given task index. An out-of-range index is a
// configuration error; the run fails fast rather than guessing a table.
func (m *Manifest) Job(index int) (Job, error) {
	if index < 0 || index >= len(m.Jobs) {
		return Job{}, fmt.Errorf("task index %d is out of range for manifest with %d jobs", index, len(m.Jobs))
	}
	return m.Jobs[index], nil
}
