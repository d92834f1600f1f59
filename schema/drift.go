package schema

import (
	"sort"

	"github.com/oiluj0002/raw-data-loader/logger"
)

// Drift is the classification of columns after comparing the persisted
// reference schema against the freshly inspected current schema.
// It is computed once per run and never mutated.
type Drift struct {
	// NewColumns exist in the source but not in the reference schema.
	// They are ignored for extraction until the reference is re-baselined.
	NewColumns map[string]struct{}
	// DeletedColumns exist in the reference schema but no longer in the
	// source. They are emitted as all-null to keep the output file structure
	// stable over time.
	DeletedColumns map[string]struct{}
	// ColumnsToSelect is the sorted intersection of both column sets and is
	// the exact list queried from the source.
	ColumnsToSelect []string
}

// Reconcile compares the reference schema against the current one and
// classifies each column. Drift is policy, not an error: new and deleted
// columns are logged at warning level and the run proceeds.
func Reconcile(log logger.Logger, reference *ColumnSchema, current *ColumnSchema) Drift {
	refSet := reference.NameSet()
	curSet := current.NameSet()

	newCols := make(map[string]struct{})
	for n := range curSet {
		if _, ok := refSet[n]; !ok {
			newCols[n] = struct{}{}
		}
	}
	if len(newCols) > 0 {
		log.Warn("schema drift - new columns detected and ignored: ", sortedKeys(newCols))
	}

	deletedCols := make(map[string]struct{})
	for n := range refSet {
		if _, ok := curSet[n]; !ok {
			deletedCols[n] = struct{}{}
		}
	}
	if len(deletedCols) > 0 {
		log.Warn("schema drift - deleted columns detected, will be emitted as null: ", sortedKeys(deletedCols))
	}

	colsToSelect := make([]string, 0, len(refSet))
	for n := range refSet {
		if _, ok := curSet[n]; ok {
			colsToSelect = append(colsToSelect, n)
		}
	}
	sort.Strings(colsToSelect)

	return Drift{
		NewColumns:      newCols,
		DeletedColumns:  deletedCols,
		ColumnsToSelect: colsToSelect,
	}
}

// NoDrift returns the classification for a bootstrap run where the current
// schema has just been persisted as the reference and there is nothing to
// reconcile against.
func NoDrift(current *ColumnSchema) Drift {
	return Drift{
		NewColumns:      map[string]struct{}{},
		DeletedColumns:  map[string]struct{}{},
		ColumnsToSelect: current.SortedNames(),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
