package stats

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/oiluj0002/raw-data-loader/logger"
)

// RunTracker accumulates counters for one extract-load run. Counter updates
// are atomic so a watcher goroutine may render stats mid-run.
type RunTracker struct {
	log       logger.Logger
	tableName string
	startTime time.Time
	totalRows int64
	numChunks int64
	maxCursor atomic.Value // string
}

// Stats is a point-in-time snapshot of a run.
type Stats struct {
	TableName        string `json:"tableName"`
	StatusText       string `json:"statusText"`
	ElapsedTimeSec   int    `json:"elapsedTimeSec"`
	TotalRows        int    `json:"totalRows"`
	NumChunks        int    `json:"numChunks"`
	RowsPerSecondAvg int    `json:"rowsPerSecondAvg"`
	MaxCursor        string `json:"maxCursor"`
}

func NewRunTracker(log logger.Logger, tableName string) *RunTracker {
	return &RunTracker{log: log, tableName: tableName, startTime: time.Now()}
}

// AddChunk records one processed chunk and its row count.
func (r *RunTracker) AddChunk(numRows int) {
	atomic.AddInt64(&r.numChunks, 1)
	atomic.AddInt64(&r.totalRows, int64(numRows))
}

// ObserveCursor keeps the max cursor value seen so far. Values are compared
// as strings; the cursor time format sorts lexicographically in time order.
func (r *RunTracker) ObserveCursor(value string) {
	if value == "" {
		return
	}
	cur := r.MaxCursor()
	if value > cur {
		r.maxCursor.Store(value)
	}
}

func (r *RunTracker) MaxCursor() string {
	v, ok := r.maxCursor.Load().(string)
	if !ok {
		return ""
	}
	return v
}

func (r *RunTracker) NumChunks() int {
	return int(atomic.AddInt64(&r.numChunks, 0))
}

func (r *RunTracker) TotalRows() int {
	return int(atomic.AddInt64(&r.totalRows, 0))
}

// RenderStats gets a struct filled with stats at the point in time it is called.
func (r *RunTracker) RenderStats(statusText string) Stats {
	totalRows := atomic.AddInt64(&r.totalRows, 0)
	return Stats{
		TableName:        r.tableName,
		StatusText:       statusText,
		ElapsedTimeSec:   int(time.Since(r.startTime).Seconds()),
		TotalRows:        int(totalRows),
		NumChunks:        int(atomic.AddInt64(&r.numChunks, 0)),
		RowsPerSecondAvg: int(totalRows / getNumSecondsSinceTimeOrOne(r.startTime)),
		MaxCursor:        r.MaxCursor(),
	}
}

// LogSummary emits the end-of-run summary line.
func (r *RunTracker) LogSummary(statusText string) {
	r.log.Info(r.RenderStats(statusText).String())
}

// String will format the stats for general logging.
func (s Stats) String() string {
	return fmt.Sprintf(
		"Run stats for %v %v "+
			"elapsedTimeSec=%v "+
			"totalRows=%v "+
			"numChunks=%v "+
			"rowsPerSecondAvg=%v "+
			"maxCursor=%q",
		s.TableName, s.StatusText,
		s.ElapsedTimeSec,
		s.TotalRows,
		s.NumChunks,
		s.RowsPerSecondAvg,
		s.MaxCursor,
	)
}

func getNumSecondsSinceTimeOrOne(t time.Time) (seconds int64) {
	seconds = int64(time.Since(t).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return
}
