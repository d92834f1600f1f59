package constants

import (
	"testing"
	"time"
)

func TestCursorFormatMatchesDefault(t *testing.T) {
	// The sentinel must parse with the cursor time format so that default and
	// real cursor values can be compared as strings.
	if _, err := time.Parse(TimeFormatCursor, CursorDefaultValue); err != nil {
		t.Fatalf("cursor default %q does not match format %q: %v", CursorDefaultValue, TimeFormatCursor, err)
	}
}

func TestCursorFormatOrdering(t *testing.T) {
	a := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	b := a.Add(time.Millisecond)
	if !(a.Format(TimeFormatCursor) < b.Format(TimeFormatCursor)) {
		t.Fatal("formatted cursor values must order lexicographically")
	}
}
