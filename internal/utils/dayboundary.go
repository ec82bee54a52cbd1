package utils

import "time"

// CanonicalDateLayout is the storage and wire format for day markers.
const CanonicalDateLayout = "2006-01-02"

// DayBoundary decides when the checklist day has rolled over. The boundary is
// local midnight: a closing shift running past midnight is treated as a new
// day on its next interaction. No business-day cutover hour is applied.
type DayBoundary struct {
	clock func() time.Time
}

// NewDayBoundary creates a boundary with the given clock. A nil clock uses
// wall-clock time; tests inject fixed clocks.
func NewDayBoundary(clock func() time.Time) *DayBoundary {
	if clock == nil {
		clock = time.Now
	}
	return &DayBoundary{clock: clock}
}

// Today returns the current local date as YYYY-MM-DD. Stable within a
// calendar day, changes exactly at local midnight.
func (b *DayBoundary) Today() string {
	return b.clock().Format(CanonicalDateLayout)
}

// IsNewDay reports whether lastSaved belongs to an earlier day. An empty
// marker (never saved) always counts as a new day.
func (b *DayBoundary) IsNewDay(lastSaved string) bool {
	return lastSaved == "" || lastSaved != b.Today()
}
