package utils

import (
	"testing"
	"time"
)

func fixedClock(value string) func() time.Time {
	return func() time.Time {
		t, err := time.ParseInLocation("2006-01-02 15:04:05", value, time.Local)
		if err != nil {
			panic(err)
		}
		return t
	}
}

func TestDayBoundary_Today(t *testing.T) {
	boundary := NewDayBoundary(fixedClock("2024-01-02 09:30:00"))

	if got := boundary.Today(); got != "2024-01-02" {
		t.Errorf("Expected today to be 2024-01-02, got %s", got)
	}

	// Stable across calls within the same day
	if boundary.Today() != boundary.Today() {
		t.Error("Expected Today to be stable within a calendar day")
	}
}

func TestDayBoundary_TodayChangesAtMidnight(t *testing.T) {
	beforeMidnight := NewDayBoundary(fixedClock("2024-01-01 23:59:59"))
	afterMidnight := NewDayBoundary(fixedClock("2024-01-02 00:00:00"))

	if beforeMidnight.Today() != "2024-01-01" {
		t.Errorf("Expected 2024-01-01 before midnight, got %s", beforeMidnight.Today())
	}
	if afterMidnight.Today() != "2024-01-02" {
		t.Errorf("Expected 2024-01-02 at midnight, got %s", afterMidnight.Today())
	}
}

func TestDayBoundary_IsNewDay(t *testing.T) {
	boundary := NewDayBoundary(fixedClock("2024-01-02 06:00:00"))

	testCases := []struct {
		name      string
		lastSaved string
		expected  bool
	}{
		{"previous day is stale", "2024-01-01", true},
		{"same day is fresh", "2024-01-02", false},
		{"never saved is stale", "", true},
		{"future marker is stale", "2024-01-03", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := boundary.IsNewDay(tc.lastSaved); got != tc.expected {
				t.Errorf("IsNewDay(%q) = %v, expected %v", tc.lastSaved, got, tc.expected)
			}
		})
	}
}
