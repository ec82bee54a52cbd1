package services

import (
	"context"
	"sync"

	"linecheck/internal/events"
	"linecheck/internal/logger"
	"linecheck/internal/models"
	"linecheck/internal/utils"
)

// MarkerStore persists the day-boundary marker: a single YYYY-MM-DD string
// recording the date of the last checklist interaction.
type MarkerStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, date string) error
}

// TaskInvalidator drops cached checklist state for one shift type and date so
// the next read re-queries the gateway.
type TaskInvalidator interface {
	InvalidateDay(ctx context.Context, shift models.ShiftType, date string) error
}

// Notifier surfaces advisory events to the hosting UI.
type Notifier interface {
	Notify(kind events.NotificationKind, message string) error
}

type ResetState string

const (
	StateFresh     ResetState = "fresh"
	StateStale     ResetState = "stale"
	StateResetting ResetState = "resetting"
)

// ResetController ensures the client never displays or accepts completions
// against a stale day. Fresh is the only state from which toggles are
// accepted; the toggle service re-runs the boundary check on every attempt.
type ResetController struct {
	markers  MarkerStore
	tasks    TaskInvalidator
	notifier Notifier
	boundary *utils.DayBoundary
	log      logger.Logger

	mu    sync.Mutex
	state ResetState
}

func NewResetController(
	markers MarkerStore,
	tasks TaskInvalidator,
	notifier Notifier,
	boundary *utils.DayBoundary,
) *ResetController {
	return &ResetController{
		markers:  markers,
		tasks:    tasks,
		notifier: notifier,
		boundary: boundary,
		log:      logger.New("ResetController"),
		state:    StateStale,
	}
}

// CheckNow runs the day-boundary check. When the stored marker no longer
// matches today, cached checklist state is dropped for every shift type, the
// marker advances to today, and a single reset notification is emitted. A
// marker read failure counts as a new day: failing safe toward reset beats
// accepting toggles against an unknown day. Returns whether a reset ran.
func (rc *ResetController) CheckNow(ctx context.Context) (bool, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	log := rc.log.Function("CheckNow")

	marker, err := rc.markers.Get(ctx)
	if err != nil {
		log.Warn("marker read failed, treating checklist day as stale", "error", err)
		marker = ""
	}

	if !rc.boundary.IsNewDay(marker) {
		rc.state = StateFresh
		return false, nil
	}

	rc.state = StateResetting
	today := rc.boundary.Today()

	for _, shift := range models.AllShiftTypes() {
		if marker != "" && marker != today {
			if err := rc.tasks.InvalidateDay(ctx, shift, marker); err != nil {
				log.Warn(
					"failed to invalidate stale day cache",
					"shiftType", shift,
					"date", marker,
					"error", err,
				)
			}
		}
		if err := rc.tasks.InvalidateDay(ctx, shift, today); err != nil {
			log.Warn(
				"failed to invalidate current day cache",
				"shiftType", shift,
				"date", today,
				"error", err,
			)
		}
	}

	if err := rc.markers.Set(ctx, today); err != nil {
		rc.state = StateStale
		return false, log.Err("failed to persist day marker", err, "date", today)
	}

	if err := rc.notifier.Notify(events.NotifyReset, "Checklist reset for a new day"); err != nil {
		log.Warn("failed to emit reset notification", "error", err)
	}

	rc.state = StateFresh
	log.Info("Checklist day rolled over", "previous", marker, "current", today)
	return true, nil
}

func (rc *ResetController) State() ResetState {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.state
}
