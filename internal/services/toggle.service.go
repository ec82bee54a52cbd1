package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"linecheck/internal/events"
	"linecheck/internal/logger"
	"linecheck/internal/models"
	"linecheck/internal/utils"
)

var (
	// ErrTaskNotFound is returned when a toggle targets an id absent from the
	// current merged view. Callers should refresh their item list.
	ErrTaskNotFound = errors.New("task not found in current checklist")

	// ErrToggleInFlight is returned when a toggle for the same task is still
	// awaiting the gateway. The caller may re-invoke once it settles.
	ErrToggleInFlight = errors.New("a toggle for this task is already in flight")
)

// TaskSource provides merged checklist state and accepts completion
// snapshots. Implemented by repositories.ChecklistRepository.
type TaskSource interface {
	TaskInvalidator
	MergedTasks(ctx context.Context, shift models.ShiftType, date string) ([]models.TaskView, error)
	SubmitCompletion(ctx context.Context, shift models.ShiftType, submission models.CompletionSubmission) (*models.ChecklistCompletion, error)
}

type ToggleOutcome string

const (
	OutcomeCompleted   ToggleOutcome = "completed"
	OutcomeUncompleted ToggleOutcome = "uncompleted"
	OutcomeReset       ToggleOutcome = "reset"
)

type ToggleResult struct {
	Outcome    ToggleOutcome               `json:"outcome"`
	Completion *models.ChecklistCompletion `json:"completion,omitempty"`
}

// ToggleService is the single source of truth for flipping one task's
// completion state without corrupting the rest of the shift's recorded state.
type ToggleService struct {
	tasks    TaskSource
	markers  MarkerStore
	reset    *ResetController
	notifier Notifier
	boundary *utils.DayBoundary
	log      logger.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewToggleService(
	tasks TaskSource,
	markers MarkerStore,
	reset *ResetController,
	notifier Notifier,
	boundary *utils.DayBoundary,
) *ToggleService {
	return &ToggleService{
		tasks:    tasks,
		markers:  markers,
		reset:    reset,
		notifier: notifier,
		boundary: boundary,
		log:      logger.New("ToggleService"),
		inFlight: make(map[string]struct{}),
	}
}

// ToggleTask flips one task's completion state by submitting a full snapshot
// of the shift's items: every item's current state is carried over and only
// the target is inverted, so toggling one task never silently drops the
// completion state of others.
//
// The day-boundary check always completes before the payload is built. A
// stale marker aborts the toggle, runs the reset cycle instead, and reports
// OutcomeReset; the aborted toggle is not retried. Concurrent toggles for the
// same task are de-duplicated while one is in flight.
//
// Every rejected toggle emits exactly one error notification here; callers
// map the returned error to their own surface without notifying again.
func (t *ToggleService) ToggleTask(
	ctx context.Context,
	shift models.ShiftType,
	taskID string,
	notes string,
) (ToggleResult, error) {
	log := t.log.Function("ToggleTask")

	if !t.tryAcquire(shift, taskID) {
		return ToggleResult{}, ErrToggleInFlight
	}
	defer t.release(shift, taskID)

	marker, err := t.markers.Get(ctx)
	if err != nil {
		log.Warn("marker read failed before toggle, treating day as stale", "error", err)
		marker = ""
	}

	if t.boundary.IsNewDay(marker) {
		if _, err := t.reset.CheckNow(ctx); err != nil {
			t.notifyFailure(log, "Could not reset the checklist for a new day")
			return ToggleResult{}, err
		}
		// The reset cycle already emitted its own notification.
		return ToggleResult{Outcome: OutcomeReset}, nil
	}

	today := t.boundary.Today()

	merged, err := t.tasks.MergedTasks(ctx, shift, today)
	if err != nil {
		t.notifyFailure(log, "Could not load the checklist")
		return ToggleResult{}, err
	}

	target, ok := findTask(merged, taskID)
	if !ok {
		t.notifyFailure(log, "That task is no longer on the checklist")
		return ToggleResult{}, ErrTaskNotFound
	}

	items := make([]models.CompletionItem, 0, len(merged))
	for _, task := range merged {
		completed := task.IsCompleted
		if task.ID == taskID {
			completed = !completed
		}
		items = append(items, models.CompletionItem{ID: task.ID, IsCompleted: completed})
	}

	submission := models.CompletionSubmission{
		Items: items,
		Notes: notes,
		// Wire-compatibility flag for older completion formats; the payload
		// above is a full snapshot regardless.
		ForcePartialSave: true,
	}

	completion, err := t.tasks.SubmitCompletion(ctx, shift, submission)
	if err != nil {
		t.notifyFailure(log, "Could not save the checklist")
		return ToggleResult{}, err
	}

	if err := t.tasks.InvalidateDay(ctx, shift, today); err != nil {
		log.Warn(
			"failed to invalidate checklist cache after toggle",
			"shiftType", shift,
			"date", today,
			"error", err,
		)
	}

	// Outcome derives from the locally known pre-toggle state, not from the
	// shape of the server's response.
	result := ToggleResult{Completion: completion}
	if target.IsCompleted {
		result.Outcome = OutcomeUncompleted
		t.notify(log, events.NotifyTaskUncompleted, fmt.Sprintf("%s marked incomplete", target.Label))
	} else {
		result.Outcome = OutcomeCompleted
		t.notify(log, events.NotifyTaskCompleted, fmt.Sprintf("%s marked complete", target.Label))
	}

	return result, nil
}

func findTask(tasks []models.TaskView, taskID string) (models.TaskView, bool) {
	for _, task := range tasks {
		if task.ID == taskID {
			return task, true
		}
	}
	return models.TaskView{}, false
}

func (t *ToggleService) tryAcquire(shift models.ShiftType, taskID string) bool {
	key := shift.String() + ":" + taskID

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.inFlight[key]; exists {
		return false
	}
	t.inFlight[key] = struct{}{}
	return true
}

func (t *ToggleService) release(shift models.ShiftType, taskID string) {
	key := shift.String() + ":" + taskID

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inFlight, key)
}

func (t *ToggleService) notify(log logger.Logger, kind events.NotificationKind, message string) {
	if err := t.notifier.Notify(kind, message); err != nil {
		log.Warn("failed to emit notification", "kind", kind, "error", err)
	}
}

func (t *ToggleService) notifyFailure(log logger.Logger, message string) {
	t.notify(log, events.NotifyError, message)
}
