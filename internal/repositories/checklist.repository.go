package repositories

import (
	"context"
	"time"

	"linecheck/internal/database"
	"linecheck/internal/events"
	"linecheck/internal/logger"
	. "linecheck/internal/models"
)

const (
	CHECKLIST_CACHE_EXPIRY   = 15 * time.Minute
	ITEMS_CACHE_PREFIX       = "checklist:items:"
	COMPLETIONS_CACHE_PREFIX = "checklist:completions:"
)

// ChecklistGateway is the slice of the upstream client this repository needs.
// Implemented by services.GatewayService.
type ChecklistGateway interface {
	FetchItems(ctx context.Context, shift ShiftType) ([]ChecklistItem, error)
	FetchCompletions(ctx context.Context, shift ShiftType, startDate string) ([]ChecklistCompletion, error)
	SubmitCompletion(ctx context.Context, shift ShiftType, submission CompletionSubmission) (*ChecklistCompletion, error)
}

type ChecklistRepository interface {
	GetItems(ctx context.Context, shift ShiftType) ([]ChecklistItem, error)
	GetCompletions(ctx context.Context, shift ShiftType, date string) ([]ChecklistCompletion, error)
	MergedTasks(ctx context.Context, shift ShiftType, date string) ([]TaskView, error)
	SubmitCompletion(ctx context.Context, shift ShiftType, submission CompletionSubmission) (*ChecklistCompletion, error)
	InvalidateDay(ctx context.Context, shift ShiftType, date string) error
}

type checklistRepository struct {
	db       database.DB
	gateway  ChecklistGateway
	eventBus *events.EventBus
	log      logger.Logger
}

func NewChecklistRepository(
	db database.DB,
	gateway ChecklistGateway,
	eventBus *events.EventBus,
) ChecklistRepository {
	return &checklistRepository{
		db:       db,
		gateway:  gateway,
		eventBus: eventBus,
		log:      logger.New("checklistRepository"),
	}
}

func (r *checklistRepository) GetItems(
	ctx context.Context,
	shift ShiftType,
) ([]ChecklistItem, error) {
	log := r.log.Function("GetItems")
	cacheKey := ITEMS_CACHE_PREFIX + shift.String()

	var items []ChecklistItem
	found, err := database.NewCacheBuilder(r.db.Cache.Checklist, cacheKey).
		WithContext(ctx).
		Get(&items)
	if err != nil {
		log.Warn("failed to read items from cache", "shiftType", shift, "error", err)
	}
	if found {
		return items, nil
	}

	items, err = r.gateway.FetchItems(ctx, shift)
	if err != nil {
		return nil, err
	}

	if err := database.NewCacheBuilder(r.db.Cache.Checklist, cacheKey).
		WithContext(ctx).
		WithStruct(items).
		WithTTL(CHECKLIST_CACHE_EXPIRY).
		Set(); err != nil {
		log.Warn("failed to cache items", "shiftType", shift, "error", err)
	}

	return items, nil
}

func (r *checklistRepository) GetCompletions(
	ctx context.Context,
	shift ShiftType,
	date string,
) ([]ChecklistCompletion, error) {
	log := r.log.Function("GetCompletions")
	cacheKey := completionsCacheKey(shift, date)

	var completions []ChecklistCompletion
	found, err := database.NewCacheBuilder(r.db.Cache.Checklist, cacheKey).
		WithContext(ctx).
		Get(&completions)
	if err != nil {
		log.Warn(
			"failed to read completions from cache",
			"shiftType", shift,
			"date", date,
			"error", err,
		)
	}
	if found {
		return completions, nil
	}

	completions, err = r.gateway.FetchCompletions(ctx, shift, date)
	if err != nil {
		return nil, err
	}

	if err := database.NewCacheBuilder(r.db.Cache.Checklist, cacheKey).
		WithContext(ctx).
		WithStruct(completions).
		WithTTL(CHECKLIST_CACHE_EXPIRY).
		Set(); err != nil {
		log.Warn("failed to cache completions", "shiftType", shift, "date", date, "error", err)
	}

	return completions, nil
}

// MergedTasks returns the item definitions for the shift overlaid with the
// latest completion state for the given date.
func (r *checklistRepository) MergedTasks(
	ctx context.Context,
	shift ShiftType,
	date string,
) ([]TaskView, error) {
	items, err := r.GetItems(ctx, shift)
	if err != nil {
		return nil, err
	}

	completions, err := r.GetCompletions(ctx, shift, date)
	if err != nil {
		return nil, err
	}

	return MergeTasks(items, completions), nil
}

func (r *checklistRepository) SubmitCompletion(
	ctx context.Context,
	shift ShiftType,
	submission CompletionSubmission,
) (*ChecklistCompletion, error) {
	return r.gateway.SubmitCompletion(ctx, shift, submission)
}

// InvalidateDay drops the cached items and completions for one shift and date
// and broadcasts the invalidation so other subscribers re-fetch.
func (r *checklistRepository) InvalidateDay(
	ctx context.Context,
	shift ShiftType,
	date string,
) error {
	log := r.log.Function("InvalidateDay")

	var firstErr error
	keys := []string{
		ITEMS_CACHE_PREFIX + shift.String(),
		completionsCacheKey(shift, date),
	}

	for _, key := range keys {
		if err := database.NewCacheBuilder(r.db.Cache.Checklist, key).
			WithContext(ctx).
			Delete(); err != nil {
			log.Warn("failed to delete cache key", "key", key, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if r.eventBus != nil {
		if err := r.eventBus.PublishCacheInvalidation(shift, date); err != nil {
			log.Warn(
				"failed to publish cache invalidation",
				"shiftType", shift,
				"date", date,
				"error", err,
			)
		}
	}

	return firstErr
}

func completionsCacheKey(shift ShiftType, date string) string {
	return COMPLETIONS_CACHE_PREFIX + shift.String() + ":" + date
}
