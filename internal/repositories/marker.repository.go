package repositories

import (
	"context"
	"time"

	"linecheck/internal/database"
	"linecheck/internal/logger"
)

const (
	// Single key holding the YYYY-MM-DD date of the last checklist
	// interaction. Not per shift type: the whole checklist day rolls at once.
	DAY_MARKER_KEY    = "checklist:last-saved-date"
	DAY_MARKER_EXPIRY = 48 * time.Hour
)

type MarkerRepository interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, date string) error
}

type markerRepository struct {
	db  database.DB
	log logger.Logger
}

func NewMarkerRepository(db database.DB) MarkerRepository {
	return &markerRepository{
		db:  db,
		log: logger.New("markerRepository"),
	}
}

// Get returns the stored marker date, or "" when no marker has ever been
// saved. A missing marker is not an error; it means the day is stale.
func (r *markerRepository) Get(ctx context.Context) (string, error) {
	log := r.log.Function("Get")

	var date string
	found, err := database.NewCacheBuilder(r.db.Cache.Marker, DAY_MARKER_KEY).
		WithContext(ctx).
		Get(&date)
	if err != nil {
		return "", log.Err("failed to read day marker", err)
	}

	if !found {
		return "", nil
	}

	return date, nil
}

func (r *markerRepository) Set(ctx context.Context, date string) error {
	log := r.log.Function("Set")

	if err := database.NewCacheBuilder(r.db.Cache.Marker, DAY_MARKER_KEY).
		WithContext(ctx).
		WithStruct(date).
		WithTTL(DAY_MARKER_EXPIRY).
		Set(); err != nil {
		return log.Err("failed to persist day marker", err, "date", date)
	}

	return nil
}
