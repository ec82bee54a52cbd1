package database

import (
	"context"
	"fmt"
	"time"

	"linecheck/config"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/valkey-io/valkey-go"
)

// Valkey Database Index Organization
// Each database index provides logical separation for different cache categories
const (
	// CHECKLIST_CACHE_INDEX (DB 0) - Checklist state
	// Cached item definitions and completion snapshots keyed by shift and date
	CHECKLIST_CACHE_INDEX = iota

	// MARKER_CACHE_INDEX (DB 1) - Day boundary marker
	// Holds the single last-saved-date string driving the midnight reset
	MARKER_CACHE_INDEX

	// EVENTS_CACHE_INDEX (DB 2) - Event-driven data
	// Pub/sub for toast notifications and cache-invalidation signals
	EVENTS_CACHE_INDEX
)

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := config.CacheAddress
	port := config.CachePort
	if address == "" || port == 0 {
		return log.Errorf("failed to initialize cache database", "address or port is empty")
	}

	var cacheDB Cache

	var err error
	cacheDB.Checklist, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    CHECKLIST_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create checklist valkey client", err)
	}

	cacheDB.Marker, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    MARKER_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create marker valkey client", err)
	}

	cacheDB.Events, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    EVENTS_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create events valkey client", err)
	}

	s.Cache = cacheDB

	if config.CacheReset != -1 {
		go clearCacheDB(config.CacheReset, cacheDB)
	}

	return nil
}

func clearCacheDB(index int, cacheDB Cache) {
	log := logger.New("database").File("cache.database").Function("clearCacheDB")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var client CacheClient
	var dbName string

	switch index {
	case CHECKLIST_CACHE_INDEX:
		client = cacheDB.Checklist
		dbName = "Checklist"
	case MARKER_CACHE_INDEX:
		client = cacheDB.Marker
		dbName = "Marker"
	case EVENTS_CACHE_INDEX:
		client = cacheDB.Events
		dbName = "Events"
	default:
		log.Warn("Invalid cache database index", "index", index)
		return
	}

	if err := client.Do(ctx, client.B().Flushdb().Build()).Error(); err != nil {
		log.Er("Failed to clear cache database", err, "index", index, "dbName", dbName)
		return
	}

	log.Info("Successfully cleared cache database", "index", index, "dbName", dbName)
}
