package database

import (
	"linecheck/config"
	"linecheck/internal/logger"

	"github.com/valkey-io/valkey-go"
)

type CacheClient valkey.Client

type Cache struct {
	Checklist CacheClient
	Marker    CacheClient
	Events    CacheClient
}

type DB struct {
	Cache Cache
	log   logger.Logger
}

func New(config config.Config) (DB, error) {
	log := logger.New("database").Function("New")

	log.Info("Initializing cache database")
	db := &DB{log: log}

	if err := db.initializeCacheDB(config); err != nil {
		return DB{}, log.Err("failed to initialize cache database", err)
	}

	return *db, nil
}

func (s *DB) Close() (err error) {
	if s.Cache.Checklist != nil {
		s.Cache.Checklist.Close()
	}

	if s.Cache.Marker != nil {
		s.Cache.Marker.Close()
	}

	if s.Cache.Events != nil {
		s.Cache.Events.Close()
	}

	return err
}
