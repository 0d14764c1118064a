// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cachestore is the persistent cache layer: typed read/write
// helpers over an embedded BadgerDB, with per-entry expiry.
//
// # Description
//
// Each entry is a JSON envelope {saved_at, ttl, payload}. Reads that hit
// a missing, expired, or unparseable entry report a miss; storage
// failures are swallowed and logged, never surfaced to the user. The
// independently-evolving caches built on this layer (repository
// snapshots, trending repos, history, learning paths, challenge sets,
// gamification progress, UI prefs) each pick their own TTL.
//
// # Thread Safety
//
// Safe for concurrent use; BadgerDB transactions provide isolation.
package cachestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Per-cache validity windows.
const (
	repoSnapshotTTL = 1 * time.Hour
	trendingTTL     = 6 * time.Hour
	challengeSetTTL = 24 * time.Hour

	// historyLimit caps the exploration history list.
	historyLimit = 10
)

// Store wraps a BadgerDB instance with envelope encoding.
type Store struct {
	db  *badger.DB
	log *slog.Logger
	now func() time.Time
}

// Open opens a persistent store at dir, creating it if needed.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("data directory is required")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", dir, err)
	}
	opts := badger.DefaultOptions(dir).
		WithSyncWrites(true).
		WithNumVersionsToKeep(1).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return newStore(db, logger), nil
}

// OpenInMemory opens a store with no disk persistence, for tests.
func OpenInMemory(logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger database: %w", err)
	}
	return newStore(db, logger), nil
}

func newStore(db *badger.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, log: logger, now: time.Now}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// envelope wraps every stored payload with expiry metadata.
type envelope struct {
	SavedAt    time.Time       `json:"saved_at"`
	TTLSeconds int64           `json:"ttl_seconds"` // 0 means no expiry
	Payload    json.RawMessage `json:"payload"`
}

// putJSON stores v under key with the given ttl. Failures are logged
// and swallowed: the durable store is best-effort from the caller's
// point of view.
func (s *Store) putJSON(key string, v any, ttl time.Duration) {
	payload, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	data, err := json.Marshal(envelope{
		SavedAt:    s.now(),
		TTLSeconds: int64(ttl / time.Second),
		Payload:    payload,
	})
	if err != nil {
		s.log.Warn("cache envelope encode failed", "key", key, "error", err)
		return
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		s.log.Warn("cache write failed", "key", key, "error", err)
	}
}

// getJSON loads key into out. Returns false on miss, expiry, or corrupt
// data (which is treated as a miss, never an error).
func (s *Store) getJSON(key string, out any) bool {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false
	}
	if err != nil {
		s.log.Warn("cache read failed", "key", key, "error", err)
		return false
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.log.Warn("cache entry corrupt, treating as miss", "key", key)
		return false
	}
	if env.TTLSeconds > 0 {
		age := s.now().Sub(env.SavedAt)
		if age > time.Duration(env.TTLSeconds)*time.Second {
			return false
		}
	}
	if err := json.Unmarshal(env.Payload, out); err != nil {
		s.log.Warn("cache payload corrupt, treating as miss", "key", key)
		return false
	}
	return true
}
