// Package store persists user-editable settings in a bolt database with
// debounced writes.
package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/EmerJK/emertxthn/config"
	"github.com/EmerJK/emertxthn/internal/port"
)

var (
	bucketSettings = []byte("settings")
	keyAugment     = []byte("augment")
)

// SettingsStore is a bbolt-backed settings store. Updates are collapsed:
// a write hits disk only after the debounce interval passes without
// another update, or on Flush/Close.
type SettingsStore struct {
	db       *bbolt.DB
	debounce time.Duration
	defaults config.AugmentConfig

	mu      sync.Mutex
	current config.AugmentConfig
	loaded  bool
	pending bool
	timer   *time.Timer
}

var _ port.SettingsStore = (*SettingsStore)(nil)

// NewSettingsStore opens (or creates) the settings database at path.
// Sessions without a persisted record see the built-in defaults; use
// SetDefaults to seed from a config file instead.
func NewSettingsStore(path string, debounce time.Duration) (*SettingsStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSettings)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create settings bucket: %w", err)
	}

	return &SettingsStore{
		db:       db,
		debounce: debounce,
		defaults: config.DefaultConfig().Augment,
	}, nil
}

// SetDefaults replaces the fallback used when no record is persisted yet.
// Must be called before the first Augment access.
func (s *SettingsStore) SetDefaults(cfg config.AugmentConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = cfg.Normalized()
}

// Augment returns the current settings, loading the persisted record on
// first access and falling back to defaults when none exists.
func (s *SettingsStore) Augment() config.AugmentConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		s.current = s.load()
		s.loaded = true
	}
	return s.current
}

func (s *SettingsStore) load() config.AugmentConfig {
	cfg := s.defaults

	s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSettings).Get(keyAugment)
		if data == nil {
			return nil
		}
		var stored config.AugmentConfig
		if err := json.Unmarshal(data, &stored); err != nil {
			return nil
		}
		cfg = stored.Normalized()
		return nil
	})

	return cfg
}

// Update replaces the in-memory settings and schedules a debounced write.
func (s *SettingsStore) Update(cfg config.AugmentConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = cfg.Normalized()
	s.loaded = true
	s.pending = true

	if s.debounce <= 0 {
		return s.writeLocked()
	}

	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, func() {
			s.Flush()
		})
	} else {
		s.timer.Reset(s.debounce)
	}
	return nil
}

// Flush writes any pending settings to disk immediately.
func (s *SettingsStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pending {
		return nil
	}
	return s.writeLocked()
}

func (s *SettingsStore) writeLocked() error {
	data, err := json.Marshal(s.current)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSettings).Put(keyAugment, data)
	})
	if err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	s.pending = false
	return nil
}

// Close flushes pending settings and closes the database.
func (s *SettingsStore) Close() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	var err error
	if s.pending {
		err = s.writeLocked()
	}
	s.mu.Unlock()

	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	return err
}
