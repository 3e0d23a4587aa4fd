package port

import "github.com/EmerJK/emertxthn/config"

// SettingsSource yields the current augmentation settings. Implementations
// lazily initialize defaults on first access.
type SettingsSource interface {
	Augment() config.AugmentConfig
}

// SettingsStore persists augmentation settings. Update schedules a
// debounced write; Flush forces any pending write to disk.
type SettingsStore interface {
	SettingsSource
	Update(cfg config.AugmentConfig) error
	Flush() error
}
