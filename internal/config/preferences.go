package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// defaultNotifyDuration is how long notifications stay visible when the
// preferences file does not say otherwise.
const defaultNotifyDuration = 4 * time.Second

// Preferences holds optional user preferences loaded from
// ~/.syncmend/config.yaml. All fields have working defaults; the file
// is not required to exist.
type Preferences struct {
	// Ignore lists glob patterns excluded from the conflict scan, on
	// top of the store's built-in skip rules.
	Ignore []string `yaml:"ignore"`

	// NotifyDurationMs is how long notifications stay visible.
	NotifyDurationMs int `yaml:"notify_duration_ms"`

	// HistoryLimit caps how many resolution records `syncmend history`
	// style listings show.
	HistoryLimit int `yaml:"history_limit"`
}

// DefaultPreferences returns the preferences used when no file exists.
func DefaultPreferences() *Preferences {
	return &Preferences{
		NotifyDurationMs: int(defaultNotifyDuration.Milliseconds()),
		HistoryLimit:     20,
	}
}

// LoadPreferences reads the YAML preferences file. A missing file is
// not an error; defaults are returned.
func LoadPreferences(path string) (*Preferences, error) {
	prefs := DefaultPreferences()

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from DefaultDir
	if errors.Is(err, fs.ErrNotExist) {
		return prefs, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading preferences file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, prefs); err != nil {
		return nil, fmt.Errorf("decoding preferences file %s: %w", path, err)
	}

	if prefs.NotifyDurationMs <= 0 {
		prefs.NotifyDurationMs = int(defaultNotifyDuration.Milliseconds())
	}

	if prefs.HistoryLimit <= 0 {
		prefs.HistoryLimit = 20
	}

	return prefs, nil
}

// NotifyDuration returns the notification duration as a time.Duration.
func (p *Preferences) NotifyDuration() time.Duration {
	return time.Duration(p.NotifyDurationMs) * time.Millisecond
}
