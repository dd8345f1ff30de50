package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/handiism/rehearsal-markers/internal/audio"
	ioutils "github.com/handiism/rehearsal-markers/internal/io"
	"github.com/handiism/rehearsal-markers/internal/logging"
	"github.com/handiism/rehearsal-markers/internal/model"
	"github.com/handiism/rehearsal-markers/internal/paths"
)

// FileName is the settings file name inside the user config directory.
const FileName = "config.json"

// Settings holds all configuration options.
type Settings struct {
	// Storage
	DataDir       string `json:"data_dir"` // empty: platform default
	LockTimeoutMS int    `json:"lock_timeout_ms"` // 0: wait until the command is cancelled

	// Logging
	LogLevel      string `json:"log_level"`
	LogFile       string `json:"log_file"` // empty: <data dir>/logs/rehearsal.log
	LogMaxSizeMB  int    `json:"log_max_size_mb"`
	LogMaxBackups int    `json:"log_max_backups"`
	LogMaxAgeDays int    `json:"log_max_age_days"`
	LogCompress   bool   `json:"log_compress"`

	// Editing
	AutosaveDebounceMS            int `json:"autosave_debounce_ms"`
	DefaultSkipIncrementSeconds   int `json:"default_skip_increment_seconds"`
	DefaultMarkerNudgeIncrementMS int `json:"default_marker_nudge_increment_ms"`

	// Playlist settings
	PlaylistFormat string `json:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `json:"m3u_extended"`

	// Verification
	VerifyConcurrency int `json:"verify_concurrency"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		LockTimeoutMS: 10000,

		LogLevel:      "info",
		LogMaxSizeMB:  10,
		LogMaxBackups: 3,
		LogMaxAgeDays: 28,
		LogCompress:   true,

		AutosaveDebounceMS:            2000,
		DefaultSkipIncrementSeconds:   model.DefaultSkipIncrementSeconds,
		DefaultMarkerNudgeIncrementMS: model.DefaultMarkerNudgeIncrementMS,

		PlaylistFormat: "m3u",
		M3UExtended:    true,

		VerifyConcurrency: 4,
	}
}

// DefaultPath returns <user config dir>/RehearsalTrackMarker/config.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, paths.AppDirName, FileName), nil
}

// Load reads settings from a JSON file. A missing file yields defaults;
// fields absent from the file keep their defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks value ranges.
func (s *Settings) Validate() error {
	var errs []error
	if s.LockTimeoutMS < 0 {
		errs = append(errs, errors.New("lock_timeout_ms must not be negative"))
	}
	if s.AutosaveDebounceMS <= 0 {
		errs = append(errs, errors.New("autosave_debounce_ms must be positive"))
	}
	if s.VerifyConcurrency <= 0 {
		errs = append(errs, errors.New("verify_concurrency must be positive"))
	}
	if _, err := s.ShowSettings(); err != nil {
		errs = append(errs, err)
	}
	if _, err := audio.ParsePlaylistFormat(s.PlaylistFormat); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Layout returns the storage layout, resolving an empty DataDir to the
// platform default.
func (s *Settings) Layout() (paths.Layout, error) {
	if s.DataDir != "" {
		return paths.New(s.DataDir), nil
	}
	base, err := paths.DefaultBaseDir()
	if err != nil {
		return paths.Layout{}, err
	}
	return paths.New(base), nil
}

// AutosaveInterval returns the debounce interval.
func (s *Settings) AutosaveInterval() time.Duration {
	return time.Duration(s.AutosaveDebounceMS) * time.Millisecond
}

// LockTimeout returns how long writers wait for a busy show.
func (s *Settings) LockTimeout() time.Duration {
	return time.Duration(s.LockTimeoutMS) * time.Millisecond
}

// ShowSettings returns the settings given to newly created shows.
func (s *Settings) ShowSettings() (model.Settings, error) {
	return model.NewSettings(s.DefaultSkipIncrementSeconds, s.DefaultMarkerNudgeIncrementMS)
}

// Playlist returns the configured playlist format.
func (s *Settings) Playlist() audio.PlaylistFormat {
	f, _ := audio.ParsePlaylistFormat(s.PlaylistFormat)
	return f
}

// Logging converts the log options to a logging.Config below layout.
func (s *Settings) Logging(layout paths.Layout, console bool) logging.Config {
	file := s.LogFile
	if file == "" {
		file = filepath.Join(layout.Base(), "logs", "rehearsal.log")
	}
	return logging.Config{
		Level:      s.LogLevel,
		OutputPath: file,
		MaxSize:    s.LogMaxSizeMB,
		MaxBackups: s.LogMaxBackups,
		MaxAge:     s.LogMaxAgeDays,
		Compress:   s.LogCompress,
		Console:    console,
	}
}
