package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/rehearsal-markers/internal/audio"
	"github.com/handiism/rehearsal-markers/internal/model"
)

func TestDefaultSettingsAreValid(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, 2*time.Second, s.AutosaveInterval())
	assert.Equal(t, 10*time.Second, s.LockTimeout())

	show, err := s.ShowSettings()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), show)
	assert.Equal(t, audio.FormatM3U, s.Playlist())
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.json")
	s := DefaultSettings()
	s.DataDir = "/srv/rehearsal"
	s.AutosaveDebounceMS = 750
	s.PlaylistFormat = "pls"
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
	assert.Equal(t, audio.FormatPLS, loaded.Playlist())

	layout, err := loaded.Layout()
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/srv/rehearsal"), layout.Base())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log_level": "debug"}`), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, 2000, s.AutosaveDebounceMS)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"syntax":         `{`,
		"zero debounce":  `{"autosave_debounce_ms": 0}`,
		"bad format":     `{"playlist_format": "xspf"}`,
		"bad nudge":      `{"default_marker_nudge_increment_ms": -5}`,
		"bad level":      `{"log_level": "chatty"}`,
		"no concurrency": `{"verify_concurrency": 0}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLogging(t *testing.T) {
	s := DefaultSettings()
	s.DataDir = t.TempDir()
	layout, err := s.Layout()
	require.NoError(t, err)

	cfg := s.Logging(layout, true)
	assert.Equal(t, filepath.Join(layout.Base(), "logs", "rehearsal.log"), cfg.OutputPath)
	assert.True(t, cfg.Console)
	assert.Equal(t, "info", cfg.Level)
}
