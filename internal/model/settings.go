package model

import (
	"fmt"

	"github.com/handiism/rehearsal-markers/internal/apperr"
)

const (
	// DefaultSkipIncrementSeconds is the skip distance used by new shows.
	DefaultSkipIncrementSeconds = 5

	// DefaultMarkerNudgeIncrementMS is the marker nudge step used by new shows.
	DefaultMarkerNudgeIncrementMS = 100
)

// Settings holds the per-show playback preferences.
type Settings struct {
	skipIncrementSeconds   int
	markerNudgeIncrementMS int
}

// NewSettings creates Settings. Both increments must be strictly positive.
func NewSettings(skipIncrementSeconds, markerNudgeIncrementMS int) (Settings, error) {
	if skipIncrementSeconds <= 0 {
		return Settings{}, apperr.Invalid("new settings",
			fmt.Errorf("skip increment must be positive, got %d", skipIncrementSeconds))
	}
	if markerNudgeIncrementMS <= 0 {
		return Settings{}, apperr.Invalid("new settings",
			fmt.Errorf("marker nudge increment must be positive, got %d", markerNudgeIncrementMS))
	}
	return Settings{
		skipIncrementSeconds:   skipIncrementSeconds,
		markerNudgeIncrementMS: markerNudgeIncrementMS,
	}, nil
}

// DefaultSettings returns 5 second skips and 100 ms nudges.
func DefaultSettings() Settings {
	return Settings{
		skipIncrementSeconds:   DefaultSkipIncrementSeconds,
		markerNudgeIncrementMS: DefaultMarkerNudgeIncrementMS,
	}
}

// SkipIncrementSeconds returns how far skip forward/backward jumps.
func (s Settings) SkipIncrementSeconds() int {
	return s.skipIncrementSeconds
}

// MarkerNudgeIncrementMS returns how far a marker nudge moves a marker.
func (s Settings) MarkerNudgeIncrementMS() int {
	return s.markerNudgeIncrementMS
}

// IsZero reports whether s is the zero value, which no constructor returns.
func (s Settings) IsZero() bool {
	return s == Settings{}
}
