package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/handiism/rehearsal-markers/internal/apperr"
)

// Marker is a named timestamp within a track.
//
// Markers are values: once NewMarker accepts a name and timestamp they are
// never changed in place. Track replaces a marker when it is renamed or moved.
type Marker struct {
	name        string
	timestampMS int64
}

// NewMarker creates a Marker.
//
// The name must contain at least one non-whitespace character and the
// timestamp must not be negative. Failures are apperr.KindInvalidData.
func NewMarker(name string, timestampMS int64) (Marker, error) {
	if err := validateMarkerName(name); err != nil {
		return Marker{}, apperr.Invalid("new marker", err)
	}
	if timestampMS < 0 {
		return Marker{}, apperr.Invalid("new marker", fmt.Errorf("timestamp %d is negative", timestampMS))
	}
	return Marker{name: name, timestampMS: timestampMS}, nil
}

// Name returns the marker name.
func (m Marker) Name() string {
	return m.name
}

// TimestampMS returns the marker position in milliseconds from track start.
func (m Marker) TimestampMS() int64 {
	return m.timestampMS
}

// String renders the marker as "name (m:ss.ss)".
func (m Marker) String() string {
	minutes := m.timestampMS / 60000
	seconds := float64(m.timestampMS%60000) / 1000
	return fmt.Sprintf("%s (%d:%05.2f)", m.name, minutes, seconds)
}

func validateMarkerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("marker name cannot be empty")
	}
	return nil
}
