package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/handiism/rehearsal-markers/internal/apperr"
)

// ErrDuplicateMarker is wrapped when a marker name is already used in a track.
var ErrDuplicateMarker = errors.New("marker name already exists")

// Track is an audio asset reference plus its ordered markers.
//
// A Track owns its markers and the path to its asset copy, not the asset
// bytes themselves; the asset store manages those. Markers are kept sorted
// ascending by timestamp after every mutation and names are unique within a
// track (exact, case-sensitive match).
//
// Example:
//
//	track, _ := NewTrack("overture.mp3", "/data/shows/Spring Revue/audio/overture.mp3")
//	intro, _ := NewMarker("Intro", 1500)
//	_ = track.AddMarker(intro)
type Track struct {
	filename   string
	assetPath  string
	markers    []Marker
	durationMS *int64
}

// NewTrack creates a Track with no markers and unknown duration.
//
// The filename is the name the user knows the audio by (normally the base
// name of the file they added). The assetPath points at the managed copy.
func NewTrack(filename, assetPath string) (*Track, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, apperr.Invalid("new track", errors.New("track filename cannot be empty"))
	}
	return &Track{filename: filename, assetPath: assetPath}, nil
}

// Filename returns the display filename of the track.
func (t *Track) Filename() string {
	return t.filename
}

// AssetPath returns the filesystem path of the track's audio.
func (t *Track) AssetPath() string {
	return t.assetPath
}

// SetAssetPath points the track at a different copy of its audio.
func (t *Track) SetAssetPath(path string) {
	t.assetPath = path
}

// Duration returns the track length in milliseconds, if known.
func (t *Track) Duration() (int64, bool) {
	if t.durationMS == nil {
		return 0, false
	}
	return *t.durationMS, true
}

// SetDuration records the track length in milliseconds.
func (t *Track) SetDuration(ms int64) error {
	if ms < 0 {
		return apperr.Invalid("set duration", fmt.Errorf("duration %d is negative", ms))
	}
	t.durationMS = &ms
	return nil
}

// Markers returns a copy of the markers in timestamp order.
func (t *Track) Markers() []Marker {
	out := make([]Marker, len(t.markers))
	copy(out, t.markers)
	return out
}

// MarkerCount returns the number of markers.
func (t *Track) MarkerCount() int {
	return len(t.markers)
}

// MarkerAt returns the marker at index i of the sorted sequence.
func (t *Track) MarkerAt(i int) (Marker, bool) {
	if i < 0 || i >= len(t.markers) {
		return Marker{}, false
	}
	return t.markers[i], true
}

// AddMarker inserts m in timestamp order.
//
// A marker that shares its timestamp with existing markers goes after them.
// If the name is already taken the track is left unchanged and the error
// wraps ErrDuplicateMarker with kind apperr.KindInvalidData.
func (t *Track) AddMarker(m Marker) error {
	if m.name == "" {
		return apperr.Invalid("add marker", errors.New("marker was not created with NewMarker"))
	}
	if t.HasMarker(m.name) {
		return apperr.Invalid("add marker", fmt.Errorf("%w: %q", ErrDuplicateMarker, m.name))
	}
	t.insertSorted(m)
	return nil
}

// RemoveMarker deletes the marker with the given name.
// It returns false if no such marker exists.
func (t *Track) RemoveMarker(name string) bool {
	i := t.indexOf(name)
	if i < 0 {
		return false
	}
	t.markers = append(t.markers[:i], t.markers[i+1:]...)
	return true
}

// Marker returns the marker with the given name.
func (t *Track) Marker(name string) (Marker, bool) {
	i := t.indexOf(name)
	if i < 0 {
		return Marker{}, false
	}
	return t.markers[i], true
}

// HasMarker reports whether a marker with exactly this name exists.
func (t *Track) HasMarker(name string) bool {
	return t.indexOf(name) >= 0
}

// HasMarkerFold reports whether a marker name matches ignoring case.
// Editors use it to warn about near-duplicates before calling AddMarker.
func (t *Track) HasMarkerFold(name string) bool {
	key := foldName(name)
	for _, m := range t.markers {
		if foldName(m.name) == key {
			return true
		}
	}
	return false
}

// SameNameFold reports whether two marker names are equal under Unicode case
// folding after NFC normalization, so "Straße" matches "STRASSE" and a
// decomposed "é" matches a precomposed one.
func SameNameFold(a, b string) bool {
	return foldName(a) == foldName(b)
}

func foldName(s string) string {
	// Casers keep state and are not shared.
	return cases.Fold().String(norm.NFC.String(s))
}

// RenameMarker changes a marker's name.
//
// It returns false if oldName does not exist. The new name must be valid and
// not used by another marker.
func (t *Track) RenameMarker(oldName, newName string) (bool, error) {
	if err := validateMarkerName(newName); err != nil {
		return false, apperr.Invalid("rename marker", err)
	}
	if oldName != newName && t.HasMarker(newName) {
		return false, apperr.Invalid("rename marker", fmt.Errorf("%w: %q", ErrDuplicateMarker, newName))
	}
	i := t.indexOf(oldName)
	if i < 0 {
		return false, nil
	}
	t.markers[i].name = newName
	return true, nil
}

// MoveMarker sets a marker's timestamp and restores timestamp order.
func (t *Track) MoveMarker(name string, timestampMS int64) (Marker, error) {
	if timestampMS < 0 {
		return Marker{}, apperr.Invalid("move marker", fmt.Errorf("timestamp %d is negative", timestampMS))
	}
	i := t.indexOf(name)
	if i < 0 {
		return Marker{}, apperr.NotFound("move marker", name, nil)
	}
	m := t.markers[i]
	t.markers = append(t.markers[:i], t.markers[i+1:]...)
	m.timestampMS = timestampMS
	t.insertSorted(m)
	return m, nil
}

// NudgeMarker moves a marker by deltaMS, clamping at the start of the track.
func (t *Track) NudgeMarker(name string, deltaMS int64) (Marker, error) {
	m, ok := t.Marker(name)
	if !ok {
		return Marker{}, apperr.NotFound("nudge marker", name, nil)
	}
	ts := m.timestampMS + deltaMS
	if ts < 0 {
		ts = 0
	}
	return t.MoveMarker(name, ts)
}

// Equal reports whether two tracks carry the same persisted content:
// filename, duration, and markers in order. Asset paths are not compared
// because they are rebuilt from the storage location on load.
func (t *Track) Equal(o *Track) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.filename != o.filename || len(t.markers) != len(o.markers) {
		return false
	}
	d1, ok1 := t.Duration()
	d2, ok2 := o.Duration()
	if ok1 != ok2 || d1 != d2 {
		return false
	}
	for i := range t.markers {
		if t.markers[i] != o.markers[i] {
			return false
		}
	}
	return true
}

// String returns "Track: filename (n markers)".
func (t *Track) String() string {
	return fmt.Sprintf("Track: %s (%d markers)", t.filename, len(t.markers))
}

func (t *Track) indexOf(name string) int {
	for i, m := range t.markers {
		if m.name == name {
			return i
		}
	}
	return -1
}

// insertSorted places m after every marker whose timestamp is <= m's.
func (t *Track) insertSorted(m Marker) {
	i := sort.Search(len(t.markers), func(i int) bool {
		return t.markers[i].timestampMS > m.timestampMS
	})
	t.markers = append(t.markers, Marker{})
	copy(t.markers[i+1:], t.markers[i:])
	t.markers[i] = m
}
