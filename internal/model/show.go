package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/handiism/rehearsal-markers/internal/apperr"
)

// Show is the root aggregate: an ordered list of tracks plus settings.
//
// Tracks and their markers belong to exactly one show. A show has no
// identity beyond its content; loading a saved show produces a fresh graph
// that is Equal to, but not the same object as, the one that was saved.
//
// Example:
//
//	show, err := NewShow("Spring Revue")
//	if err != nil {
//	    return err
//	}
//	track, _ := NewTrack("overture.mp3", audioPath)
//	show.AddTrack(track)
type Show struct {
	name     string
	tracks   []*Track
	settings Settings
}

// NewShow creates an empty show with default settings.
// The name must contain at least one non-whitespace character.
func NewShow(name string) (*Show, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Invalid("new show", errors.New("show name cannot be empty"))
	}
	return &Show{name: name, settings: DefaultSettings()}, nil
}

// Name returns the show name.
func (s *Show) Name() string {
	return s.name
}

// Settings returns the show settings.
func (s *Show) Settings() Settings {
	return s.settings
}

// SetSettings replaces the show settings. The zero Settings is rejected.
func (s *Show) SetSettings(settings Settings) error {
	if settings.IsZero() {
		return apperr.Invalid("set settings", errors.New("settings were not created with NewSettings"))
	}
	s.settings = settings
	return nil
}

// Tracks returns the tracks in show order. The slice is a copy; the tracks
// are not.
func (s *Show) Tracks() []*Track {
	out := make([]*Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// TrackCount returns the number of tracks.
func (s *Show) TrackCount() int {
	return len(s.tracks)
}

// Track returns the track at index i.
func (s *Show) Track(i int) (*Track, bool) {
	if i < 0 || i >= len(s.tracks) {
		return nil, false
	}
	return s.tracks[i], true
}

// AddTrack appends a track to the end of the show.
func (s *Show) AddTrack(t *Track) {
	if t == nil {
		return
	}
	s.tracks = append(s.tracks, t)
}

// RemoveTrack removes the track at index i. It returns false for an
// out-of-range index.
func (s *Show) RemoveTrack(i int) bool {
	if i < 0 || i >= len(s.tracks) {
		return false
	}
	s.tracks = append(s.tracks[:i], s.tracks[i+1:]...)
	return true
}

// RemoveTrackByFilename removes the first track with the given filename.
func (s *Show) RemoveTrackByFilename(filename string) bool {
	for i, t := range s.tracks {
		if t.filename == filename {
			return s.RemoveTrack(i)
		}
	}
	return false
}

// ReorderTrack moves the track at from to position to. It returns false when
// either index is out of range or they are equal.
func (s *Show) ReorderTrack(from, to int) bool {
	n := len(s.tracks)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return false
	}
	t := s.tracks[from]
	s.tracks = append(s.tracks[:from], s.tracks[from+1:]...)
	s.tracks = append(s.tracks[:to], append([]*Track{t}, s.tracks[to:]...)...)
	return true
}

// MarkerCount returns the total number of markers across all tracks.
func (s *Show) MarkerCount() int {
	n := 0
	for _, t := range s.tracks {
		n += len(t.markers)
	}
	return n
}

// Equal reports whether two shows have the same name, settings, and tracks.
func (s *Show) Equal(o *Show) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.name != o.name || s.settings != o.settings || len(s.tracks) != len(o.tracks) {
		return false
	}
	for i := range s.tracks {
		if !s.tracks[i].Equal(o.tracks[i]) {
			return false
		}
	}
	return true
}

// String returns "Show: name (n tracks)".
func (s *Show) String() string {
	return fmt.Sprintf("Show: %s (%d tracks)", s.name, len(s.tracks))
}
