package model

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/rehearsal-markers/internal/apperr"
)

func mustMarker(t *testing.T, name string, ts int64) Marker {
	t.Helper()
	m, err := NewMarker(name, ts)
	require.NoError(t, err)
	return m
}

func mustTrack(t *testing.T, filename string) *Track {
	t.Helper()
	track, err := NewTrack(filename, "/audio/"+filename)
	require.NoError(t, err)
	return track
}

func TestNewMarker_Validation(t *testing.T) {
	tests := []struct {
		name    string
		marker  string
		ts      int64
		wantErr bool
	}{
		{"valid", "Intro", 0, false},
		{"valid later", "Verse 2", 125000, false},
		{"empty name", "", 10, true},
		{"whitespace name", "   \t", 10, true},
		{"negative timestamp", "Intro", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMarker(tt.marker, tt.ts)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrInvalidData)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.marker, m.Name())
			assert.Equal(t, tt.ts, m.TimestampMS())
		})
	}
}

func TestMarker_String(t *testing.T) {
	assert.Equal(t, "Intro (1:05.20)", mustMarker(t, "Intro", 65200).String())
	assert.Equal(t, "Top (0:00.00)", mustMarker(t, "Top", 0).String())
}

func TestNewSettings_Validation(t *testing.T) {
	_, err := NewSettings(0, 100)
	assert.ErrorIs(t, err, apperr.ErrInvalidData)

	_, err = NewSettings(5, -1)
	assert.ErrorIs(t, err, apperr.ErrInvalidData)

	s, err := NewSettings(10, 250)
	require.NoError(t, err)
	assert.Equal(t, 10, s.SkipIncrementSeconds())
	assert.Equal(t, 250, s.MarkerNudgeIncrementMS())

	d := DefaultSettings()
	assert.Equal(t, 5, d.SkipIncrementSeconds())
	assert.Equal(t, 100, d.MarkerNudgeIncrementMS())
}

func TestNewShow_RejectsBlankName(t *testing.T) {
	for _, name := range []string{"", "  "} {
		_, err := NewShow(name)
		assert.ErrorIs(t, err, apperr.ErrInvalidData)
	}

	show, err := NewShow("Spring Revue")
	require.NoError(t, err)
	assert.Equal(t, "Spring Revue", show.Name())
	assert.Equal(t, DefaultSettings(), show.Settings())
	assert.Zero(t, show.TrackCount())
}

func TestNewTrack_RejectsBlankFilename(t *testing.T) {
	_, err := NewTrack(" ", "/audio/x.mp3")
	assert.ErrorIs(t, err, apperr.ErrInvalidData)
}

func TestTrack_MarkersStaySorted(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	track := mustTrack(t, "song.mp3")

	for i := 0; i < 200; i++ {
		m := mustMarker(t, "m"+string(rune('A'+i%26))+string(rune('a'+i/26)), rng.Int63n(300000))
		require.NoError(t, track.AddMarker(m))

		markers := track.Markers()
		assert.True(t, sort.SliceIsSorted(markers, func(a, b int) bool {
			return markers[a].TimestampMS() < markers[b].TimestampMS()
		}), "markers out of order after add %d", i)
	}
}

func TestTrack_EqualTimestampsKeepInsertionOrder(t *testing.T) {
	track := mustTrack(t, "song.mp3")
	require.NoError(t, track.AddMarker(mustMarker(t, "first", 1000)))
	require.NoError(t, track.AddMarker(mustMarker(t, "second", 1000)))
	require.NoError(t, track.AddMarker(mustMarker(t, "early", 10)))

	names := []string{}
	for _, m := range track.Markers() {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{"early", "first", "second"}, names)
}

func TestTrack_DuplicateMarkerLeavesTrackUnchanged(t *testing.T) {
	track := mustTrack(t, "song.mp3")
	require.NoError(t, track.AddMarker(mustMarker(t, "Chorus", 5000)))
	before := track.Markers()

	err := track.AddMarker(mustMarker(t, "Chorus", 9000))
	assert.ErrorIs(t, err, apperr.ErrInvalidData)
	assert.True(t, errors.Is(err, ErrDuplicateMarker))
	assert.Equal(t, before, track.Markers())

	// Uniqueness is case-sensitive at this layer.
	require.NoError(t, track.AddMarker(mustMarker(t, "chorus", 9000)))
	assert.True(t, track.HasMarkerFold("CHORUS"))
	assert.False(t, track.HasMarker("CHORUS"))
}

func TestTrack_RemoveAndRename(t *testing.T) {
	track := mustTrack(t, "song.mp3")
	require.NoError(t, track.AddMarker(mustMarker(t, "A", 100)))
	require.NoError(t, track.AddMarker(mustMarker(t, "B", 200)))

	assert.True(t, track.RemoveMarker("A"))
	assert.False(t, track.RemoveMarker("A"))

	ok, err := track.RenameMarker("B", "Bridge")
	require.NoError(t, err)
	assert.True(t, ok)
	m, found := track.Marker("Bridge")
	require.True(t, found)
	assert.Equal(t, int64(200), m.TimestampMS())

	ok, err = track.RenameMarker("missing", "X")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, track.AddMarker(mustMarker(t, "Coda", 300)))
	_, err = track.RenameMarker("Coda", "Bridge")
	assert.ErrorIs(t, err, ErrDuplicateMarker)

	_, err = track.RenameMarker("Coda", " ")
	assert.ErrorIs(t, err, apperr.ErrInvalidData)

	ok, err = track.RenameMarker("Coda", "Coda")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTrack_NudgeMarkerClampsAndResorts(t *testing.T) {
	track := mustTrack(t, "song.mp3")
	require.NoError(t, track.AddMarker(mustMarker(t, "A", 100)))
	require.NoError(t, track.AddMarker(mustMarker(t, "B", 200)))

	m, err := track.NudgeMarker("A", 150)
	require.NoError(t, err)
	assert.Equal(t, int64(250), m.TimestampMS())
	first, _ := track.MarkerAt(0)
	assert.Equal(t, "B", first.Name())

	m, err = track.NudgeMarker("B", -1000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.TimestampMS())

	_, err = track.NudgeMarker("missing", 10)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTrack_Duration(t *testing.T) {
	track := mustTrack(t, "song.mp3")
	_, ok := track.Duration()
	assert.False(t, ok)

	require.NoError(t, track.SetDuration(183000))
	d, ok := track.Duration()
	assert.True(t, ok)
	assert.Equal(t, int64(183000), d)

	assert.ErrorIs(t, track.SetDuration(-5), apperr.ErrInvalidData)
}

func TestShow_TrackOperations(t *testing.T) {
	show, err := NewShow("Revue")
	require.NoError(t, err)

	a, b, c := mustTrack(t, "a.mp3"), mustTrack(t, "b.mp3"), mustTrack(t, "c.mp3")
	show.AddTrack(a)
	show.AddTrack(b)
	show.AddTrack(c)

	assert.True(t, show.ReorderTrack(0, 2))
	assert.Equal(t, []*Track{b, c, a}, show.Tracks())

	assert.False(t, show.ReorderTrack(1, 1))
	assert.False(t, show.ReorderTrack(-1, 0))
	assert.False(t, show.ReorderTrack(0, 3))

	assert.True(t, show.RemoveTrackByFilename("c.mp3"))
	assert.False(t, show.RemoveTrackByFilename("c.mp3"))
	assert.True(t, show.RemoveTrack(0))
	assert.False(t, show.RemoveTrack(5))

	got, ok := show.Track(0)
	require.True(t, ok)
	assert.Same(t, a, got)
	_, ok = show.Track(1)
	assert.False(t, ok)
}

func TestShow_Equal(t *testing.T) {
	build := func() *Show {
		show, err := NewShow("Revue")
		require.NoError(t, err)
		track := mustTrack(t, "a.mp3")
		require.NoError(t, track.AddMarker(mustMarker(t, "Intro", 10)))
		show.AddTrack(track)
		return show
	}

	s1, s2 := build(), build()
	assert.True(t, s1.Equal(s2))

	// Asset paths are rebuilt on load and do not affect equality.
	tr, _ := s2.Track(0)
	tr.SetAssetPath("/elsewhere/a.mp3")
	assert.True(t, s1.Equal(s2))

	settings, err := NewSettings(10, 100)
	require.NoError(t, err)
	require.NoError(t, s2.SetSettings(settings))
	assert.False(t, s1.Equal(s2))

	assert.ErrorIs(t, s2.SetSettings(Settings{}), apperr.ErrInvalidData)
}

func TestTimestampParseAndFormat(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"1:23.5", 83500},
		{"1:23", 83000},
		{"83.5", 83500},
		{"0.001", 1},
		{"83500ms", 83500},
		{" 2:00 ", 120000},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{
		"", "abc", "-1", "1:75", "x:10", "-5ms", "NaN",
		"1e300", "9223372036854775.807", "307445734561825:59", "99999999999999999999ms",
	} {
		_, err := ParseTimestamp(bad)
		assert.ErrorIs(t, err, apperr.ErrInvalidData, bad)
	}

	// Large but representable positions still parse.
	got, err := ParseTimestamp("153722867280:59.5")
	require.NoError(t, err)
	assert.Equal(t, int64(153722867280*60000+59500), got)

	assert.Equal(t, "1:23.500", FormatTimestamp(83500))
	assert.Equal(t, "0:00.000", FormatTimestamp(0))
}

func TestSameNameFold(t *testing.T) {
	assert.True(t, SameNameFold("Chorus", "CHORUS"))
	assert.True(t, SameNameFold("Straße", "STRASSE"))
	assert.True(t, SameNameFold("Café", "café"))
	assert.False(t, SameNameFold("Verse 1", "Verse 2"))

	track := mustTrack(t, "song.mp3")
	require.NoError(t, track.AddMarker(mustMarker(t, "Straße", 100)))
	assert.True(t, track.HasMarkerFold("strasse"))
}
