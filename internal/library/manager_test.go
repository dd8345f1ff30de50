package library

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/rehearsal-markers/internal/apperr"
	"github.com/handiism/rehearsal-markers/internal/assets"
	"github.com/handiism/rehearsal-markers/internal/audio"
	"github.com/handiism/rehearsal-markers/internal/model"
	"github.com/handiism/rehearsal-markers/internal/paths"
	"github.com/handiism/rehearsal-markers/internal/repository"
)

type fixture struct {
	mgr    *Manager
	repo   *repository.Repository
	layout paths.Layout
	src    string

	mu     sync.Mutex
	events []ProgressEvent
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	root := t.TempDir()
	layout := paths.New(filepath.Join(root, "data"))
	repo := repository.New(layout)
	store := assets.New(layout, assets.WithProber(audio.NoProber{}))

	f := &fixture{repo: repo, layout: layout, src: filepath.Join(root, "src")}
	opts = append(opts, WithProgress(func(e ProgressEvent) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.events = append(f.events, e)
	}))
	f.mgr = NewManager(repo, store, opts...)
	require.NoError(t, os.MkdirAll(f.src, 0755))
	return f
}

func (f *fixture) write(t *testing.T, rel, content string) string {
	t.Helper()
	p := filepath.Join(f.src, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func (f *fixture) count(level ProgressLevel) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.Level == level {
			n++
		}
	}
	return n
}

func TestCreateShow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	settings, err := model.NewSettings(10, 50)
	require.NoError(t, err)
	show, err := f.mgr.CreateShow(ctx, "Revue", settings)
	require.NoError(t, err)
	assert.Equal(t, 10, show.Settings().SkipIncrementSeconds())
	assert.True(t, f.repo.Exists("Revue"))

	_, err = f.mgr.CreateShow(ctx, "Revue", model.Settings{})
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)

	_, err = f.mgr.CreateShow(ctx, "a/b", model.Settings{})
	assert.ErrorIs(t, err, apperr.ErrInvalidData)
}

func TestAddTracks_ContinuesPastFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	show, err := model.NewShow("Revue")
	require.NoError(t, err)

	sources := []string{
		f.write(t, "one.mp3", "1"),
		f.write(t, "notes.txt", "n"),
		filepath.Join(f.src, "gone.wav"),
		f.write(t, "two.flac", "2"),
	}
	added, err := f.mgr.AddTracks(ctx, show, sources)
	assert.ErrorIs(t, err, apperr.ErrUnsupportedFormat)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	require.Len(t, added, 2)
	assert.Equal(t, 2, show.TrackCount())
	assert.Equal(t, 2, f.count(LevelError))
	assert.Equal(t, 2, f.count(LevelSuccess))
}

func TestImportShow_TwoPhase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// An exported show with one asset next to the document and one missing.
	show, err := model.NewShow("Touring Revue")
	require.NoError(t, err)
	for _, name := range []string{"overture.mp3", "finale.mp3"} {
		track, err := model.NewTrack(name, "/anywhere/"+name)
		require.NoError(t, err)
		show.AddTrack(track)
	}
	exportPath := filepath.Join(f.src, "export", "touring.json")
	require.NoError(t, f.repo.Export(ctx, show, exportPath))
	f.write(t, filepath.Join("export", "audio", "overture.mp3"), "overture bytes")

	imported, report, err := f.mgr.ImportShow(ctx, exportPath, "", false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Relocated)
	assert.Equal(t, []string{"finale.mp3"}, report.Missing)
	assert.Equal(t, 1, f.count(LevelWarning))

	audioDir := f.layout.AudioDir("Touring Revue")
	overture, _ := imported.Track(0)
	assert.Equal(t, filepath.Join(audioDir, "overture.mp3"), overture.AssetPath())
	data, err := os.ReadFile(overture.AssetPath())
	require.NoError(t, err)
	assert.Equal(t, "overture bytes", string(data))

	loaded, err := f.repo.Load(ctx, "Touring Revue")
	require.NoError(t, err)
	assert.True(t, show.Equal(loaded))

	_, _, err = f.mgr.ImportShow(ctx, exportPath, "", false)
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)

	_, report, err = f.mgr.ImportShow(ctx, exportPath, "", true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Relocated)
	entries, err := os.ReadDir(audioDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "re-import must reuse identical assets")
}

func TestRemoveTrack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	show, err := model.NewShow("Revue")
	require.NoError(t, err)

	src := f.write(t, "song.mp3", "song")
	_, err = f.mgr.AddTracks(ctx, show, []string{src, src})
	require.NoError(t, err)
	require.Equal(t, 2, show.TrackCount())

	// The second track shares the asset, so it stays.
	removed, deleted, err := f.mgr.RemoveTrack(show, 0, true)
	require.NoError(t, err)
	assert.False(t, deleted)
	_, err = os.Stat(removed.AssetPath())
	assert.NoError(t, err)

	removed, deleted, err = f.mgr.RemoveTrack(show, 0, true)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = os.Stat(removed.AssetPath())
	assert.True(t, os.IsNotExist(err))

	_, _, err = f.mgr.RemoveTrack(show, 0, false)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRemoveTrack_KeepsUnmanagedAsset(t *testing.T) {
	f := newFixture(t)
	show, err := model.NewShow("Revue")
	require.NoError(t, err)
	external := f.write(t, "external.mp3", "x")
	track, err := model.NewTrack("external.mp3", external)
	require.NoError(t, err)
	show.AddTrack(track)

	_, deleted, err := f.mgr.RemoveTrack(show, 0, true)
	require.NoError(t, err)
	assert.False(t, deleted)
	_, err = os.Stat(external)
	assert.NoError(t, err)
}

func TestVerify(t *testing.T) {
	f := newFixture(t, WithConcurrency(2))
	ctx := context.Background()
	show, err := model.NewShow("Revue")
	require.NoError(t, err)

	var sources []string
	for i := 0; i < 5; i++ {
		sources = append(sources, f.write(t, "t"+string(rune('a'+i))+".mp3", strings.Repeat("x", i+1)))
	}
	_, err = f.mgr.AddTracks(ctx, show, sources)
	require.NoError(t, err)
	gone, _ := show.Track(3)
	require.NoError(t, os.Remove(gone.AssetPath()))

	results, err := f.mgr.Verify(ctx, show)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		if i == 3 {
			assert.False(t, r.OK())
			assert.Equal(t, "missing", r.Problem())
			continue
		}
		assert.True(t, r.OK(), r.Filename)
		assert.Equal(t, int64(i+1), r.Size)
	}
}

func TestWritePlaylist(t *testing.T) {
	f := newFixture(t, WithPlaylist(audio.FormatPLS, false))
	ctx := context.Background()
	show, err := model.NewShow("Revue: Act 1")
	require.NoError(t, err)
	_, err = f.mgr.AddTracks(ctx, show, []string{f.write(t, "song.mp3", "s")})
	require.NoError(t, err)

	path, err := f.mgr.WritePlaylist(ctx, show, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.layout.ShowDir("Revue: Act 1"), "Revue_ Act 1.pls"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "File1=audio/song.mp3")
}
