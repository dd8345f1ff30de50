package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/rehearsal-markers/internal/apperr"
	"github.com/handiism/rehearsal-markers/internal/assets"
	"github.com/handiism/rehearsal-markers/internal/audio"
	ioutils "github.com/handiism/rehearsal-markers/internal/io"
	"github.com/handiism/rehearsal-markers/internal/model"
	"github.com/handiism/rehearsal-markers/internal/paths"
	"github.com/handiism/rehearsal-markers/internal/repository"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a progress update from a long-running workflow.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// DefaultConcurrency bounds Verify when no option overrides it.
const DefaultConcurrency = 4

// Manager coordinates the repository and the asset store for workflows
// that touch both.
type Manager struct {
	repo     *repository.Repository
	store    *assets.Store
	playlist *audio.PlaylistCreator
	format   audio.PlaylistFormat
	logger   *zap.Logger

	concurrency int
	onProgress  func(ProgressEvent)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(m *Manager) {
		m.onProgress = fn
	}
}

// WithConcurrency sets how many files Verify checks at once.
func WithConcurrency(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// WithPlaylist sets the playlist format used by WritePlaylist.
func WithPlaylist(format audio.PlaylistFormat, extended bool) Option {
	return func(m *Manager) {
		m.format = format
		m.playlist = audio.NewPlaylistCreator(format, extended)
	}
}

// NewManager creates a Manager.
func NewManager(repo *repository.Repository, store *assets.Store, opts ...Option) *Manager {
	m := &Manager{
		repo:        repo,
		store:       store,
		format:      audio.FormatM3U,
		playlist:    audio.NewPlaylistCreator(audio.FormatM3U, true),
		logger:      zap.NewNop(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateShow creates and saves an empty show. It fails with
// apperr.KindAlreadyExists if a show with that name is stored.
func (m *Manager) CreateShow(ctx context.Context, name string, settings model.Settings) (*model.Show, error) {
	if err := paths.ValidateShowName(name); err != nil {
		return nil, err
	}
	if m.repo.Exists(name) {
		return nil, apperr.Exists("create show", name)
	}

	show, err := model.NewShow(name)
	if err != nil {
		return nil, err
	}
	if !settings.IsZero() {
		if err := show.SetSettings(settings); err != nil {
			return nil, err
		}
	}
	if err := m.repo.Save(ctx, show); err != nil {
		return nil, err
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Created show %q", name), Level: LevelSuccess})
	return show, nil
}

// AddTracks copies each source into the show and appends a track for it.
//
// Files are processed one after another so collision checks for the same
// destination never overlap. A failing file is reported and skipped; the
// returned error joins every failure. The show is not saved.
func (m *Manager) AddTracks(ctx context.Context, show *model.Show, sources []string) ([]*model.Track, error) {
	var (
		added []*model.Track
		errs  []error
	)
	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		m.progress(ProgressEvent{Message: fmt.Sprintf("[%d/%d] Adding %s", i+1, len(sources), filepath.Base(src)), Level: LevelVerbose})

		track, err := m.store.AddToShow(ctx, src, show.Name())
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Could not add %s: %v", src, err), Level: LevelError})
			errs = append(errs, err)
			continue
		}
		show.AddTrack(track)
		added = append(added, track)

		m.progress(ProgressEvent{Message: fmt.Sprintf("Added %s", track.Filename()), Level: LevelSuccess})
	}
	return added, errors.Join(errs...)
}

// ImportReport summarizes the asset relocation phase of an import.
type ImportReport struct {
	Relocated int
	Missing   []string
}

// ImportShow imports a document and moves its assets into managed storage.
//
// Phase one decodes the document with asset paths pointing at assetDir (or
// the "audio" directory next to the document). Phase two copies each
// referenced asset through the asset store and repoints the track. Missing
// assets are reported, not fatal; their tracks point at where the asset
// would live. The show is saved at the end. An existing show of the same
// name is only replaced when overwrite is set.
func (m *Manager) ImportShow(ctx context.Context, path, assetDir string, overwrite bool) (*model.Show, ImportReport, error) {
	var report ImportReport

	show, err := m.repo.Import(ctx, path, assetDir)
	if err != nil {
		return nil, report, err
	}
	if err := paths.ValidateShowName(show.Name()); err != nil {
		return nil, report, err
	}
	if m.repo.Exists(show.Name()) && !overwrite {
		return nil, report, apperr.Exists("import show", show.Name())
	}

	audioDir := m.repo.Layout().AudioDir(show.Name())
	for _, track := range show.Tracks() {
		src := track.AssetPath()

		ok, err := ioutils.Exists(src)
		if err != nil {
			return nil, report, apperr.IO("import show", src, err)
		}
		if !ok {
			report.Missing = append(report.Missing, track.Filename())
			track.SetAssetPath(filepath.Join(audioDir, filepath.Base(src)))
			m.progress(ProgressEvent{Message: fmt.Sprintf("Audio for %s not found at %s", track.Filename(), src), Level: LevelWarning})
			continue
		}

		dest, err := m.store.Copy(ctx, src, show.Name())
		if err != nil {
			return nil, report, err
		}
		track.SetAssetPath(dest)
		report.Relocated++
		m.progress(ProgressEvent{Message: fmt.Sprintf("Copied %s", track.Filename()), Level: LevelVerbose})
	}

	if err := m.repo.Save(ctx, show); err != nil {
		return nil, report, err
	}

	m.logger.Info("show import finished",
		zap.String("show", show.Name()),
		zap.Int("relocated", report.Relocated),
		zap.Int("missing", len(report.Missing)))
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Imported %q: %d assets copied, %d missing", show.Name(), report.Relocated, len(report.Missing)),
		Level:   LevelSuccess,
	})
	return show, report, nil
}

// RemoveTrack removes the track at index. With deleteAsset set, the asset
// file is deleted too, but only when it lives in the show's managed audio
// directory and no other track still references it. The show is not saved.
func (m *Manager) RemoveTrack(show *model.Show, index int, deleteAsset bool) (*model.Track, bool, error) {
	track, ok := show.Track(index)
	if !ok {
		return nil, false, apperr.NotFound("remove track", fmt.Sprintf("#%d", index+1), nil)
	}
	show.RemoveTrack(index)

	if !deleteAsset {
		return track, false, nil
	}
	for _, other := range show.Tracks() {
		if other.AssetPath() == track.AssetPath() {
			return track, false, nil
		}
	}
	if !within(m.repo.Layout().AudioDir(show.Name()), track.AssetPath()) {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Kept %s: not in managed storage", track.AssetPath()), Level: LevelWarning})
		return track, false, nil
	}

	deleted, err := m.store.Delete(track.AssetPath())
	if err != nil {
		return track, false, err
	}
	return track, deleted, nil
}

// VerifyResult describes one track's asset.
type VerifyResult struct {
	Index     int
	Filename  string
	AssetPath string
	Exists    bool
	Supported bool
	Size      int64
	Err       error
}

// OK reports whether the asset is present and usable.
func (r VerifyResult) OK() bool {
	return r.Exists && r.Supported && r.Err == nil
}

// Verify checks every track's asset concurrently. Results are in track
// order. Verify only reads.
func (m *Manager) Verify(ctx context.Context, show *model.Show) ([]VerifyResult, error) {
	tracks := show.Tracks()
	results := make([]VerifyResult, len(tracks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	for i, track := range tracks {
		i, track := i, track
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = verifyTrack(i, track)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	missing := 0
	for _, r := range results {
		if !r.OK() {
			missing++
			m.progress(ProgressEvent{Message: fmt.Sprintf("Problem with %s: %s", r.Filename, r.Problem()), Level: LevelWarning})
		}
	}
	m.logger.Info("verified show assets",
		zap.String("show", show.Name()),
		zap.Int("tracks", len(results)),
		zap.Int("problems", missing))
	return results, nil
}

// Problem describes what is wrong with the asset, or "" when OK.
func (r VerifyResult) Problem() string {
	switch {
	case r.Err != nil:
		return r.Err.Error()
	case !r.Exists:
		return "missing"
	case !r.Supported:
		return "unsupported format"
	default:
		return ""
	}
}

func verifyTrack(i int, track *model.Track) VerifyResult {
	r := VerifyResult{
		Index:     i,
		Filename:  track.Filename(),
		AssetPath: track.AssetPath(),
		Supported: assets.IsSupported(track.AssetPath()),
	}
	info, err := os.Stat(track.AssetPath())
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		r.Err = err
	case !info.Mode().IsRegular():
		r.Err = errors.New("not a regular file")
	default:
		r.Exists = true
		r.Size = info.Size()
	}
	return r
}

// PlaylistPath returns the default playlist location for a show: inside
// the show directory, named after the show.
func (m *Manager) PlaylistPath(show *model.Show) string {
	name := ioutils.SanitizeFileName(show.Name())
	return filepath.Join(m.repo.Layout().ShowDir(show.Name()), name+m.format.Extension())
}

// WritePlaylist renders the show as a playlist at target, or at
// PlaylistPath when target is empty, and returns the path written.
func (m *Manager) WritePlaylist(ctx context.Context, show *model.Show, target string) (string, error) {
	if target == "" {
		target = m.PlaylistPath(show)
	}
	if err := ioutils.EnsureDir(filepath.Dir(target)); err != nil {
		return "", apperr.IO("write playlist", target, err)
	}

	content := m.playlist.CreatePlaylist(show, filepath.Dir(target))
	if err := ioutils.WriteFileAtomic(ctx, target, []byte(content)); err != nil {
		return "", apperr.IO("write playlist", target, err)
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Playlist written to %s", target), Level: LevelSuccess})
	return target, nil
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func (m *Manager) progress(e ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(e)
	}
}
