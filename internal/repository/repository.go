// Package repository stores shows on disk, keyed by show name.
//
// Each show lives in its own directory with a JSON document named after the
// show and an audio subdirectory. The repository reads and writes documents
// only; asset bytes are the asset store's business.
//
//	repo := repository.New(paths.New(base), repository.WithLogger(logger))
//	if err := repo.Save(ctx, show); err != nil {
//	    return err
//	}
//	names, _ := repo.List()
package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/handiism/rehearsal-markers/internal/apperr"
	"github.com/handiism/rehearsal-markers/internal/codec"
	ioutils "github.com/handiism/rehearsal-markers/internal/io"
	"github.com/handiism/rehearsal-markers/internal/model"
	"github.com/handiism/rehearsal-markers/internal/paths"
	"github.com/handiism/rehearsal-markers/internal/showlock"
)

// DefaultLockTimeout is how long Save and Delete wait for another writer.
const DefaultLockTimeout = 10 * time.Second

// Repository saves and loads shows below a Layout.
type Repository struct {
	layout      paths.Layout
	logger      *zap.Logger
	lockTimeout time.Duration
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithLockTimeout overrides DefaultLockTimeout. Zero waits for a busy show
// until the operation's context is done; negative values are ignored.
func WithLockTimeout(d time.Duration) Option {
	return func(r *Repository) {
		if d >= 0 {
			r.lockTimeout = d
		}
	}
}

// New creates a Repository.
func New(layout paths.Layout, opts ...Option) *Repository {
	r := &Repository{
		layout:      layout,
		logger:      zap.NewNop(),
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Layout returns the path layout the repository writes to.
func (r *Repository) Layout() paths.Layout {
	return r.layout
}

// Save writes the show's document, replacing any previous version.
// The show and audio directories are created if needed.
func (r *Repository) Save(ctx context.Context, show *model.Show) error {
	const op = "save show"

	if show == nil {
		return apperr.Invalid(op, errors.New("nil show"))
	}
	name := show.Name()
	if err := paths.ValidateShowName(name); err != nil {
		return err
	}

	release, err := r.lock(ctx, name)
	if err != nil {
		return apperr.IO(op, name, err)
	}
	defer release()

	if err := ioutils.EnsureDir(r.layout.AudioDir(name)); err != nil {
		return apperr.IO(op, name, err)
	}

	data, err := codec.Encode(show)
	if err != nil {
		return err
	}

	path := r.layout.DocumentPath(name)
	if err := ioutils.WriteFileAtomic(ctx, path, data); err != nil {
		return apperr.IO(op, path, err)
	}

	r.logger.Info("show saved",
		zap.String("show", name),
		zap.Int("tracks", show.TrackCount()),
		zap.Int("markers", show.MarkerCount()))
	return nil
}

// Load reads a show. A show without a document is apperr.KindNotFound.
func (r *Repository) Load(ctx context.Context, name string) (*model.Show, error) {
	const op = "load show"

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := paths.ValidateShowName(name); err != nil {
		return nil, err
	}

	path := r.layout.DocumentPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.NotFound(op, name, err)
		}
		return nil, apperr.IO(op, path, err)
	}

	show, err := codec.Decode(data, r.layout.AudioDir(name))
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, name, err)
	}

	r.logger.Debug("show loaded", zap.String("show", name), zap.Int("tracks", show.TrackCount()))
	return show, nil
}

// Exists reports whether the show has a document.
func (r *Repository) Exists(name string) bool {
	if paths.ValidateShowName(name) != nil {
		return false
	}
	info, err := os.Stat(r.layout.DocumentPath(name))
	return err == nil && info.Mode().IsRegular()
}

// Delete removes the show's whole directory, assets included. It returns
// false, and no error, when the show does not exist.
func (r *Repository) Delete(ctx context.Context, name string) (bool, error) {
	const op = "delete show"

	if err := paths.ValidateShowName(name); err != nil {
		return false, err
	}

	dir := r.layout.ShowDir(name)
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, apperr.IO(op, dir, err)
	}

	release, err := r.lock(ctx, name)
	if err != nil {
		return false, apperr.IO(op, name, err)
	}

	if err := os.RemoveAll(dir); err != nil {
		release()
		return false, apperr.IO(op, dir, err)
	}
	release()

	// The show is gone, so its lock file goes too.
	lockPath := r.layout.LockPath(name)
	if err := os.Remove(lockPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger.Warn("failed to remove show lock file", zap.String("path", lockPath), zap.Error(err))
	}

	r.logger.Info("show deleted", zap.String("show", name))
	return true, nil
}

// List returns the names of stored shows in sorted order. Only directories
// holding a matching document count as shows.
func (r *Repository) List() ([]string, error) {
	entries, err := os.ReadDir(r.layout.ShowsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, apperr.IO("list shows", r.layout.ShowsDir(), err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || paths.ValidateShowName(e.Name()) != nil {
			continue
		}
		if r.Exists(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Export writes the show's document to path. Assets are not copied; the
// exported file is metadata only.
func (r *Repository) Export(ctx context.Context, show *model.Show, path string) error {
	const op = "export show"

	data, err := codec.Encode(show)
	if err != nil {
		return err
	}
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return apperr.IO(op, path, err)
	}
	if err := ioutils.WriteFileAtomic(ctx, path, data); err != nil {
		return apperr.IO(op, path, err)
	}

	r.logger.Info("show exported", zap.String("show", show.Name()), zap.String("path", path))
	return nil
}

// Import reads a document from path. Track asset paths point into
// assetSourceDir, or into the "audio" directory next to the document when
// assetSourceDir is empty. The caller relocates assets into managed storage.
func (r *Repository) Import(ctx context.Context, path, assetSourceDir string) (*model.Show, error) {
	const op = "import show"

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.NotFound(op, path, err)
		}
		return nil, apperr.IO(op, path, err)
	}

	if assetSourceDir == "" {
		assetSourceDir = paths.AdjacentAudioDir(path)
	}

	show, err := codec.Decode(data, assetSourceDir)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, path, err)
	}

	r.logger.Info("show imported",
		zap.String("show", show.Name()),
		zap.String("path", path),
		zap.String("assets", assetSourceDir))
	return show, nil
}

func (r *Repository) lock(ctx context.Context, name string) (func(), error) {
	release, err := showlock.Acquire(ctx, r.layout.LockPath(name), r.lockTimeout)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := release(); err != nil {
			r.logger.Warn("failed to release show lock", zap.String("show", name), zap.Error(err))
		}
	}, nil
}
