package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/handiism/rehearsal-markers/internal/apperr"
	"github.com/handiism/rehearsal-markers/internal/audio"
	ioutils "github.com/handiism/rehearsal-markers/internal/io"
	"github.com/handiism/rehearsal-markers/internal/model"
	"github.com/handiism/rehearsal-markers/internal/paths"
	"github.com/handiism/rehearsal-markers/internal/showlock"
)

// DefaultMaxProbes bounds the "_N" suffixes tried for one file name.
const DefaultMaxProbes = 10000

// DefaultLockTimeout is how long Copy waits for another writer of the show.
const DefaultLockTimeout = 10 * time.Second

var supportedFormats = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".m4a":  {},
	".aac":  {},
	".flac": {},
	".ogg":  {},
	".opus": {},
	".wma":  {},
	".aiff": {},
	".aif":  {},
}

// IsSupported reports whether path has an allow-listed audio extension.
// The check is case-insensitive.
func IsSupported(path string) bool {
	_, ok := supportedFormats[strings.ToLower(filepath.Ext(path))]
	return ok
}

// SupportedExtensions returns the allow-list, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Store manages asset files below a Layout.
type Store struct {
	layout      paths.Layout
	prober      audio.DurationProber
	logger      *zap.Logger
	maxProbes   int
	lockTimeout time.Duration

	// mu orders copies within this process; the show lock covers other
	// processes.
	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProber sets the duration prober used by AddToShow.
func WithProber(p audio.DurationProber) Option {
	return func(s *Store) {
		if p != nil {
			s.prober = p
		}
	}
}

// WithMaxProbes overrides DefaultMaxProbes.
func WithMaxProbes(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxProbes = n
		}
	}
}

// WithLockTimeout overrides DefaultLockTimeout. Zero waits for a busy show
// until the copy's context is done; negative values are ignored.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.lockTimeout = d
		}
	}
}

// New creates a Store.
func New(layout paths.Layout, opts ...Option) *Store {
	s := &Store{
		layout:      layout,
		prober:      audio.ID3Prober{},
		logger:      zap.NewNop(),
		maxProbes:   DefaultMaxProbes,
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Copy materializes source inside the show's asset directory and returns the
// destination path.
//
// Copying the same bytes twice returns the same path and writes nothing the
// second time.
func (s *Store) Copy(ctx context.Context, source, show string) (string, error) {
	const op = "copy asset"

	info, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperr.NotFound(op, source, err)
		}
		return "", apperr.IO(op, source, err)
	}
	if !info.Mode().IsRegular() {
		return "", apperr.NotFound(op, source, errors.New("not a regular file"))
	}
	if !IsSupported(source) {
		return "", apperr.UnsupportedFormat(op, source,
			fmt.Errorf("extension %q is not one of %s", filepath.Ext(source), strings.Join(SupportedExtensions(), " ")))
	}
	if err := paths.ValidateShowName(show); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := showlock.Acquire(ctx, s.layout.LockPath(show), s.lockTimeout)
	if err != nil {
		return "", apperr.IO(op, show, err)
	}
	defer func() {
		if err := release(); err != nil {
			s.logger.Warn("failed to release show lock", zap.String("show", show), zap.Error(err))
		}
	}()

	audioDir := s.layout.AudioDir(show)
	if err := ioutils.EnsureDir(audioDir); err != nil {
		return "", apperr.IO(op, audioDir, err)
	}

	dest, existing, err := s.resolveDestination(ctx, source, audioDir)
	if err != nil {
		return "", err
	}
	if existing {
		s.logger.Info("asset already present", zap.String("show", show), zap.String("path", dest))
		return dest, nil
	}
	if filepath.Base(dest) != filepath.Base(source) {
		s.logger.Warn("asset name collision resolved",
			zap.String("show", show),
			zap.String("source", filepath.Base(source)),
			zap.String("stored_as", filepath.Base(dest)))
	}

	s.logger.Info("copying asset", zap.String("show", show), zap.String("source", source), zap.String("dest", dest))
	if err := ioutils.CopyFile(ctx, source, dest); err != nil {
		return "", apperr.IO(op, dest, err)
	}

	ok, err := ioutils.Exists(dest)
	if err != nil {
		return "", apperr.IO(op, dest, err)
	}
	if !ok {
		return "", apperr.IO(op, dest, errors.New("destination missing after copy"))
	}
	return dest, nil
}

// resolveDestination walks name, name_1, name_2, ... and stops at the first
// free slot or the first file with identical content.
func (s *Store) resolveDestination(ctx context.Context, source, dir string) (string, bool, error) {
	base := filepath.Base(source)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for i := 0; i <= s.maxProbes; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		candidate := filepath.Join(dir, name)

		ok, err := ioutils.Exists(candidate)
		if err != nil {
			return "", false, apperr.IO("copy asset", candidate, err)
		}
		if !ok {
			return candidate, false, nil
		}

		same, err := ioutils.SameContent(ctx, source, candidate)
		if err != nil {
			return "", false, apperr.IO("compare asset", candidate, err)
		}
		if same {
			return candidate, true, nil
		}
	}
	return "", false, apperr.Exhausted("copy asset", filepath.Join(dir, base),
		fmt.Errorf("no free name after %d probes", s.maxProbes))
}

// AddToShow copies source and returns a Track for it. The track's filename
// is the source base name; its duration is filled in when the prober knows
// it.
func (s *Store) AddToShow(ctx context.Context, source, show string) (*model.Track, error) {
	dest, err := s.Copy(ctx, source, show)
	if err != nil {
		return nil, err
	}

	track, err := model.NewTrack(filepath.Base(source), dest)
	if err != nil {
		return nil, err
	}

	ms, ok, err := s.prober.ProbeDuration(dest)
	switch {
	case err != nil:
		s.logger.Debug("duration probe failed", zap.String("path", dest), zap.Error(err))
	case ok:
		if err := track.SetDuration(ms); err != nil {
			return nil, err
		}
	}

	s.logger.Info("track created", zap.String("show", show), zap.String("filename", track.Filename()))
	return track, nil
}

// Delete removes an asset file. It returns false, and no error, when the
// file does not exist.
func (s *Store) Delete(assetPath string) (bool, error) {
	err := os.Remove(assetPath)
	switch {
	case err == nil:
		s.logger.Info("asset deleted", zap.String("path", assetPath))
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		s.logger.Warn("asset to delete not found", zap.String("path", assetPath))
		return false, nil
	default:
		return false, apperr.IO("delete asset", assetPath, err)
	}
}
