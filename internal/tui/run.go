package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/handiism/rehearsal-markers/internal/autosave"
	ioutils "github.com/handiism/rehearsal-markers/internal/io"
	"github.com/handiism/rehearsal-markers/internal/library"
	"github.com/handiism/rehearsal-markers/internal/model"
	"github.com/handiism/rehearsal-markers/internal/repository"
)

// Options configures Run.
type Options struct {
	Repo             *repository.Repository
	Library          *library.Manager
	ShowSettings     model.Settings
	AutosaveInterval time.Duration
	Logger           *zap.Logger
}

// Run starts the TUI application and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	status := &commitStatus{}
	co := autosave.New(opts.Repo,
		autosave.WithInterval(opts.AutosaveInterval),
		autosave.WithLogger(logger),
		autosave.WithOnCommit(func(c autosave.Commit) {
			status.last = &c
			status.at = time.Now()
		}),
	)

	m := NewModel(ctx, Deps{
		Repo:         opts.Repo,
		Library:      opts.Library,
		Autosave:     co,
		ShowSettings: opts.ShowSettings,
		Logger:       logger,
	}, status)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	stop, err := watchShows(opts.Repo.Layout().ShowsDir(), func() { p.Send(ShowsChangedMsg{}) }, logger)
	if err != nil {
		// The editor still works without live refresh.
		logger.Warn("shows directory is not watched", zap.Error(err))
	} else {
		defer stop()
	}

	_, err = p.Run()
	// Anything still pending when the program stops is saved here.
	co.Flush(context.WithoutCancel(ctx))
	return err
}

// watchShows calls notify when a show appears in or disappears from dir.
//
// A new show directory is created before its document is renamed into
// place, so each show directory is watched too and the document's arrival
// triggers another notification.
func watchShows(dir string, notify func(), logger *zap.Logger) (func(), error) {
	if err := ioutils.EnsureDir(dir); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() && !hidden(e.Name()) {
			addShowDir(watcher, filepath.Join(dir, e.Name()), logger)
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if hidden(filepath.Base(event.Name)) {
					continue
				}
				parent := filepath.Dir(event.Name)
				switch {
				case parent == dir:
					if event.Has(fsnotify.Create) {
						if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
							// Added before notifying so a document written in
							// between is seen by this refresh or the next event.
							addShowDir(watcher, event.Name, logger)
						}
					}
					if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
						notify()
					}
				case filepath.Dir(parent) == dir && filepath.Ext(event.Name) == ".json":
					if event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
						notify()
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Debug("watch error", zap.Error(err))
			}
		}
	}()

	return func() {
		watcher.Close()
		<-done
	}, nil
}

func addShowDir(watcher *fsnotify.Watcher, dir string, logger *zap.Logger) {
	if err := watcher.Add(dir); err != nil {
		logger.Debug("show directory not watched", zap.String("dir", dir), zap.Error(err))
	}
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
