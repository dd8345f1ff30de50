package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/handiism/rehearsal-markers/internal/assets"
	"github.com/handiism/rehearsal-markers/internal/config"
	"github.com/handiism/rehearsal-markers/internal/library"
	"github.com/handiism/rehearsal-markers/internal/logging"
	"github.com/handiism/rehearsal-markers/internal/paths"
	"github.com/handiism/rehearsal-markers/internal/repository"
)

type commandContext struct {
	configFlag  *string
	dataDirFlag *string
	verbose     *bool

	once     sync.Once
	err      error
	settings *config.Settings
	logger   *zap.Logger
	layout   paths.Layout
	repo     *repository.Repository
	store    *assets.Store
}

func newCommandContext(configFlag, dataDirFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		dataDirFlag: dataDirFlag,
		verbose:     verbose,
	}
}

// ensure loads configuration and builds the storage stack once per run.
func (c *commandContext) ensure() error {
	c.once.Do(func() {
		path, err := c.configPath()
		if err != nil {
			c.err = err
			return
		}
		settings, err := config.Load(path)
		if err != nil {
			c.err = fmt.Errorf("load config: %w", err)
			return
		}
		if dir := strings.TrimSpace(*c.dataDirFlag); dir != "" {
			settings.DataDir = dir
		}
		if *c.verbose {
			settings.LogLevel = "debug"
		}

		layout, err := settings.Layout()
		if err != nil {
			c.err = err
			return
		}
		logger, err := logging.New(settings.Logging(layout, *c.verbose))
		if err != nil {
			c.err = fmt.Errorf("init logging: %w", err)
			return
		}

		c.settings = settings
		c.layout = layout
		c.logger = logger
		c.repo = repository.New(layout,
			repository.WithLogger(logger.Named("repository")),
			repository.WithLockTimeout(settings.LockTimeout()),
		)
		c.store = assets.New(layout,
			assets.WithLogger(logger.Named("assets")),
			assets.WithLockTimeout(settings.LockTimeout()),
		)
	})
	return c.err
}

// configPath returns --config, or the default settings location.
func (c *commandContext) configPath() (string, error) {
	if path := strings.TrimSpace(*c.configFlag); path != "" {
		return path, nil
	}
	return config.DefaultPath()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// library builds a manager over the shared repository and store. Progress
// events are printed by onProgress.
func (c *commandContext) library(onProgress func(library.ProgressEvent), opts ...library.Option) *library.Manager {
	base := []library.Option{
		library.WithLogger(c.logger.Named("library")),
		library.WithConcurrency(c.settings.VerifyConcurrency),
		library.WithPlaylist(c.settings.Playlist(), c.settings.M3UExtended),
		library.WithProgress(onProgress),
	}
	return library.NewManager(c.repo, c.store, append(base, opts...)...)
}

func (c *commandContext) close() {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}
