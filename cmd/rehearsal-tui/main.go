package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/handiism/rehearsal-markers/internal/assets"
	"github.com/handiism/rehearsal-markers/internal/config"
	"github.com/handiism/rehearsal-markers/internal/library"
	"github.com/handiism/rehearsal-markers/internal/logging"
	"github.com/handiism/rehearsal-markers/internal/repository"
	"github.com/handiism/rehearsal-markers/internal/tui"
)

func main() {
	var (
		configFlag  = flag.String("config", "", "Path to config file")
		dataDirFlag = flag.String("data-dir", "", "Data directory (overrides config)")
	)
	flag.Parse()

	if err := run(*configFlag, *dataDirFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, dataDir string) error {
	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		configPath = p
	}
	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dataDir != "" {
		settings.DataDir = dataDir
	}

	layout, err := settings.Layout()
	if err != nil {
		return err
	}
	showSettings, err := settings.ShowSettings()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs only go to the file.
	logger, err := logging.New(settings.Logging(layout, false))
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo := repository.New(layout,
		repository.WithLogger(logger.Named("repository")),
		repository.WithLockTimeout(settings.LockTimeout()),
	)
	store := assets.New(layout,
		assets.WithLogger(logger.Named("assets")),
		assets.WithLockTimeout(settings.LockTimeout()),
	)
	lib := library.NewManager(repo, store,
		library.WithLogger(logger.Named("library")),
		library.WithConcurrency(settings.VerifyConcurrency),
		library.WithPlaylist(settings.Playlist(), settings.M3UExtended),
	)

	logger.Info("editor starting", zap.String("data_dir", layout.Base()))
	return tui.Run(ctx, tui.Options{
		Repo:             repo,
		Library:          lib,
		ShowSettings:     showSettings,
		AutosaveInterval: settings.AutosaveInterval(),
		Logger:           logger.Named("tui"),
	})
}
