package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/handiism/rehearsal-markers/internal/apperr"
	"github.com/handiism/rehearsal-markers/internal/library"
	"github.com/handiism/rehearsal-markers/internal/model"
	"github.com/handiism/rehearsal-markers/internal/showlock"
)

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return 2
	case errors.Is(err, apperr.ErrInvalidData), errors.Is(err, apperr.ErrUnsupportedFormat),
		errors.Is(err, apperr.ErrAlreadyExists):
		return 3
	case errors.Is(err, showlock.ErrTimeout):
		return 4
	default:
		return 1
	}
}

// progressPrinter writes library progress events to w. Verbose events are
// dropped unless verbose is set.
func progressPrinter(w io.Writer, verbose bool) func(library.ProgressEvent) {
	return func(event library.ProgressEvent) {
		if event.Level == library.LevelVerbose && !verbose {
			return
		}

		prefix := ""
		switch event.Level {
		case library.LevelError:
			prefix = "✗ "
		case library.LevelWarning:
			prefix = "! "
		case library.LevelSuccess:
			prefix = "✓ "
		case library.LevelInfo:
			prefix = "› "
		default:
			prefix = "  "
		}

		fmt.Fprintln(w, prefix+event.Message)
	}
}

// resolveTrack finds a track by 1-based position or by filename.
func resolveTrack(show *model.Show, arg string) (int, *model.Track, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if t, ok := show.Track(n - 1); ok {
			return n - 1, t, nil
		}
		return 0, nil, apperr.NotFound("find track", arg,
			fmt.Errorf("show %q has %d track(s)", show.Name(), show.TrackCount()))
	}
	for i, t := range show.Tracks() {
		if t.Filename() == arg {
			return i, t, nil
		}
	}
	return 0, nil, apperr.NotFound("find track", arg, fmt.Errorf("no track %q in show %q", arg, show.Name()))
}

// parsePosition parses a 1-based position.
func parsePosition(arg string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || i < 1 || i > n {
		return 0, apperr.Invalid("parse position", fmt.Errorf("position %q must be between 1 and %d", arg, n))
	}
	return i - 1, nil
}

func durationText(t *model.Track) string {
	if d, ok := t.Duration(); ok {
		return model.FormatTimestamp(d)
	}
	return "-"
}
