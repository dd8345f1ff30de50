// Package paths derives the on-disk layout of managed shows.
//
// All functions are pure: they compute paths and never touch the
// filesystem.
//
//	<base>/shows/<show>/<show>.json
//	<base>/shows/<show>/audio/<asset files>
//	<base>/shows/.locks/<show>.lock
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"

	"github.com/handiism/rehearsal-markers/internal/apperr"
)

// AppDirName is the directory created under the platform data root.
const AppDirName = "RehearsalTrackMarker"

const (
	showsDirName = "shows"
	audioDirName = "audio"
	locksDirName = ".locks"
	documentExt  = ".json"
)

// Layout resolves paths below a base directory.
type Layout struct {
	base string
}

// New returns a Layout rooted at base.
func New(base string) Layout {
	return Layout{base: filepath.Clean(base)}
}

// Base returns the base directory.
func (l Layout) Base() string {
	return l.base
}

// ShowsDir returns <base>/shows.
func (l Layout) ShowsDir() string {
	return filepath.Join(l.base, showsDirName)
}

// ShowDir returns the root directory of a show.
func (l Layout) ShowDir(name string) string {
	return filepath.Join(l.ShowsDir(), name)
}

// AudioDir returns the asset directory of a show.
func (l Layout) AudioDir(name string) string {
	return filepath.Join(l.ShowDir(name), audioDirName)
}

// DocumentPath returns the metadata file of a show, named after the show.
func (l Layout) DocumentPath(name string) string {
	return filepath.Join(l.ShowDir(name), name+documentExt)
}

// LocksDir returns the directory holding per-show lock files.
func (l Layout) LocksDir() string {
	return filepath.Join(l.ShowsDir(), locksDirName)
}

// LockPath returns the lock file guarding writes to a show.
func (l Layout) LockPath(name string) string {
	return filepath.Join(l.LocksDir(), name+".lock")
}

// AdjacentAudioDir returns the audio directory next to an exported document.
func AdjacentAudioDir(documentPath string) string {
	return filepath.Join(filepath.Dir(documentPath), audioDirName)
}

// DefaultBaseDir returns the platform application-data directory for the app.
//
//   - Windows: %APPDATA%, falling back to ~/AppData/Roaming
//   - macOS: ~/Library/Application Support
//   - others: $XDG_DATA_HOME, falling back to ~/.local/share
func DefaultBaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	var root string
	switch runtime.GOOS {
	case "windows":
		root = os.Getenv("APPDATA")
		if root == "" {
			root = filepath.Join(home, "AppData", "Roaming")
		}
	case "darwin":
		root = filepath.Join(home, "Library", "Application Support")
	default:
		root = os.Getenv("XDG_DATA_HOME")
		if root == "" {
			root = filepath.Join(home, ".local", "share")
		}
	}
	return filepath.Join(root, AppDirName), nil
}

// ValidateShowName rejects names that cannot be used as a single path
// component. Names are otherwise used unchanged.
func ValidateShowName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Invalid("validate show name", errors.New("show name cannot be empty"))
	}
	if name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return apperr.Invalid("validate show name", fmt.Errorf("show name %q cannot start with a dot", name))
	}
	for _, r := range name {
		if r == '/' || r == '\\' {
			return apperr.Invalid("validate show name", fmt.Errorf("show name %q contains a path separator", name))
		}
		if unicode.IsControl(r) {
			return apperr.Invalid("validate show name", fmt.Errorf("show name %q contains a control character", name))
		}
	}
	return nil
}
