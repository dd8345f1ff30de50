package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t       *testing.T
	dataDir string
	config  string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	root := t.TempDir()
	return &cli{
		t:       t,
		dataDir: filepath.Join(root, "data"),
		config:  filepath.Join(root, "config.json"),
	}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", c.config, "--data-dir", c.dataDir}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func writeAudio(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("audio:"+name), 0o644))
	return path
}

func TestShowLifecycle(t *testing.T) {
	c := newCLI(t)
	overture := writeAudio(t, "overture.mp3")
	finale := writeAudio(t, "finale.wav")

	out := c.mustRun("create", "Spring Revue", "--nudge", "250")
	assert.Contains(t, out, `Created show "Spring Revue"`)

	_, err := c.run("create", "Spring Revue")
	require.Error(t, err)
	assert.Equal(t, 3, exitCode(err))

	c.mustRun("add-track", "Spring Revue", overture, finale)
	c.mustRun("add-marker", "Spring Revue", "1", "Intro", "0:05")
	c.mustRun("add-marker", "Spring Revue", "overture.mp3", "Cue 12", "83500ms")

	_, err = c.run("add-marker", "Spring Revue", "1", "INTRO", "0:09")
	require.Error(t, err)
	assert.Equal(t, 3, exitCode(err))

	out = c.mustRun("nudge-marker", "Spring Revue", "1", "Intro")
	assert.Contains(t, out, "Intro (0:05.25)")
	out = c.mustRun("nudge-marker", "Spring Revue", "1", "Intro", "--by", "-10000")
	assert.Contains(t, out, "Intro (0:00.00)")

	c.mustRun("rename-marker", "Spring Revue", "1", "Cue 12", "Chorus")
	c.mustRun("move-track", "Spring Revue", "finale.wav", "1")

	out = c.mustRun("show", "Spring Revue", "--markers")
	assert.Contains(t, out, "Nudge increment: 250ms")
	assert.Contains(t, out, "Chorus")
	assert.Contains(t, out, "1:23.500")
	assert.Less(t, bytes.Index([]byte(out), []byte("finale.wav")), bytes.Index([]byte(out), []byte("overture.mp3")))

	out = c.mustRun("list")
	assert.Contains(t, out, "Spring Revue")

	out = c.mustRun("verify", "Spring Revue")
	assert.Contains(t, out, "ok")

	c.mustRun("remove-marker", "Spring Revue", "2", "Intro")
	_, err = c.run("remove-marker", "Spring Revue", "2", "Intro")
	assert.Equal(t, 2, exitCode(err))

	out = c.mustRun("remove-track", "Spring Revue", "1", "--delete-asset")
	assert.Contains(t, out, "deleted its audio file")

	out = c.mustRun("delete", "Spring Revue")
	assert.Contains(t, out, `Deleted "Spring Revue"`)
	out = c.mustRun("list")
	assert.Contains(t, out, "No shows found")
}

func TestSettingsCommand(t *testing.T) {
	c := newCLI(t)
	c.mustRun("create", "Revue")

	out := c.mustRun("settings", "Revue")
	assert.Contains(t, out, "skip_increment_seconds: 5")

	c.mustRun("settings", "Revue", "--skip", "10")
	out = c.mustRun("settings", "Revue")
	assert.Contains(t, out, "skip_increment_seconds: 10")
	assert.Contains(t, out, "marker_nudge_increment_ms: 100")

	_, err := c.run("settings", "Revue", "--skip", "0")
	assert.Equal(t, 3, exitCode(err))
}

func TestExportImport(t *testing.T) {
	c := newCLI(t)
	c.mustRun("create", "Revue")
	c.mustRun("add-track", "Revue", writeAudio(t, "overture.mp3"))
	c.mustRun("add-marker", "Revue", "1", "Intro", "1:00")

	exported := filepath.Join(t.TempDir(), "revue.json")
	c.mustRun("export", "Revue", exported)

	other := newCLI(t)
	audioDir := filepath.Join(c.dataDir, "shows", "Revue", "audio")
	out := other.mustRun("import", exported, "--assets", audioDir)
	assert.Contains(t, out, "1 copied, 0 missing")

	out = other.mustRun("show", "Revue", "-m")
	assert.Contains(t, out, "Intro")

	_, err := other.run("import", exported, "--assets", audioDir)
	assert.Equal(t, 3, exitCode(err))
	other.mustRun("import", exported, "--assets", audioDir, "--overwrite")
}

func TestVerifyReportsMissingAudio(t *testing.T) {
	c := newCLI(t)
	c.mustRun("create", "Revue")
	c.mustRun("add-track", "Revue", writeAudio(t, "overture.mp3"))
	require.NoError(t, os.Remove(filepath.Join(c.dataDir, "shows", "Revue", "audio", "overture.mp3")))

	out, err := c.run("verify", "Revue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 track has a problem")
	assert.Contains(t, out, "overture.mp3")
}

func TestPlaylistCommand(t *testing.T) {
	c := newCLI(t)
	c.mustRun("create", "Revue")
	c.mustRun("add-track", "Revue", writeAudio(t, "overture.mp3"))

	target := filepath.Join(t.TempDir(), "revue.pls")
	c.mustRun("playlist", "Revue", "--format", "pls", "--output", target)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[playlist]")

	_, err = c.run("playlist", "Revue", "--format", "xspf")
	assert.Error(t, err)
}

func TestMissingShow(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("show", "Nope")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestConfigInit(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("config", "init")
	assert.Contains(t, out, c.config)

	data, err := os.ReadFile(c.config)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"data_dir": "`+c.dataDir+`"`)
	assert.Contains(t, string(data), `"autosave_debounce_ms": 2000`)

	_, err = c.run("config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	c.mustRun("config", "init", "--overwrite")

	out = c.mustRun("config", "validate")
	assert.Contains(t, out, "Configuration OK")
	assert.Contains(t, out, c.dataDir)

	require.NoError(t, os.WriteFile(c.config, []byte(`{"verify_concurrency": 0}`), 0o644))
	_, err = c.run("config", "validate")
	assert.Error(t, err)
}
