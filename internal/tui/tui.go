// Package tui provides a Bubble Tea terminal editor for rehearsal shows.
//
// The editor lists stored shows, edits tracks and markers in memory, and
// hands every change to the autosave coordinator. The coordinator is
// ticked from the Bubble Tea event loop and flushed when leaving a show or
// quitting.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/handiism/rehearsal-markers/internal/apperr"
	"github.com/handiism/rehearsal-markers/internal/autosave"
	"github.com/handiism/rehearsal-markers/internal/library"
	"github.com/handiism/rehearsal-markers/internal/model"
	"github.com/handiism/rehearsal-markers/internal/repository"
)

// AutosaveTick is how often the autosave coordinator is polled.
const AutosaveTick = 250 * time.Millisecond

// State represents the current UI state.
type State int

const (
	StateShows State = iota
	StateNewShow
	StateShow
	StateAddTrack
	StateTrack
	StateAddMarker
	StateRenameMarker
)

// inputState reports whether keys go to the text input.
func (s State) inputState() bool {
	return s == StateNewShow || s == StateAddTrack || s == StateAddMarker || s == StateRenameMarker
}

// LogEntry represents a status message in the UI.
type LogEntry struct {
	Message string
	Level   library.ProgressLevel
}

// Deps are the collaborators the editor works with.
type Deps struct {
	Repo         *repository.Repository
	Library      *library.Manager
	Autosave     *autosave.Coordinator
	ShowSettings model.Settings
	Logger       *zap.Logger
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	timeline  progress.Model
	deps      Deps
	ctx       context.Context

	shows      []string
	showCursor int

	show        *model.Show
	trackCursor int

	track        *model.Track
	markerCursor int

	logs   []LogEntry
	commit *commitStatus

	width  int
	height int
}

// commitStatus is shared between copies of the model and written by the
// autosave commit callback, which runs synchronously inside Update.
type commitStatus struct {
	last *autosave.Commit
	at   time.Time
}

// NewModel creates a new TUI model.
func NewModel(ctx context.Context, deps Deps, commit *commitStatus) Model {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = subtitleStyle

	p := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	p.Width = 50

	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if commit == nil {
		commit = &commitStatus{}
	}

	m := Model{
		state:     StateShows,
		textInput: ti,
		spinner:   s,
		timeline:  p,
		deps:      deps,
		ctx:       ctx,
		logs:      make([]LogEntry, 0),
		commit:    commit,
	}
	m.refreshShows()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, tickAutosave())
}

// Message types
type (
	// AutosaveTickMsg drives the autosave coordinator.
	AutosaveTickMsg struct{}

	// ShowsChangedMsg is sent when the shows directory changes on disk.
	ShowsChangedMsg struct{}
)

func tickAutosave() tea.Cmd {
	return tea.Tick(AutosaveTick, func(time.Time) tea.Msg {
		return AutosaveTickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case AutosaveTickMsg:
		m.deps.Autosave.Tick(m.ctx)
		return m, tickAutosave()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ShowsChangedMsg:
		if m.state == StateShows {
			m.refreshShows()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.deps.Autosave.Flush(m.ctx)
			return m, tea.Quit
		}
		if m.state.inputState() {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}

	if m.state.inputState() {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "q" {
		m.deps.Autosave.Flush(m.ctx)
		return m, tea.Quit
	}

	switch m.state {
	case StateShows:
		m.updateShows(key)
	case StateShow:
		m.updateShow(key)
	case StateTrack:
		m.updateTrack(key)
	}
	return m, nil
}

func (m *Model) updateShows(key string) {
	switch key {
	case "up", "k":
		m.showCursor = clamp(m.showCursor-1, len(m.shows))
	case "down", "j":
		m.showCursor = clamp(m.showCursor+1, len(m.shows))
	case "r":
		m.refreshShows()
	case "n":
		m.startInput(StateNewShow, "Show name", "")
	case "enter":
		if len(m.shows) == 0 {
			return
		}
		name := m.shows[m.showCursor]
		show, err := m.deps.Repo.Load(m.ctx, name)
		if err != nil {
			m.log(fmt.Sprintf("Could not open %q: %v", name, err), library.LevelError)
			return
		}
		m.show = show
		m.trackCursor = 0
		m.state = StateShow
	}
}

func (m *Model) updateShow(key string) {
	n := m.show.TrackCount()
	switch key {
	case "up", "k":
		m.trackCursor = clamp(m.trackCursor-1, n)
	case "down", "j":
		m.trackCursor = clamp(m.trackCursor+1, n)
	case "a":
		m.startInput(StateAddTrack, "Path to audio file", "")
	case "x", "delete":
		if n == 0 {
			return
		}
		track, _, err := m.deps.Library.RemoveTrack(m.show, m.trackCursor, false)
		if err != nil {
			m.log(err.Error(), library.LevelError)
			return
		}
		m.trackCursor = clamp(m.trackCursor, m.show.TrackCount())
		m.changed(fmt.Sprintf("Removed %s", track.Filename()))
	case "[":
		if m.show.ReorderTrack(m.trackCursor, m.trackCursor-1) {
			m.trackCursor--
			m.changed("Moved track up")
		}
	case "]":
		if m.show.ReorderTrack(m.trackCursor, m.trackCursor+1) {
			m.trackCursor++
			m.changed("Moved track down")
		}
	case "s":
		m.save()
	case "v":
		m.verify()
	case "p":
		path, err := m.deps.Library.WritePlaylist(m.ctx, m.show, "")
		if err != nil {
			m.log(err.Error(), library.LevelError)
			return
		}
		m.log(fmt.Sprintf("Playlist written to %s", path), library.LevelSuccess)
	case "enter":
		track, ok := m.show.Track(m.trackCursor)
		if !ok {
			return
		}
		m.track = track
		m.markerCursor = 0
		m.state = StateTrack
	case "esc":
		m.deps.Autosave.Flush(m.ctx)
		m.show = nil
		m.state = StateShows
		m.refreshShows()
	}
}

func (m *Model) updateTrack(key string) {
	n := m.track.MarkerCount()
	nudge := int64(m.show.Settings().MarkerNudgeIncrementMS())
	switch key {
	case "up", "k":
		m.markerCursor = clamp(m.markerCursor-1, n)
	case "down", "j":
		m.markerCursor = clamp(m.markerCursor+1, n)
	case "m":
		m.startInput(StateAddMarker, "Name @ time (e.g. Chorus @ 1:23.5)", "")
	case "r":
		if marker, ok := m.track.MarkerAt(m.markerCursor); ok {
			m.startInput(StateRenameMarker, "New name", marker.Name())
		}
	case "x", "delete":
		if marker, ok := m.track.MarkerAt(m.markerCursor); ok {
			m.track.RemoveMarker(marker.Name())
			m.markerCursor = clamp(m.markerCursor, m.track.MarkerCount())
			m.changed(fmt.Sprintf("Deleted marker %s", marker.Name()))
		}
	case "left", "h":
		m.nudge(-nudge)
	case "right", "l":
		m.nudge(nudge)
	case "s":
		m.save()
	case "esc":
		m.track = nil
		m.state = StateShow
	}
}

func (m *Model) nudge(delta int64) {
	marker, ok := m.track.MarkerAt(m.markerCursor)
	if !ok {
		return
	}
	moved, err := m.track.NudgeMarker(marker.Name(), delta)
	if err != nil {
		m.log(err.Error(), library.LevelError)
		return
	}
	m.markerCursor = m.markerIndex(moved.Name())
	m.changed(fmt.Sprintf("%s → %s", moved.Name(), model.FormatTimestamp(moved.TimestampMS())))
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.textInput.Blur()
		m.state = m.parentState()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.textInput.Value())
		if m.submit(value) {
			m.textInput.Blur()
			m.state = m.parentState()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// submit applies the input. It returns false to keep the input open.
func (m *Model) submit(value string) bool {
	switch m.state {
	case StateNewShow:
		show, err := m.deps.Library.CreateShow(m.ctx, value, m.deps.ShowSettings)
		if err != nil {
			m.log(err.Error(), library.LevelError)
			return false
		}
		m.log(fmt.Sprintf("Created %q", show.Name()), library.LevelSuccess)
		m.refreshShows()
		m.show = show
		m.trackCursor = 0
		return true

	case StateAddTrack:
		added, err := m.deps.Library.AddTracks(m.ctx, m.show, []string{unquote(value)})
		if err != nil {
			m.log(err.Error(), library.LevelError)
			return false
		}
		m.trackCursor = m.show.TrackCount() - 1
		m.changed(fmt.Sprintf("Added %s", added[0].Filename()))
		return true

	case StateAddMarker:
		name, at, err := parseMarkerInput(value)
		if err != nil {
			m.log(err.Error(), library.LevelError)
			return false
		}
		if m.track.HasMarkerFold(name) {
			m.log(fmt.Sprintf("Marker %q already exists", name), library.LevelError)
			return false
		}
		marker, err := model.NewMarker(name, at)
		if err == nil {
			err = m.track.AddMarker(marker)
		}
		if err != nil {
			m.log(err.Error(), library.LevelError)
			return false
		}
		m.markerCursor = m.markerIndex(name)
		m.changed(fmt.Sprintf("Added marker %s", marker))
		return true

	case StateRenameMarker:
		old, ok := m.track.MarkerAt(m.markerCursor)
		if !ok {
			return true
		}
		if !model.SameNameFold(old.Name(), value) && m.track.HasMarkerFold(value) {
			m.log(fmt.Sprintf("Marker %q already exists", value), library.LevelError)
			return false
		}
		if _, err := m.track.RenameMarker(old.Name(), value); err != nil {
			m.log(err.Error(), library.LevelError)
			return false
		}
		m.changed(fmt.Sprintf("Renamed %s to %s", old.Name(), value))
		return true
	}
	return true
}

func (m Model) parentState() State {
	switch m.state {
	case StateAddTrack:
		return StateShow
	case StateAddMarker, StateRenameMarker:
		return StateTrack
	case StateNewShow:
		if m.show != nil {
			return StateShow
		}
		return StateShows
	default:
		return m.state
	}
}

func (m *Model) startInput(state State, placeholder, value string) {
	m.state = state
	m.textInput.Placeholder = placeholder
	m.textInput.SetValue(value)
	m.textInput.CursorEnd()
	m.textInput.Focus()
}

// changed records an edit and schedules an autosave.
func (m *Model) changed(message string) {
	m.deps.Autosave.NotifyChanged(m.show)
	m.log(message, library.LevelInfo)
}

func (m *Model) save() {
	m.deps.Autosave.Flush(m.ctx)
	if err := m.deps.Repo.Save(m.ctx, m.show); err != nil {
		m.log(fmt.Sprintf("Save failed: %v", err), library.LevelError)
		return
	}
	m.log(fmt.Sprintf("Saved %q", m.show.Name()), library.LevelSuccess)
}

func (m *Model) verify() {
	results, err := m.deps.Library.Verify(m.ctx, m.show)
	if err != nil {
		m.log(err.Error(), library.LevelError)
		return
	}
	problems := 0
	for _, r := range results {
		if !r.OK() {
			problems++
			m.log(fmt.Sprintf("%s: %s", r.Filename, r.Problem()), library.LevelWarning)
		}
	}
	if problems == 0 {
		m.log(fmt.Sprintf("All %d track(s) OK", len(results)), library.LevelSuccess)
	}
}

func (m *Model) refreshShows() {
	names, err := m.deps.Repo.List()
	if err != nil {
		m.log(err.Error(), library.LevelError)
		return
	}
	m.shows = names
	m.showCursor = clamp(m.showCursor, len(names))
}

func (m *Model) log(message string, level library.ProgressLevel) {
	if level == library.LevelError {
		m.deps.Logger.Warn("editor action failed", zap.String("message", message))
	}
	m.logs = append(m.logs, LogEntry{Message: message, Level: level})
	// Keep only last 5 logs
	if len(m.logs) > 5 {
		m.logs = m.logs[len(m.logs)-5:]
	}
}

func (m Model) markerIndex(name string) int {
	for i, mk := range m.track.Markers() {
		if mk.Name() == name {
			return i
		}
	}
	return 0
}

// parseMarkerInput splits "name @ time".
func parseMarkerInput(s string) (string, int64, error) {
	i := strings.LastIndex(s, "@")
	if i < 0 {
		return "", 0, errors.New(`use "name @ time", e.g. "Chorus @ 1:23.5"`)
	}
	name := strings.TrimSpace(s[:i])
	at, err := model.ParseTimestamp(s[i+1:])
	if err != nil {
		return "", 0, err
	}
	if name == "" {
		return "", 0, apperr.Invalid("add marker", errors.New("marker name cannot be empty"))
	}
	return name, at, nil
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
