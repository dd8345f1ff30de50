package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/rehearsal-markers/internal/autosave"
	"github.com/handiism/rehearsal-markers/internal/library"
	"github.com/handiism/rehearsal-markers/internal/model"
)

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("♪ Rehearsal Track Markers"))
	b.WriteString("\n")
	b.WriteString(m.viewBreadcrumb())
	b.WriteString("\n\n")

	switch m.state {
	case StateShows:
		b.WriteString(m.viewShows())
	case StateNewShow:
		b.WriteString(m.viewInput("New show:"))
	case StateShow:
		b.WriteString(m.viewShow())
	case StateAddTrack:
		b.WriteString(m.viewInput("Add track:"))
	case StateTrack:
		b.WriteString(m.viewTrack())
	case StateAddMarker:
		b.WriteString(m.viewInput("Add marker:"))
	case StateRenameMarker:
		b.WriteString(m.viewInput("Rename marker:"))
	}

	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	// Footer
	b.WriteString("\n")
	b.WriteString(m.viewSaveStatus())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewBreadcrumb() string {
	parts := []string{"Shows"}
	if m.show != nil {
		parts = append(parts, m.show.Name())
	}
	if m.track != nil {
		parts = append(parts, m.track.Filename())
	}
	return dimStyle.Render(strings.Join(parts, " › "))
}

func (m Model) viewShows() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Shows (%d)", len(m.shows))))
	b.WriteString("\n\n")
	if len(m.shows) == 0 {
		b.WriteString(dimStyle.Render("  No shows yet. Press n to create one."))
		b.WriteString("\n")
		return b.String()
	}
	for i, name := range m.shows {
		b.WriteString(cursorLine(i == m.showCursor, name))
	}
	return b.String()
}

func (m Model) viewShow() string {
	var b strings.Builder

	settings := m.show.Settings()
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("%s: %d track(s), %d marker(s)",
		m.show.Name(), m.show.TrackCount(), m.show.MarkerCount())))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("skip %ds • nudge %dms",
		settings.SkipIncrementSeconds(), settings.MarkerNudgeIncrementMS())))
	b.WriteString("\n\n")

	if m.show.TrackCount() == 0 {
		b.WriteString(dimStyle.Render("  No tracks. Press a to add an audio file."))
		b.WriteString("\n")
		return b.String()
	}
	for i, track := range m.show.Tracks() {
		line := fmt.Sprintf("%2d. %s  %s", i+1, track.Filename(),
			dimStyle.Render(fmt.Sprintf("[%s, %d marker(s)]", durationLabel(track), track.MarkerCount())))
		b.WriteString(cursorLine(i == m.trackCursor, line))
	}
	return b.String()
}

func (m Model) viewTrack() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render(m.track.Filename()))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s • %s", durationLabel(m.track), filepath.Dir(m.track.AssetPath()))))
	b.WriteString("\n\n")

	if m.track.MarkerCount() == 0 {
		b.WriteString(dimStyle.Render("  No markers. Press m to add one."))
		b.WriteString("\n")
		return b.String()
	}

	for i, marker := range m.track.Markers() {
		line := fmt.Sprintf("%s  %s", model.FormatTimestamp(marker.TimestampMS()), marker.Name())
		b.WriteString(cursorLine(i == m.markerCursor, line))
	}

	// Position of the selected marker within the track.
	if d, ok := m.track.Duration(); ok && d > 0 {
		if marker, ok := m.track.MarkerAt(m.markerCursor); ok {
			b.WriteString("\n")
			b.WriteString(m.timeline.ViewAs(min(float64(marker.TimestampMS())/float64(d), 1)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) viewInput(title string) string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewSaveStatus() string {
	if m.deps.Autosave.State() == autosave.Pending {
		return m.spinner.View() + " " + warningStyle.Render("Unsaved changes")
	}
	if m.commit.last == nil {
		return ""
	}
	c := m.commit.last
	at := m.commit.at.Format("15:04:05")
	if c.Err != nil {
		return errorStyle.Render(fmt.Sprintf("✗ Autosave of %q failed at %s: %v", c.Show, at, c.Err))
	}
	return boxStyle.Render(successStyle.Render(fmt.Sprintf("✓ Saved %q at %s", c.Show, at)))
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case library.LevelError:
			style = errorStyle
			prefix = "✗"
		case library.LevelWarning:
			style = warningStyle
			prefix = "!"
		case library.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case library.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateShows:
		return "↑/↓: select • enter: open • n: new show • r: refresh • q: quit"
	case StateShow:
		return "enter: markers • a: add track • x: remove • [/]: reorder • v: verify • p: playlist • s: save • esc: back"
	case StateTrack:
		return "m: add marker • r: rename • x: delete • ←/→: nudge • s: save • esc: back"
	case StateNewShow, StateAddTrack, StateAddMarker, StateRenameMarker:
		return "enter: confirm • esc: cancel"
	}
	return ""
}

func cursorLine(selected bool, text string) string {
	if selected {
		return selectedStyle.Render("▸ "+text) + "\n"
	}
	return "  " + text + "\n"
}

func durationLabel(t *model.Track) string {
	if d, ok := t.Duration(); ok {
		return model.FormatTimestamp(d)
	}
	return "--:--"
}
