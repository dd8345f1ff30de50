package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/handiism/rehearsal-markers/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp
//   - WPL: XML format, Windows Media Player
//   - ZPL: XML format, Zune/Groove Music
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines for duration/title info.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS

	// FormatWPL creates .wpl files (Windows Media Player).
	FormatWPL

	// FormatZPL creates .zpl files (Zune/Groove Music).
	FormatZPL
)

// ParsePlaylistFormat maps a name such as "m3u" to a format.
func ParsePlaylistFormat(name string) (PlaylistFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "m3u", "":
		return FormatM3U, nil
	case "pls":
		return FormatPLS, nil
	case "wpl":
		return FormatWPL, nil
	case "zpl":
		return FormatZPL, nil
	default:
		return FormatM3U, fmt.Errorf("unknown playlist format %q", name)
	}
}

// Extension returns the file extension for the format, including the dot.
func (f PlaylistFormat) Extension() string {
	switch f {
	case FormatPLS:
		return ".pls"
	case FormatWPL:
		return ".wpl"
	case FormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// PlaylistCreator renders a show's tracks, in show order, as a playlist.
//
// Track paths are written relative to the directory the playlist will be
// saved in, falling back to the absolute asset path when no relative path
// exists (different volume on Windows).
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist(show, filepath.Dir(playlistPath))
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:183,overture
//	// audio/overture.mp3
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// extended only affects M3U output.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist generates playlist content for a show.
func (p *PlaylistCreator) CreatePlaylist(show *model.Show, playlistDir string) string {
	entries := make([]entry, 0, show.TrackCount())
	for _, t := range show.Tracks() {
		entries = append(entries, newEntry(t, playlistDir))
	}

	switch p.format {
	case FormatPLS:
		return p.createPLS(entries)
	case FormatWPL:
		return p.createWPL(show.Name(), entries)
	case FormatZPL:
		return p.createZPL(show.Name(), entries)
	default:
		return p.createM3U(entries)
	}
}

type entry struct {
	path       string
	title      string
	durationMS int64
	known      bool
	markers    []string
}

func newEntry(t *model.Track, dir string) entry {
	path := t.AssetPath()
	if rel, err := filepath.Rel(dir, path); err == nil {
		path = rel
	}
	ms, ok := t.Duration()
	names := make([]string, 0, t.MarkerCount())
	for _, m := range t.Markers() {
		names = append(names, m.Name())
	}
	return entry{
		path:       filepath.ToSlash(path),
		title:      strings.TrimSuffix(t.Filename(), filepath.Ext(t.Filename())),
		durationMS: ms,
		known:      ok,
		markers:    names,
	}
}

// seconds returns the length in whole seconds, or -1 when unknown.
func (e entry) seconds() int64 {
	if !e.known {
		return -1
	}
	return e.durationMS / 1000
}

// createM3U generates an M3U playlist.
//
//	#EXTM3U
//	#EXTINF:183,overture
//	audio/overture.mp3
func (p *PlaylistCreator) createM3U(entries []entry) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, e := range entries {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s\n", e.seconds(), e.title)
		}
		sb.WriteString(e.path + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
//	[playlist]
//	File1=audio/overture.mp3
//	Title1=overture
//	Length1=183
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(entries []entry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, e := range entries {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, e.path)
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, e.title)
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, e.seconds())
	}

	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(entries))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// createWPL generates a Windows Media Player playlist.
func (p *PlaylistCreator) createWPL(title string, entries []entry) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(title))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, e := range entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(e.path))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL generates a Zune/Groove Music playlist with per-track
// duration and marker names in timestamp order, separated by "; ".
func (p *PlaylistCreator) createZPL(title string, entries []entry) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(title))
	sb.WriteString("    <meta name=\"Generator\" content=\"RehearsalTrackMarker\"/>\n")
	fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(entries))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, e := range entries {
		duration := int64(0)
		if e.known {
			duration = e.durationMS
		}
		fmt.Fprintf(&sb, "      <media src=\"%s\" albumTitle=\"%s\" trackTitle=\"%s\" duration=\"%d\" markers=\"%s\"/>\n",
			escapeXML(e.path),
			escapeXML(title),
			escapeXML(e.title),
			duration,
			escapeXML(strings.Join(e.markers, "; ")))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// escapeXML escapes special XML characters in a string.
//
// Replaces: & < > " '
// With:     &amp; &lt; &gt; &quot; &apos;
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
