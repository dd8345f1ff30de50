// Package audio provides the audio-file services around a show: duration
// probing and playlist generation.
//
// # Duration Probing
//
// ID3Prober reads the ID3v2 TLEN frame, which many encoders write:
//
//	ms, ok, err := audio.ID3Prober{}.ProbeDuration(path)
//
// Decoding audio to measure length is not done here; files without the
// frame simply report no duration.
//
// # Playlist Generation
//
// Render a show in track order:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist(show, filepath.Dir(target))
//	os.WriteFile(target, []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
