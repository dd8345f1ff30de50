// Package assets copies external audio files into a show's managed asset
// directory.
//
// # Collision Policy
//
// A copy keeps the source's base name. When a file with that name already
// exists the two are compared by content (size first, then fixed-size
// chunks). Identical content reuses the existing file; different content
// probes "stem_1.ext", "stem_2.ext", ... until a free or identical name is
// found:
//
//	store := assets.New(paths.New(base), assets.WithLogger(logger))
//	dest, err := store.Copy(ctx, "/home/me/song.mp3", "Spring Revue")
//	// first call:  .../audio/song.mp3
//	// same file:   .../audio/song.mp3 (no second copy)
//	// other bytes: .../audio/song_1.mp3
//
// # Errors
//
// Failures carry an apperr kind: NotFound for a missing source,
// UnsupportedFormat for an extension outside the allow-list, IOFailure for
// operating system errors, and ResourceExhausted when probing runs out.
package assets
