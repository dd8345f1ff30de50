// Package library implements the multi-step workflows of the rehearsal
// tools on top of the repository and the asset store.
//
// # Workflows
//
//   - CreateShow: validate the name, refuse duplicates, save an empty show
//   - AddTracks: copy audio files into a show, one after another
//   - ImportShow: decode an exported document, then copy its assets into
//     managed storage and save
//   - RemoveTrack: drop a track and optionally its unreferenced asset
//   - Verify: check every asset concurrently (read only)
//   - WritePlaylist: render a show as M3U, PLS, WPL, or ZPL
//
// # Progress Reporting
//
// Long operations report through a callback:
//
//	mgr := library.NewManager(repo, store, library.WithProgress(func(e library.ProgressEvent) {
//	    fmt.Println(e.Message)
//	}))
package library
