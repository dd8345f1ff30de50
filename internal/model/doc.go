// Package model defines the show graph edited by the rehearsal tools.
//
// # Show
//
// Show is the root aggregate, identified by name, holding ordered tracks and
// per-show settings:
//
//	show, err := model.NewShow("Spring Revue")
//	fmt.Println(show.Settings().SkipIncrementSeconds()) // 5
//
// # Track
//
// Track references one audio asset and keeps its markers sorted by timestamp:
//
//	track, _ := model.NewTrack("overture.mp3", assetPath)
//	m, _ := model.NewMarker("Cue 12", 83500)
//	err := track.AddMarker(m) // fails if "Cue 12" already exists
//
// # Validation
//
// Every value is built through a constructor (NewShow, NewTrack, NewMarker,
// NewSettings) that rejects invalid input with an apperr.KindInvalidData
// error. Fields are unexported so a constructed value cannot be put into an
// invalid state afterwards.
package model
