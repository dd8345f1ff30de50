// Command rehearsal manages rehearsal shows from the command line.
//
// Every command loads the show it touches, applies one change, and saves
// it. Tracks are addressed by 1-based position or by filename:
//
//	rehearsal create "Spring Revue"
//	rehearsal add-track "Spring Revue" overture.mp3 finale.wav
//	rehearsal add-marker "Spring Revue" 1 "Cue 12" 1:23.5
//	rehearsal show "Spring Revue" --markers
//
// Configuration comes from the JSON settings file (see internal/config);
// --data-dir overrides its storage location.
package main
