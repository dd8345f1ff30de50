// Package ioutils provides the file system primitives used by the asset
// store and the show repository.
//
// This package contains functions for:
//   - Exclusive file copying with cleanup of partial output
//   - Atomic whole-file writes (temp file + rename)
//   - Content-identity comparison (size, then fixed-size chunks)
//   - Filename sanitization and directory creation
//
// # File Operations
//
//	// Copy a file; fails if the destination exists
//	err := ioutils.CopyFile(ctx, "/src/take.wav", "/dst/take.wav")
//
//	// Replace a document without exposing a half-written file
//	err := ioutils.WriteFileAtomic(ctx, "/data/shows/Revue/Revue.json", doc)
//
// # Content Identity
//
// SameContent never loads a whole file into memory:
//
//	same, err := ioutils.SameContent(ctx, "/src/take.wav", "/dst/take.wav")
//
// # Filename Sanitization
//
//	safe := ioutils.SanitizeFileName("Revue: Act 1/2") // Returns "Revue_ Act 1_2"
package ioutils
