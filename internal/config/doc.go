// Package config provides configuration management for the rehearsal tools.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Conversion to the storage layout, logging config, and show defaults
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Data in the platform app-data directory
//	// 2 s autosave debounce, 5 s skips, 100 ms nudges
//
// # Loading from File
//
//	path, _ := config.DefaultPath()
//	settings, err := config.Load(path) // defaults if the file doesn't exist
//
// # Saving Settings
//
//	settings.AutosaveDebounceMS = 500
//	err := settings.Save(path)
package config
