// Package config provides configuration management for modrinth-downloader.
//
// This package handles:
//   - Loading and saving settings from YAML files
//   - Default configuration values
//   - Environment overrides
//   - Construction of the HTTP and catalog clients from settings
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Public Modrinth API, fabric loader, release channel
//	// zip archives written to ~/Downloads
//	// Download hashes verified
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // Malformed file; a missing file yields defaults
//	}
//
// # Example File
//
//	api_url: https://api.modrinth.com/v2
//	game_version: "1.21.8"
//	loader: fabric
//	channel: release
//	output_dir: /srv/minecraft/mods
//	archive_format: tar.xz
//	request_timeout: 30s
//	write_checksum: true
//
// The MODRINTH_DL_API_URL environment variable overrides api_url, which is
// useful for pointing at the staging API.
package config
