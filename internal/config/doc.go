// Package config loads heart's configuration.
//
// # Sources
//
// Load merges three sources, later ones winning:
//
//  1. ~/.config/heart/config.toml (or the path passed with --config)
//  2. a .env file in the same directory as the config file
//  3. HEART_* environment variables
//
// A missing config file or .env file is not an error; defaults are used.
// Variables already present in the process environment take precedence over
// the .env file, and the .env file never modifies the process environment.
//
// # Default Values
//
//   - api_url: https://osu.ppy.sh
//   - log_file: ~/.local/share/heart/heart.log
//   - log_level: info
//   - request_timeout: 10s
//   - poll_interval: 1m
//
// access_token, locale and beatmapset_id have no default. Without a token
// heart runs as a guest and the favourite button stays disabled.
//
// # TOML Format
//
//	api_url = "https://osu.ppy.sh"
//	access_token = "eyJ..."
//	locale = "de"
//	log_file = "~/.local/share/heart/heart.log"
//	log_level = "debug"
//	request_timeout = "10s"
//	poll_interval = "1m"
//	beatmapset_id = 241526
//
// Durations use time.ParseDuration syntax. Every field is optional; blank
// strings and non-positive durations fall back to defaults.
//
// # Environment
//
//	HEART_API_URL  HEART_ACCESS_TOKEN  HEART_LOCALE  HEART_LOG_FILE
//	HEART_LOG_LEVEL  HEART_REQUEST_TIMEOUT  HEART_POLL_INTERVAL
//	HEART_BEATMAPSET_ID
//
// # Path Expansion
//
// A leading ~ is expanded to the home directory and relative paths are made
// absolute, both for the config path and for log_file. ExpandPath is shared
// with the prefs package.
//
// # Error Handling
//
// Load returns errors for unreadable files, TOML syntax errors, malformed
// durations and environment values that do not parse into their field type.
package config
