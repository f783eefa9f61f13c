// Package config resolves tilecache's runtime configuration with the usual
// precedence: command-line flag, then TILECACHE_* environment variable,
// then config file, then built-in default.
package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// DefaultDatabasePath returns the XDG-compliant default cache database
// location, used when neither a flag, an env var nor a config file sets one.
func DefaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, "tilecache", "tile-cache.db")
}

// GetString retrieves a string config value with viper's precedence,
// falling back to defaultValue when unset.
func GetString(key, defaultValue string) string {
	if val := viper.GetString(key); val != "" {
		return val
	}
	return defaultValue
}

// GetInt retrieves an int config value, falling back to defaultValue when
// unset (viper returns the zero value, not an error, for a missing key).
func GetInt(key string, defaultValue int) int {
	if val := viper.GetInt(key); val != 0 {
		return val
	}
	return defaultValue
}

// GetBool retrieves a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
