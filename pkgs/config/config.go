// Package config holds the application version and the display
// preferences persisted by the CLI shell. The parsing and sanitizing core
// owns no configuration of its own.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Version is the application version, used in the fallback window title.
const Version = "1.0.0"

// EnvConfigJSONPath is the env var that overrides the preferences file
// location.
const EnvConfigJSONPath = "MAILVIEWER_CONFIG_JSON"

// Preferences holds the display preferences of the shell.
type Preferences struct {
	// ShowFileName selects the opened file's base name as the window
	// title instead of the application name.
	ShowFileName bool `json:"show_file_name"`

	// ForceCSS renders HTML bodies with the baseline stylesheet.
	ForceCSS bool `json:"force_css"`

	// ShowImages lets the rendering surface load remote images. The
	// sanitizer blocks automatic loads regardless; this only affects the
	// surface's own toggle.
	ShowImages bool `json:"show_images"`
}

// DefaultPreferences returns the out-of-the-box preferences.
func DefaultPreferences() Preferences {
	return Preferences{ShowFileName: true}
}

// DefaultPath returns the preferences file location: the
// EnvConfigJSONPath override if set, otherwise a file under the user
// config directory.
func DefaultPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigJSONPath)); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(dir, "mailviewer", "config.json"), nil
}

// Load reads preferences from a JSON file path. A missing file yields the
// defaults without error; a malformed file is an error.
func Load(path string) (Preferences, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPreferences(), nil
		}
		return DefaultPreferences(), fmt.Errorf("failed to read config file: %w", err)
	}

	var p Preferences
	if err := json.Unmarshal(data, &p); err != nil {
		return DefaultPreferences(), fmt.Errorf("failed to parse config file: %w", err)
	}
	return p, nil
}

// Save writes preferences to a JSON file path, creating the directory if
// needed.
func Save(path string, p Preferences) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
