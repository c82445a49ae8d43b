// Package config holds viewer settings: built-in defaults, the optional TOML
// config file, and the supported-format tables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// SupportedTypes lists the file extensions the viewer can open.
var SupportedTypes = []string{
	"txt", "md", "log", "csv",
	"html", "htm", "xml", "rtf",
	"eml", "mbox", "msg",
	"pdf", "docx", "odt",
}

// IsSupported checks whether a filename has a supported extension. Unknown
// extensions still open as plain text, so this is advisory.
func IsSupported(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	return slices.Contains(SupportedTypes, ext)
}

// Settings are the tunables of the viewer. TOML keys use snake_case.
type Settings struct {
	// PageBuffer is the number of adjacent pages kept rendered on each side
	// of the visible range in the paginated view.
	PageBuffer int `toml:"page_buffer"`

	// DebounceMs delays search dispatch after a keystroke.
	DebounceMs int `toml:"debounce_ms"`

	// PageCap bounds how many pages fallback PDF extraction processes.
	PageCap int `toml:"page_cap"`

	// PerPageCap bounds extracted text per page in bytes.
	PerPageCap int `toml:"per_page_cap"`

	// Silent suppresses extraction warnings on stderr.
	Silent bool `toml:"silent"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		PageBuffer: 2,
		DebounceMs: 200,
		PageCap:    200,
		PerPageCap: 128 * 1024,
	}
}

// Debounce returns the search debounce as a duration.
func (s Settings) Debounce() time.Duration {
	return time.Duration(s.DebounceMs) * time.Millisecond
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "docview", "config.toml")
}

// Load reads settings from a TOML file, layered over the defaults. A missing
// file is not an error: the defaults apply unchanged.
func Load(path string) (Settings, error) {
	settings := Default()
	if path == "" {
		return settings, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &settings); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if settings.PageBuffer < 0 {
		settings.PageBuffer = 0
	}
	if settings.DebounceMs < 0 {
		settings.DebounceMs = 0
	}
	return settings, nil
}
