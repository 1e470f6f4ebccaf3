package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults applied when settings.json omits a value
const (
	DefaultSliceMinutes = 15
	DefaultGraceSeconds = 600
	DefaultMaxLogFiles  = 1000
	DefaultServerHost   = "localhost"
	DefaultServerPort   = 23234
)

// Settings represents the structure of settings.json
type Settings struct {
	DBPath        string `json:"db_path,omitempty"`
	SliceMinutes  *int   `json:"slice_minutes,omitempty"`
	GraceSeconds  *int   `json:"grace_seconds,omitempty"`
	Debug         *bool  `json:"debug,omitempty"`
	MaxLogFiles   *int   `json:"max_log_files,omitempty"`
	Notifications *bool  `json:"notifications,omitempty"`
	ServerHost    string `json:"server_host,omitempty"`
	ServerPort    *int   `json:"server_port,omitempty"`
}

// LoadSettings loads settings from $QUARTERLOG_HOME/settings.json (or the
// XDG config directory if not set). Returns empty Settings if the file
// doesn't exist (not an error). Environment variables override file values.
func LoadSettings() (*Settings, error) {
	path := GetSettingsPath()
	settings := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
		// Not an error, use defaults
	} else {
		if err := json.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("invalid settings.json: %w", err)
		}
	}

	// Expand DBPath if it starts with ~
	if settings.DBPath != "" {
		settings.DBPath = ExpandPath(settings.DBPath)
	}

	applyEnvOverrides(settings)

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

// applyEnvOverrides lets QUARTERLOG_* environment variables win over the file
func applyEnvOverrides(settings *Settings) {
	if dbPath := os.Getenv("QUARTERLOG_DB"); dbPath != "" {
		settings.DBPath = ExpandPath(dbPath)
	}
	if v := os.Getenv("QUARTERLOG_SLICE_MINUTES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			settings.SliceMinutes = &parsed
		}
	}
	if v := os.Getenv("QUARTERLOG_GRACE_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			settings.GraceSeconds = &parsed
		}
	}
}

// Validate checks for configuration errors
func (s *Settings) Validate() error {
	if s.SliceMinutes != nil && *s.SliceMinutes <= 0 {
		return fmt.Errorf("slice_minutes must be positive, got %d", *s.SliceMinutes)
	}
	if s.GraceSeconds != nil && *s.GraceSeconds <= 0 {
		return fmt.Errorf("grace_seconds must be positive, got %d", *s.GraceSeconds)
	}
	if s.ServerPort != nil && (*s.ServerPort < 1 || *s.ServerPort > 65535) {
		return fmt.Errorf("server_port must be in 1-65535, got %d", *s.ServerPort)
	}
	return nil
}

// SaveSettings saves settings to $QUARTERLOG_HOME/settings.json
func SaveSettings(settings *Settings) error {
	path := GetSettingsPath()

	if err := os.MkdirAll(GetConfigDir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// ResolveDBPath returns the configured database path or the default
func (s *Settings) ResolveDBPath() string {
	if s.DBPath != "" {
		return s.DBPath
	}
	return GetDBPath()
}

// SliceLength returns the interval slice length as a duration
func (s *Settings) SliceLength() time.Duration {
	minutes := DefaultSliceMinutes
	if s.SliceMinutes != nil {
		minutes = *s.SliceMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// GraceWindow returns the auto-away grace window as a duration
func (s *Settings) GraceWindow() time.Duration {
	seconds := DefaultGraceSeconds
	if s.GraceSeconds != nil {
		seconds = *s.GraceSeconds
	}
	return time.Duration(seconds) * time.Second
}

// NotificationsEnabled reports whether desktop notifications are on.
// Defaults to true.
func (s *Settings) NotificationsEnabled() bool {
	if s.Notifications != nil {
		return *s.Notifications
	}
	return true
}

// LogFileLimit returns the log rotation limit with default applied
func (s *Settings) LogFileLimit() int {
	if s.MaxLogFiles != nil {
		return *s.MaxLogFiles
	}
	return DefaultMaxLogFiles
}

// ResolveServerHost returns the SSH server host with default applied
func (s *Settings) ResolveServerHost() string {
	if s.ServerHost != "" {
		return s.ServerHost
	}
	return DefaultServerHost
}

// ResolveServerPort returns the SSH server port with default applied
func (s *Settings) ResolveServerPort() int {
	if s.ServerPort != nil {
		return *s.ServerPort
	}
	return DefaultServerPort
}
