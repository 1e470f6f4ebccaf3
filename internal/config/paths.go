package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// GetConfigDir returns QUARTERLOG_HOME or the XDG config directory default
func GetConfigDir() string {
	if home := os.Getenv("QUARTERLOG_HOME"); home != "" {
		return ExpandPath(home)
	}
	return filepath.Join(xdg.ConfigHome, "quarterlog")
}

// GetDBPath returns QUARTERLOG_DB or the XDG data directory default
func GetDBPath() string {
	if dbPath := os.Getenv("QUARTERLOG_DB"); dbPath != "" {
		return ExpandPath(dbPath)
	}
	return filepath.Join(xdg.DataHome, "quarterlog", "quarterlog.db")
}

// GetSettingsPath returns the settings.json location
func GetSettingsPath() string {
	return filepath.Join(GetConfigDir(), "settings.json")
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			if len(path) == 1 {
				return homeDir
			}
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}
