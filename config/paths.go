package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appDirName = "assistui"

// GetConfigDir is where settings.toml lives: $XDG_CONFIG_HOME/assistui,
// falling back to ~/.config/assistui on every platform.
func GetConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	return filepath.Join(GetHomeDir(), ".config", appDirName)
}

// GetDefaultDataDir holds keybindings.toml and debug.log.
func GetDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(GetHomeDir(), "AppData", "Local")
		}
		return filepath.Join(base, appDirName)
	}

	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	return filepath.Join(GetHomeDir(), ".local", "share", appDirName)
}

func GetSettingsFilePath() string {
	return filepath.Join(GetConfigDir(), "settings.toml")
}

func GetHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	if runtime.GOOS == "windows" {
		return `C:\`
	}
	return "/"
}

// ExpandPath resolves a leading ~/ and $VARS in a user supplied path.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		path = filepath.Join(GetHomeDir(), rest)
	}
	return filepath.Clean(os.ExpandEnv(path))
}

// EnsureDir creates path with user-only permissions.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0700)
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
