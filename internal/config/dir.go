package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names the per-user configuration directory.
const appName = "shipwright"

// Dir returns the shipwright configuration directory.
//
// Resolution:
//   - $SHIPWRIGHT_CONFIG_HOME if set
//   - $XDG_CONFIG_HOME/shipwright if set (any platform)
//   - %AppData%/shipwright on Windows
//   - ~/.config/shipwright on macOS and Linux
//
// Returns "" when no home directory can be determined.
func Dir() string {
	if dir := os.Getenv("SHIPWRIGHT_CONFIG_HOME"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// UserConfigPath returns the per-user config file, or "" if [Dir] is unknown.
func UserConfigPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}
