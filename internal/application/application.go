// Package application holds process-wide identity: the application name and
// the directories cookbook reads its config from and keeps its data in.
package application

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// AppName is the application name used for directories and identification
const AppName = "cookbook"

// HomeEnv overrides every directory below with a single root.
const HomeEnv = "COOKBOOK_HOME"

// Dirs are the locations cookbook uses on this machine.
type Dirs struct {
	// Config holds config.yaml
	Config string

	// Data holds the server database
	Data string
}

var directories = sync.OnceValues(func() (Dirs, error) {
	return resolve(runtime.GOOS, os.Getenv, os.UserConfigDir, os.UserHomeDir)
})

// Directories returns the config and data directories. The result is
// computed once per process.
func Directories() (Dirs, error) {
	return directories()
}

// GetApplicationDirectory returns the cookbook configuration directory path.
// Linux: $XDG_CONFIG_HOME/cookbook or ~/.config/cookbook
// macOS: ~/Library/Application Support/cookbook
// Windows: %AppData%\cookbook
func GetApplicationDirectory() (string, error) {
	d, err := Directories()
	return d.Config, err
}

// DataDirectory returns where the server database lives.
// Linux: $XDG_DATA_HOME/cookbook or ~/.local/share/cookbook; elsewhere the
// config directory.
func DataDirectory() (string, error) {
	d, err := Directories()
	return d.Data, err
}

// ConfigFile returns the default config file path.
func ConfigFile() (string, error) {
	dir, err := GetApplicationDirectory()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.yaml"), nil
}

func resolve(goos string, getenv func(string) string, configDir, homeDir func() (string, error)) (Dirs, error) {
	if home := getenv(HomeEnv); home != "" {
		return Dirs{Config: home, Data: filepath.Join(home, "data")}, nil
	}

	base, err := configDir()
	if err != nil {
		return Dirs{}, fmt.Errorf("failed to get config directory: %w", err)
	}

	d := Dirs{Config: filepath.Join(base, AppName), Data: filepath.Join(base, AppName)}

	if goos == "windows" || goos == "darwin" {
		return d, nil
	}

	if xdg := getenv("XDG_DATA_HOME"); xdg != "" {
		d.Data = filepath.Join(xdg, AppName)
	} else if home, err := homeDir(); err == nil {
		d.Data = filepath.Join(home, ".local", "share", AppName)
	}

	return d, nil
}
