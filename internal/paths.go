package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DataPaths holds the on-disk locations used by the client
type DataPaths struct {
	BaseDir    string // root data directory
	StateDB    string // sqlite client state (auth, consent flags)
	CacheDir   string // profile image cache
	ConfigFile string // optional YAML configuration
}

// DetectDataDir returns the default data directory for the current operating system
func DetectDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library/Application Support/poketrainer"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "poketrainer"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "poketrainer"), nil
	default:
		// XDG on linux and the BSDs
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "poketrainer"), nil
		}
		return filepath.Join(home, ".config", "poketrainer"), nil
	}
}

// GetDataPaths resolves the data paths from customDir, then POKETRAINER_DATA_DIR,
// then the per-OS default
func GetDataPaths(customDir string) (DataPaths, error) {
	base := customDir
	if base == "" {
		base = os.Getenv("POKETRAINER_DATA_DIR")
	}
	if base == "" {
		detected, err := DetectDataDir()
		if err != nil {
			return DataPaths{}, err
		}
		base = detected
	}

	return DataPaths{
		BaseDir:    base,
		StateDB:    filepath.Join(base, "state.db"),
		CacheDir:   filepath.Join(base, "cache"),
		ConfigFile: filepath.Join(base, "config.yaml"),
	}, nil
}

// EnsureDirs creates the base and cache directories
func (dp DataPaths) EnsureDirs() error {
	if err := os.MkdirAll(dp.BaseDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return os.MkdirAll(dp.CacheDir, 0700)
}

// StateExists reports whether the state database has been created
func (dp DataPaths) StateExists() bool {
	_, err := os.Stat(dp.StateDB)
	return err == nil
}
