package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "imgdrop"

// Paths holds the per-user locations imgdrop reads and writes
type Paths struct {
	ConfigPath string // config.yaml
	StateDir   string // logs
	DropDir    string // default watched drop folder
}

// New resolves XDG-compliant paths, with APPDATA on Windows
func New() (*Paths, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config path: %w", err)
	}
	stateDir, err := getStateDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine state directory: %w", err)
	}

	return &Paths{
		ConfigPath: configPath,
		StateDir:   stateDir,
		DropDir:    filepath.Join(stateDir, "drop"),
	}, nil
}

func getConfigPath() (string, error) {
	// Check XDG_CONFIG_HOME first (Unix-like systems)
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.yaml"), nil
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appName, "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName, "config.yaml"), nil
}

func getStateDir() (string, error) {
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		return filepath.Join(stateHome, appName), nil
	}

	if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
		return filepath.Join(localAppData, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "state", appName), nil
}

// Initialize creates the state directory
func (p *Paths) Initialize() error {
	if err := os.MkdirAll(p.StateDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.StateDir, err)
	}
	return nil
}

// LogPath returns the path of the log file
func (p *Paths) LogPath() string {
	return filepath.Join(p.StateDir, appName+".log")
}

// ConfigDir returns the directory holding the config file
func (p *Paths) ConfigDir() string {
	return filepath.Dir(p.ConfigPath)
}
