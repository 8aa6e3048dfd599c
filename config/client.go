package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Client holds the terminal client configuration.
type Client struct {
	API APIConfig `toml:"api"`
	Log LogConfig `toml:"log"`
}

// APIConfig locates the todo API.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
}

// LogConfig controls the client log file.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultClient returns the default client configuration.
func DefaultClient() *Client {
	homeDir, _ := os.UserHomeDir()
	return &Client{
		API: APIConfig{
			BaseURL: "http://localhost:5000",
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(homeDir, ".config", "todo-tui", "todo-tui.log"),
		},
	}
}

// DefaultClientPath returns the standard client config location.
func DefaultClientPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(homeDir, ".config", "todo-tui", "config.toml"), nil
}

// LoadClient loads the client configuration from the standard location.
func LoadClient() (*Client, error) {
	path, err := DefaultClientPath()
	if err != nil {
		return nil, err
	}
	return LoadClientFrom(path)
}

// LoadClientFrom loads the client configuration from a specific path.
// A missing file yields the defaults.
func LoadClientFrom(configPath string) (*Client, error) {
	cfg := DefaultClient()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}
	return cfg, nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
