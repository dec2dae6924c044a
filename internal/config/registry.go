package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "powerpack"
	configFile = "config.yaml"
)

// ConfigDirEnvVar overrides the configuration directory
const ConfigDirEnvVar = "POWERPACK_CONFIG_DIR"

var (
	registryOnce sync.Once
	registry     *Registry
	registryErr  error

	fileMutex sync.Mutex
)

// GetConfigDir returns the configuration directory:
//   - $POWERPACK_CONFIG_DIR when set
//   - Windows: %LOCALAPPDATA%\powerpack
//   - elsewhere: $XDG_CONFIG_HOME/powerpack or $HOME/.config/powerpack
//
// macOS uses ~/.config rather than ~/Library so the file is easy to find
// next to other CLI configs.
func GetConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnvVar); dir != "" {
		return dir, nil
	}

	if runtime.GOOS == "windows" {
		dir, err := os.UserCacheDir() // %LOCALAPPDATA%
		if err != nil {
			return "", fmt.Errorf("cannot determine local app data directory: %w", err)
		}
		return filepath.Join(dir, appName), nil
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" && runtime.GOOS != "darwin" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// LoadRegistry loads the registry from the default config path once per
// process. Later calls return the same instance.
func LoadRegistry() (*Registry, error) {
	registryOnce.Do(func() {
		path, err := GetConfigPath()
		if err != nil {
			registryErr = fmt.Errorf("failed to get config path: %w", err)
			return
		}
		registry, registryErr = LoadRegistryFile(path)
	})
	return registry, registryErr
}

// LoadRegistryFile reads a registry from path.
// A missing file yields a new default registry.
func LoadRegistryFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var r Registry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if r.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version: %d (expected %d)", r.Version, CurrentVersion)
	}
	if r.Instances == nil {
		r.Instances = make(map[string]*Instance)
	}
	if r.Preferences == nil {
		r.Preferences = defaultPreferences()
	}
	return &r, nil
}

// Save saves the registry to the default config path.
func (r *Registry) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return r.SaveFile(configPath)
}

// SaveFile writes the registry to path, creating its directory with
// user-only permissions. The write goes through a temp file and a rename.
func (r *Registry) SaveFile(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Admin Power Pack configuration
#
# Security Note: API client secrets are NEVER stored in this file.
# Set POWERPACK_CLIENT_SECRET or enter the secret when prompted.
#
# Location: ` + path + `

`)
	data = append(header, data...)

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

// CreateDefaultConfig writes a default configuration file with an example
// instance. It refuses to overwrite an existing file.
func CreateDefaultConfig() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(configPath); err == nil {
		return configPath, fmt.Errorf("config file already exists: %s", configPath)
	}

	r := NewRegistry()
	r.SetInstance("example", "https://example.cloud.looker.com:19999", "replace-with-client-id")
	return configPath, r.SaveFile(configPath)
}
