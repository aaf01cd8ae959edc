package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "neptune-screen"
	configFile = "config.yaml"
)

// Mutex for file writes
var fileMutex sync.Mutex

// GetConfigDir returns the OS-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/neptune-screen or $HOME/.config/neptune-screen
//   - macOS: $HOME/.config/neptune-screen
//   - Windows: %LOCALAPPDATA%\neptune-screen
func GetConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, appName), nil
		}
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(userProfile, "AppData", "Local", appName), nil

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil

	default:
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			return filepath.Join(xdgConfigHome, appName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
}

// GetConfigPath returns the full path to the default configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return GetConfigPath()
}

// Load reads the configuration at path, or at the default location when path
// is empty. A missing file yields Default(). Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	path, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version: %d (expected %d)", cfg.Version, CurrentVersion)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Serial.Device != "", "serial.device must be set")
	check(c.Serial.BaudRate > 0, "serial.baud_rate must be positive, got %d", c.Serial.BaudRate)

	check(c.Moonraker.Discover || c.Moonraker.Host != "", "moonraker.host must be set unless moonraker.discover is enabled")
	check(c.Moonraker.Port > 0 && c.Moonraker.Port <= 65535, "moonraker.port out of range: %d", c.Moonraker.Port)
	check(!c.Moonraker.Discover || c.Moonraker.DiscoverTimeoutSeconds > 0,
		"moonraker.discover_timeout_seconds must be positive, got %d", c.Moonraker.DiscoverTimeoutSeconds)

	check(c.Display.TickIntervalMs > 0, "display.tick_interval_ms must be positive, got %d", c.Display.TickIntervalMs)
	check(c.Display.SettleDelayMs >= 0, "display.settle_delay_ms must not be negative, got %d", c.Display.SettleDelayMs)
	check(c.Display.ReadyPollMs > 0, "display.ready_poll_ms must be positive, got %d", c.Display.ReadyPollMs)
	check(c.Display.QueueSize > 0, "display.queue_size must be positive, got %d", c.Display.QueueSize)
	check(c.Display.BootPage >= 0 && c.Display.BootPage <= 255, "display.boot_page out of range: %d", c.Display.BootPage)

	check(c.Extruder.MinTemp > 0, "extruder.min_temp must be positive, got %v", c.Extruder.MinTemp)
	check(c.Extruder.DefaultWidth > 0, "extruder.default_width must be positive, got %d", c.Extruder.DefaultWidth)
	check(c.Extruder.DefaultSpeed > 0, "extruder.default_speed must be positive, got %d", c.Extruder.DefaultSpeed)

	for name, p := range c.Presets {
		check(p.Extruder >= 0 && p.Bed >= 0, "presets.%s: temperatures must not be negative", name)
	}

	return errors.Join(errs...)
}

// Save writes the configuration to path, or to the default location when path
// is empty. The write goes to a temporary file that is renamed into place.
func (c *Config) Save(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	path, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# neptune-screen configuration
#
# Flags given to "neptune-screen run" override these values.
#
# Location: ` + path + `

`)
	data = append(header, data...)

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

// CreateDefault writes Default() to path. An existing file is left alone.
func CreateDefault(path string) (string, error) {
	path, err := resolvePath(path)
	if err != nil {
		return "", fmt.Errorf("failed to get config path: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config file already exists: %s", path)
	}

	return path, Default().Save(path)
}
