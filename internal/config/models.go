package config

import (
	"time"

	"github.com/muurk/neptune-screen/internal/display"
	"github.com/muurk/neptune-screen/internal/moonraker"
	"github.com/muurk/neptune-screen/internal/navigation"
	"github.com/muurk/neptune-screen/internal/printer"
	"github.com/muurk/neptune-screen/internal/protocol"
	"github.com/muurk/neptune-screen/internal/views"
)

// CurrentVersion is the config file format version.
const CurrentVersion = 1

// Config is the whole configuration file.
type Config struct {
	Version    int                     `yaml:"version"`
	Serial     Serial                  `yaml:"serial"`
	Moonraker  Moonraker               `yaml:"moonraker"`
	Display    Display                 `yaml:"display"`
	Extruder   Extruder                `yaml:"extruder"`
	Presets    map[string]views.Preset `yaml:"presets,omitempty"`
	RoutesFile string                  `yaml:"routes_file,omitempty"` // Empty uses the built-in table
	GCodeRoot  string                  `yaml:"gcode_root,omitempty"`  // Local path of the gcodes root
}

// Serial holds the screen UART settings.
type Serial struct {
	Device   string `yaml:"device"`
	BaudRate int    `yaml:"baud_rate"`
}

// Moonraker holds the API server location.
type Moonraker struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	Discover               bool   `yaml:"discover"` // Find the host over mDNS instead of using Host
	DiscoverTimeoutSeconds int    `yaml:"discover_timeout_seconds"`
}

// Display holds loop and link timing.
type Display struct {
	TickIntervalMs int `yaml:"tick_interval_ms"`
	SettleDelayMs  int `yaml:"settle_delay_ms"`
	ReadyPollMs    int `yaml:"ready_poll_ms"`
	QueueSize      int `yaml:"queue_size"`
	BootPage       int `yaml:"boot_page"`
}

// Extruder holds manual extrusion settings.
type Extruder struct {
	MinTemp      float64 `yaml:"min_temp"`
	DefaultWidth int     `yaml:"default_width"` // mm per press
	DefaultSpeed int     `yaml:"default_speed"` // mm/min
}

// Default returns the configuration for a stock Neptune 4.
func Default() *Config {
	presets := make(map[string]views.Preset, len(views.DefaultPresets))
	for name, p := range views.DefaultPresets {
		presets[name] = p
	}

	return &Config{
		Version: CurrentVersion,
		Serial: Serial{
			Device:   display.DefaultDevice,
			BaudRate: display.DefaultBaudRate,
		},
		Moonraker: Moonraker{
			Host:                   "localhost",
			Port:                   moonraker.DefaultPort,
			DiscoverTimeoutSeconds: 5,
		},
		Display: Display{
			TickIntervalMs: int(navigation.DefaultTickInterval / time.Millisecond),
			SettleDelayMs:  int(protocol.DefaultSettleDelay / time.Millisecond),
			ReadyPollMs:    int(navigation.DefaultReadyPollInterval / time.Millisecond),
			QueueSize:      display.DefaultQueueSize,
			BootPage:       navigation.DefaultBootPage,
		},
		Extruder: Extruder{
			MinTemp:      views.DefaultExtruderMinTemp,
			DefaultWidth: views.DefaultExtrudeLength,
			DefaultSpeed: views.DefaultExtrudeSpeed,
		},
		Presets:   presets,
		GCodeRoot: printer.DefaultGCodeRoot,
	}
}

// DisplayConfig returns the serial link settings.
func (c *Config) DisplayConfig() display.Config {
	return display.Config{
		Device:      c.Serial.Device,
		BaudRate:    c.Serial.BaudRate,
		SettleDelay: millis(c.Display.SettleDelayMs),
		QueueSize:   c.Display.QueueSize,
	}
}

// MoonrakerConfig returns the API client settings.
func (c *Config) MoonrakerConfig() moonraker.Config {
	return moonraker.Config{
		Host: c.Moonraker.Host,
		Port: c.Moonraker.Port,
	}
}

// EngineConfig returns the navigation loop settings.
func (c *Config) EngineConfig() navigation.Config {
	return navigation.Config{
		TickInterval:      millis(c.Display.TickIntervalMs),
		ReadyPollInterval: millis(c.Display.ReadyPollMs),
		BootPage:          c.Display.BootPage,
	}
}

// ViewOptions returns the view tuning.
func (c *Config) ViewOptions() views.Options {
	return views.Options{
		Presets:         c.Presets,
		ExtruderMinTemp: c.Extruder.MinTemp,
		ExtrudeLength:   c.Extruder.DefaultWidth,
		ExtrudeSpeed:    c.Extruder.DefaultSpeed,
	}
}

// DiscoverTimeout returns the mDNS scan timeout.
func (c *Config) DiscoverTimeout() time.Duration {
	return time.Duration(c.Moonraker.DiscoverTimeoutSeconds) * time.Second
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
