// Package config loads and saves the neptune-screen configuration file.
//
// The file is YAML and lives in the platform configuration directory:
//   - Linux: $XDG_CONFIG_HOME/neptune-screen/config.yaml or $HOME/.config/neptune-screen/config.yaml
//   - macOS: $HOME/.config/neptune-screen/config.yaml
//   - Windows: %LOCALAPPDATA%\neptune-screen\config.yaml
//
// A missing file is not an error: Load returns Default(), which matches a
// stock Neptune 4 with Moonraker on localhost. Keys left out of the file
// keep their defaults, so a file may set only what differs.
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	disp, err := display.Open(cfg.DisplayConfig())
//
// Validate collects every problem in one joined error so a broken file can
// be fixed in one pass. Save writes through a temporary file and a rename.
package config
