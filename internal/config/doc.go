// Package config manages the wave user configuration file.
//
// The file is YAML and stores remembered painter endpoints (by name) and
// editor preferences: the default endpoint, sync mode, log level, mDNS
// discovery timeout and an optional painter enumeration that replaces the
// built-in list.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/wave/config.yaml or $HOME/.config/wave/config.yaml
//   - macOS: $HOME/.config/wave/config.yaml
//   - Windows: %LOCALAPPDATA%\wave\config.yaml
//
// WAVE_CONFIG overrides the location.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	registry.RememberDevice("studio", "http://10.0.0.5:8080/api", "")
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// Writes go to a temporary file that is renamed into place.
package config
