// Package config manages the persistent user configuration file.
//
// The configuration stores saved INDIGO server endpoints (name, host, port,
// auto-connect flag) and application preferences such as discovery behavior.
// It lives in the platform-conventional location:
//
//   - Linux: $XDG_CONFIG_HOME/indigo/config.yaml or $HOME/.config/indigo/config.yaml
//   - macOS: $HOME/.config/indigo/config.yaml
//   - Windows: %LOCALAPPDATA%\indigo\config.yaml
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.SetServer("indigosky", "192.168.4.16", 7624)
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # File Safety
//
// Saves go through a temporary file followed by an atomic rename, so a crash
// mid-write never leaves a corrupt configuration behind. The global registry
// is loaded once per process; ReloadRegistry picks up external edits.
package config
