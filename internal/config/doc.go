// Package config provides user configuration management for powerpack.
//
// This package manages a YAML configuration file holding the platform
// instances the operator administers (base URL and API client ID) and
// application preferences such as the request timeout and the host bridge
// address. The configuration follows OS-specific conventions for storage
// location.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/powerpack/config.yaml or $HOME/.config/powerpack/config.yaml
//   - macOS: $HOME/.config/powerpack/config.yaml
//   - Windows: %LOCALAPPDATA%\powerpack\config.yaml
//
// # Security
//
// API client secrets are NEVER stored. ReadSecret takes the secret from
// POWERPACK_CLIENT_SECRET or prompts for it on the terminal.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	target, err := registry.Resolve(config.Overrides{Instance: "prod"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	secret, err := config.ReadSecret(target.ClientID)
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
