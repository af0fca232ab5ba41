// Package config loads and validates the subfetch TOML configuration.
//
// Configuration is optional: when no file exists the documented defaults
// apply, so the tool works out of the box. Flags override config values at
// the CLI layer.
package config
