// Package config loads recorder configuration from YAML with ${VAR}
// environment expansion, defaults, and validation.
package config
