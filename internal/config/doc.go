// Package config loads, validates, and normalizes sweeparr's TOML
// configuration. Defaults live in defaults.go and validation rules in
// validate.go; Load applies both.
package config
