// Package config loads and merges facet configuration from defaults, the
// YAML config file, environment variables, and CLI flag overrides, in
// that precedence order.
package config
