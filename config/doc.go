// Package config holds the exporter naming conventions and assembly
// defaults, read from YAML files layered over the built in defaults.
package config
