// Package config implements the configuration store for the pro1003 HMI client.
//
// Configuration is layered: built-in defaults, then an optional YAML file, then
// HMI_* environment overrides. The merged result is validated before use.
package config
