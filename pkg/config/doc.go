// Package config defines the service configuration tree and its loading
// pipeline: YAML file, defaults, environment overrides, validation, and
// optional hot reload of tunable values via file watching.
package config
