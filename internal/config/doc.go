// Package config loads, normalizes, and validates spotwatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for secrets
// such as SPOTWATCH_SMTP_PASSWORD. The Config type centralizes every knob the
// CLI, the analysis service and the watcher need: data and log directories,
// matching thresholds, notification targets and the watch schedule.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
