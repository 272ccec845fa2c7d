// Package config loads, normalizes, and validates logonorm configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SPORTSGAMEODDS_API_KEY and OPENROUTER_API_KEY. The Config type carries the
// logo root, state directory, catalog and matcher credentials, matching
// thresholds, and the ordered sport category map.
//
// Pipeline code never reads this package directly; it receives the projected
// RunConfig value so thresholds and endpoints are explicit inputs.
package config
