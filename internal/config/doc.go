// Package config loads, normalizes, and validates kbmatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the KBMATCH_USER_AGENT environment
// fallback. The Config type centralizes every knob the CLI and the
// reconciliation engine need: store locations, the SPARQL endpoint and its
// pacing, banned identifiers, and the per-run processing switches.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
