// Package config holds the initialization-time settings for graphs.
//
// Configuration values exist only while a graph is being built. Strings that
// name runtime collaborators (Observer, Checkpoint.Store) are resolved through
// registries at build time, which keeps these types serializable in JSON,
// YAML and TOML files.
//
// # Merging
//
// Every type supports layered configuration through Merge: a loaded config
// is merged over the defaults and only non-zero source fields win.
//
//	cfg := config.DefaultGraphConfig("router")
//	var loaded config.GraphConfig
//	json.Unmarshal(data, &loaded)
//	cfg.Merge(&loaded)
//
// Strings merge when non-empty, integers and durations when greater than
// zero, and booleans whose default is false merge only when true.
package config
