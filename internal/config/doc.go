// Package config defines configuration structures for the siphon CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (SIPHON_ prefix, .env file honored)
//   - YAML configuration file
//
// Later sources win: defaults, then file, then environment, then flags.
// The source location and destination directory are command arguments,
// not configuration.
//
// # Structure
//
//	type Config struct {
//	    Workers      int
//	    MaxGroupSize int64
//	    PerObject    bool
//	    Backend      string
//	    Progress     bool
//	    LogLevel     string
//	}
package config
