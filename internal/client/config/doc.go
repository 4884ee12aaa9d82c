// Package config loads runtime configuration for the ledger CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-i int      background sync interval (seconds)
//	-t int      timeout for a single remote call (seconds)
//	-d string   path of the local SQLite database
//	-l string   path of the log file
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be either strings like "30s"
// or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "sync_interval": "30s",
//	  "remote_timeout": "10s",
//	  "database_path": "ledger.db",
//	  "log_file": "ledger.log"
//	}
package config
