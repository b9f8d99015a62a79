// Package config loads runtime configuration for the authctl CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file, named with the --config flag.
//  3. AUTHKEEPER_SERVER_ADDR, AUTHKEEPER_TIMEOUT and AUTHKEEPER_TOKEN.
//  4. Command-line flags, applied by the cli package.
//
// # JSON schema
//
// Durations may be strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "10s"
//	}
package config
