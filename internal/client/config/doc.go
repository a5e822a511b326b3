// Package config loads runtime configuration for the userdir CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string       address:port of the gRPC endpoint
//	-t int          per-call timeout (seconds)
//	-token string   access token from a previous login
//	-refresh string refresh token from a previous login
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "10s"
//	}
//
// Tokens are never read from the JSON file.
package config
