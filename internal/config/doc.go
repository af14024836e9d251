// Package config handles configuration loading for Kumeo client tooling.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	socket:
//	  path: "${KUMEO_SOCKET}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	socket:
//	  timeout: "30s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Runtime socket:
//
//	socket:
//	  path: "/run/kumeo/runtime.sock"
//	  timeout: "30s"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load configuration from a specific path:
//
//	cfg, err := config.Load("/etc/kumeo/client.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Or start from the defaults:
//
//	cfg := config.Default()
package config
