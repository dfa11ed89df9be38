// Package main is the entry point for the fsgate server.
//
// fsgate mediates filesystem access behind a configurable security policy:
// every caller path passes ordered admission gates (traversal scan,
// canonicalization, encoding checks, directory containment, symlink
// resolution) and an optional file-type policy before any disk operation
// runs.
//
// The server exposes:
//   - REST API for tool execution and service discovery
//   - Security event log and policy inspection tools
//   - Hot policy reload without restart
//   - Prometheus metrics, rate limiting, and CORS
//
// Configuration merges, highest precedence last:
//   - Defaults
//   - Configuration file (--config, .json/.yaml/.toml)
//   - FSGATE_* environment variables
//   - CLI flags
//
// Usage:
//
//	# Production mode
//	./server --allowed-dirs /srv/data --security-level strict
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
