// Package config resolves the gateway's layered configuration into an
// immutable security policy.
//
// Four layers merge with fixed precedence, highest wins:
//
//	CLI flags > environment variables > configuration file > defaults
//
// Each field records its winning source for diagnostics. Invalid values
// (unknown enum names, malformed size strings, a file log destination with
// no file path) are collected as resolution errors rather than thrown: the
// resolver always returns a usable, default-backed policy so a bad value
// can never take the service down. Allowed-directory entries are
// canonicalized exactly once, here, so every downstream containment
// comparison is an exact string match.
package config
