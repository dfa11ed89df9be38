// Package filesystem exposes the gateway's file operation tools.
//
// This package is organized into specialized modules:
//   - basic: core file operations (read, write, append, create, delete)
//   - directory: directory operations (list, mkdir, tree)
//   - transfer: file manipulation (copy, move, rename)
//   - metadata: stat and size
//   - search: glob pattern matching
//
// All operations:
//   - Admit every caller-supplied path through the path validator first
//   - Run the file-type policy on content-bearing targets
//   - Return structured results; validator rejections surface as failed
//     results with the validator's message and nothing more
package filesystem
