// Package security implements the admission-control core of the gateway.
//
// This package is organized into specialized pieces:
//   - level: named security levels (strict, moderate, permissive)
//   - policy: the immutable Policy snapshot and its atomic Store
//   - path: PathValidator, the ordered path admission gates
//   - filetype: FileValidator, extension/MIME/category/size policy
//   - mime: static extension, MIME, and category lookup tables
//   - audit: the append-only security event log
//
// Every caller-supplied path passes through PathValidator before any disk
// access; paths it admits may additionally pass through FileValidator for
// content-policy checks. Both validators are pure decision functions per
// call: they read a Policy snapshot, never mutate it, and report outcomes
// as result values rather than errors.
//
// The string-pattern traversal and encoding detection layers are
// defense-in-depth in front of the authoritative containment check; they
// are not a standalone proof of safety.
package security
