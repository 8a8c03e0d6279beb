// Package fpcache persists computed image fingerprints in a SQLite database
// inside a cache directory.
//
// Entries are keyed by (algorithm, parameters, path) and remember the content
// digest they were computed from. Callers that pass a digest get a fresh
// computation whenever the stored digest differs; callers that pass none get
// whatever is stored. The directory is locked for the lifetime of an open
// Cache so two runs never interleave writes.
//
// Primary entry points:
//   - Open / Close: scoped access to a cache directory
//   - GetOrCompute: cached lookup with single-flight computation
//   - Stats / Evict: maintenance used by `imagecollect cache`
package fpcache
