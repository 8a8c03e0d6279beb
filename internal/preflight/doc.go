// Package preflight provides readiness checks for the directories
// imagecollect writes to.
//
// Commands that open the fingerprint cache call RunAll after creating the
// configured directories and refuse to start when Err reports a failure.
package preflight
