// Package main hosts the imagecollect CLI entrypoint and command graph.
//
// The Cobra-based command tree covers duplicate filtering, ratio and height
// organization, fingerprint cache maintenance, and configuration scaffolding.
// It centralizes configuration resolution, cache opening, and structured
// logging setup so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
