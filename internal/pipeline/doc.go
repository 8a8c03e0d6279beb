// Package pipeline holds the error markers and context annotations shared by
// the duplicate finder, the organizers, and the CLI.
//
// Errors are tagged with one of the sentinel markers through Wrap so callers
// can classify failures with errors.Is without parsing messages. Stage and run
// identifiers travel on the context and are picked up by the logging package.
package pipeline
