// Package imageset turns command-line sources into the ordered list of image
// files the duplicate finder and the organizer operate on.
package imageset
