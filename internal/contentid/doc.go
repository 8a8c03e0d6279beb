// Package contentid computes the content identity of image files: a SHA-256
// digest of the raw bytes, hex encoded.
//
// The fingerprint cache compares digests to decide whether a cached
// fingerprint still describes the file. Digests are streamed in fixed-size
// chunks and honour context cancellation between chunks, so very large
// files can be abandoned mid-read.
package contentid
