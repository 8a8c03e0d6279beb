// Package dedup finds near-duplicate images with a two-pass fingerprint
// search.
//
// The coarse pass fingerprints every image with a cheap average hash and
// keeps only images that share a fingerprint with another image. The precise
// pass re-fingerprints those candidates with a DCT perceptual hash and
// regroups them; the resulting groups are the duplicates. Images never seen
// together by the coarse pass can therefore never be reported together.
//
// Output order is a function of input order alone: fingerprints are computed
// in parallel but stored by position, and grouping walks positions in order.
package dedup
