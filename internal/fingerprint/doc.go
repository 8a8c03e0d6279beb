// Package fingerprint implements the two perceptual hashes used to find
// duplicate images and binds them to the persistent cache.
//
// AverageHash is cheap and coarse; PerceptualHash (a DCT hash) is costlier
// and is only run on images the coarse pass already grouped. Both produce a
// Fingerprint string whose equality is the duplicate criterion; there is no
// distance or threshold.
package fingerprint
