// Package imageio decodes images and reads their dimensions from any afero
// filesystem.
//
// Importing it registers decoders for JPEG, PNG, GIF, BMP, TIFF and WebP.
package imageio
