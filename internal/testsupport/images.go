package testsupport

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/spf13/afero"
)

// Gradient returns a left-to-right grayscale ramp.
func Gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / max(w-1, 1))
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 0xff})
		}
	}
	return img
}

// ReverseGradient returns a right-to-left grayscale ramp.
func ReverseGradient(w, h int) *image.NRGBA {
	img := Gradient(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w/2; x++ {
			left, right := img.NRGBAAt(x, y), img.NRGBAAt(w-1-x, y)
			img.SetNRGBA(x, y, right)
			img.SetNRGBA(w-1-x, y, left)
		}
	}
	return img
}

// Checker returns a black and white checkerboard with square cells.
func Checker(w, h, cell int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{A: 0xff}
			if (x/cell+y/cell)%2 == 0 {
				c = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(t testing.TB, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// WritePNG encodes img as PNG at path on fsys.
func WritePNG(t testing.TB, fsys afero.Fs, path string, img image.Image) {
	t.Helper()
	WriteFile(t, fsys, path, EncodePNG(t, img))
}

// WriteJPEG encodes img as JPEG at path on fsys. A positive orientation adds
// an EXIF segment carrying that orientation value.
func WriteJPEG(t testing.TB, fsys afero.Fs, path string, img image.Image, orientation int) {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	data := buf.Bytes()
	if orientation > 0 {
		// Splice APP1 directly after the SOI marker.
		out := make([]byte, 0, len(data)+64)
		out = append(out, data[:2]...)
		out = append(out, exifSegment(uint16(orientation))...)
		out = append(out, data[2:]...)
		data = out
	}
	WriteFile(t, fsys, path, data)
}

// exifSegment builds a big-endian APP1 segment holding a single IFD0
// Orientation entry.
func exifSegment(orientation uint16) []byte {
	var tiff bytes.Buffer
	tiff.WriteString("MM")
	_ = binary.Write(&tiff, binary.BigEndian, uint16(0x2a))
	_ = binary.Write(&tiff, binary.BigEndian, uint32(8))
	_ = binary.Write(&tiff, binary.BigEndian, uint16(1))      // entry count
	_ = binary.Write(&tiff, binary.BigEndian, uint16(0x0112)) // Orientation
	_ = binary.Write(&tiff, binary.BigEndian, uint16(3))      // SHORT
	_ = binary.Write(&tiff, binary.BigEndian, uint32(1))
	_ = binary.Write(&tiff, binary.BigEndian, orientation)
	_ = binary.Write(&tiff, binary.BigEndian, uint16(0))
	_ = binary.Write(&tiff, binary.BigEndian, uint32(0)) // no next IFD

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	segment := []byte{0xff, 0xe1, 0, 0}
	binary.BigEndian.PutUint16(segment[2:], uint16(len(payload)+2))
	return append(segment, payload...)
}
