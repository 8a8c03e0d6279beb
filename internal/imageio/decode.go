package imageio

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads the full image at path. Orientation metadata is ignored so the
// pixels hashed are the pixels stored.
func Decode(fsys afero.Fs, path string) (image.Image, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := imaging.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Dimensions returns the pixel width and height of the image at path without
// decoding pixel data. With exifOrientation set, images whose EXIF
// orientation rotates them by 90 degrees (values 5-8) report their displayed
// size, width and height swapped.
func Dimensions(fsys afero.Fs, path string, exifOrientation bool) (int, int, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("read dimensions %s: %w", path, err)
	}
	width, height := cfg.Width, cfg.Height
	if !exifOrientation {
		return width, height, nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, 0, fmt.Errorf("rewind %s: %w", path, err)
	}
	orientation, err := readOrientation(f)
	if err != nil {
		// Missing or unreadable EXIF leaves the stored size in effect.
		return width, height, nil
	}
	if orientation >= 5 && orientation <= 8 {
		width, height = height, width
	}
	return width, height, nil
}

var errNoOrientation = errors.New("no orientation tag")

func readOrientation(r io.Reader) (int, error) {
	x, err := exif.Decode(r)
	if err != nil {
		return 0, err
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil || tag == nil {
		return 0, errNoOrientation
	}
	return tag.Int(0)
}
