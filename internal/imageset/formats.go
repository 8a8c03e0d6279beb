package imageset

import (
	"path/filepath"
	"strings"
)

// imageExtensions lists the formats imageio can decode.
var imageExtensions = map[string]struct{}{
	".bmp":  {},
	".gif":  {},
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".tif":  {},
	".tiff": {},
	".webp": {},
}

// IsImageFile reports whether path carries a supported image extension.
// The check is case-insensitive and never reads the file.
func IsImageFile(path string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
