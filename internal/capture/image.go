package capture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/coral-mesh/qrscan/internal/safe"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsImageFile reports whether name has an extension the sources can decode.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// maxImageFileSize caps the size of image files read from disk.
const maxImageFileSize = 32 << 20

// LoadImage decodes the image file at path. Symlinked frames are followed;
// anything that is not a regular file is rejected.
func LoadImage(path string) (image.Image, error) {
	data, err := safe.ReadFile(path, &safe.ReadOptions{MaxSize: maxImageFileSize, AllowSymlinks: true})
	if err != nil {
		return nil, err
	}
	return DecodeImage(bytes.NewReader(data))
}

// DecodeImage decodes any registered image format from r.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("decode image: empty %s image", format)
	}
	return img, nil
}
