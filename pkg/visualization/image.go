package visualization

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedFormat is returned for image files the viewer cannot open.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ImageExtensions lists the file types accepted by LoadImage.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp"}

// IsImageFile reports whether path has one of ImageExtensions.
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadImage decodes a PNG, JPEG or BMP file.
func LoadImage(path string) (image.Image, error) {
	if !IsImageFile(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	return img, nil
}

// SaveImage encodes img to path, choosing the format from the extension.
// Missing parent directories are created.
func SaveImage(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(90)); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}

// Scale resizes img by scale on both axes, which keeps the aspect ratio.
// The result is at least one pixel in each direction.
func Scale(img image.Image, scale float64) (image.Image, error) {
	if !(scale > 0) {
		return nil, fmt.Errorf("scale must be positive, got %g", scale)
	}

	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) * scale))
	h := int(math.Round(float64(b.Dy()) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if w == b.Dx() && h == b.Dy() {
		return img, nil
	}
	return imaging.Resize(img, w, h, imaging.Linear), nil
}

// FieldImage renders arbitrary values as a grayscale image, stretching the
// value range onto 0..255. A constant field renders black.
func FieldImage(values []float64, width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	if len(values) == 0 {
		return img
	}

	minVal, maxVal := values[0], values[0]
	for _, v := range values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	span := maxVal - minVal

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			if idx >= len(values) || span <= 0 {
				continue
			}
			grayVal := uint8((values[idx] - minVal) / span * 255)
			img.SetGray(x, y, color.Gray{Y: grayVal})
		}
	}
	return img
}
