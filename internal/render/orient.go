// Package render selects, decodes and fits remote images to a fixed-size
// display surface.
package render

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"math/rand"
	"os"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	"go.uber.org/zap"

	"github.com/flakysalt/InkyPi/internal/ftpx"
	"github.com/flakysalt/InkyPi/internal/logging"
)

// PickRandom returns one path chosen uniformly at random.
func PickRandom(paths []string) (string, error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("%w: no candidate images", ftpx.ErrNotFound)
	}
	return paths[rand.Intn(len(paths))], nil
}

// Open decodes the image at path, normalizes it to NRGBA and applies any
// embedded EXIF orientation so the pixels are upright. A missing or broken
// orientation tag is not fatal; the image is used as decoded.
func Open(path string) (*image.NRGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ftpx.ErrRender, path, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ftpx.ErrRender, path, err)
	}

	return applyOrientation(img, readOrientation(bytes.NewReader(data), path)), nil
}

// readOrientation extracts the EXIF orientation value, 1 (upright) when the
// image has no usable EXIF.
func readOrientation(r io.Reader, path string) int {
	x, err := exif.Decode(r)
	if err != nil {
		// No EXIF data is the common case for PNG/BMP/GIF.
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		logging.Warn("unusable exif orientation, using image as decoded",
			zap.String("path", path), zap.Error(err))
		return 1
	}
	return v
}

// applyOrientation transforms an image according to its EXIF orientation.
func applyOrientation(img image.Image, orientation int) *image.NRGBA {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return imaging.Clone(img)
	}
}
