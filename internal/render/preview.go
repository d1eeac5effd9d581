package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/jpeg"

	"github.com/disintegration/imaging"

	"github.com/flakysalt/InkyPi/internal/ftpx"
)

const (
	previewMaxSize = 200
	previewQuality = 80
)

// Preview renders the image at path as a base64-encoded JPEG thumbnail of
// at most 200x200 pixels, aspect ratio preserved. Thumbnails never upscale.
func Preview(path string) (string, error) {
	img, err := Open(path)
	if err != nil {
		return "", err
	}

	thumb := imaging.Fit(img, previewMaxSize, previewMaxSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: previewQuality}); err != nil {
		return "", fmt.Errorf("%w: encode preview for %s: %v", ftpx.ErrRender, path, err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
