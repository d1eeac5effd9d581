package render

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/flakysalt/InkyPi/internal/ftpx"
)

// VerticalPolicy controls what happens to a portrait image headed for a
// landscape display.
type VerticalPolicy int

const (
	// PolicyRotate turns the image 90 degrees clockwise.
	PolicyRotate VerticalPolicy = iota
	// PolicyCrop center-crops the image to the display's aspect ratio.
	PolicyCrop
)

// ParseVerticalPolicy maps the settings value to a policy. Unrecognized
// values fall back to rotate, the original default.
func ParseVerticalPolicy(s string) (VerticalPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rotate":
		return PolicyRotate, nil
	case "crop":
		return PolicyCrop, nil
	default:
		return PolicyRotate, fmt.Errorf("%w: unknown vertical handling %q", ftpx.ErrInvalidRequest, s)
	}
}

// FitToDisplay sizes an upright image to exactly width x height.
//
// A portrait image on a landscape display is first reconciled per policy:
// rotated 90 degrees clockwise, or center-cropped to the display's aspect
// ratio. Then, with pad set, the image is scaled to fit fully inside the
// display preserving aspect ratio; without pad it is stretched to the exact
// display size. Lanczos resampling in both cases.
func FitToDisplay(img image.Image, width, height int, policy VerticalPolicy, pad bool) *image.NRGBA {
	b := img.Bounds()
	imgW, imgH := b.Dx(), b.Dy()

	if imgH > imgW && width > height {
		switch policy {
		case PolicyRotate:
			// imaging rotates counter-clockwise; 270 CCW is 90 CW.
			img = imaging.Rotate270(img)
		case PolicyCrop:
			img = cropToAspect(img, imgW, imgH, width, height)
		}
	}

	if pad {
		return contain(img, width, height)
	}
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// cropToAspect center-crops to the target aspect ratio: the overflowing
// dimension loses equal margins on both sides.
func cropToAspect(img image.Image, imgW, imgH, targetW, targetH int) *image.NRGBA {
	targetAspect := float64(targetW) / float64(targetH)
	imgAspect := float64(imgW) / float64(imgH)

	if imgAspect > targetAspect {
		newW := int(math.Round(float64(imgH) * targetAspect))
		return imaging.CropCenter(img, newW, imgH)
	}
	newH := int(math.Round(float64(imgW) / targetAspect))
	return imaging.CropCenter(img, imgW, newH)
}

// contain scales the image, up or down, to the largest size that fits
// inside width x height without changing its aspect ratio. imaging.Fit only
// shrinks, so the scale is computed here.
func contain(img image.Image, width, height int) *image.NRGBA {
	b := img.Bounds()
	imgW, imgH := b.Dx(), b.Dy()
	if imgW == 0 || imgH == 0 {
		return imaging.Clone(img)
	}

	scale := math.Min(float64(width)/float64(imgW), float64(height)/float64(imgH))
	newW := int(math.Round(float64(imgW) * scale))
	newH := int(math.Round(float64(imgH) * scale))
	return imaging.Resize(img, newW, newH, imaging.Lanczos)
}
