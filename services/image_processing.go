package services

import (
	"bytes"
	"fmt"
	"image"

	"paletteapi/colorspace"

	"github.com/disintegration/imaging"
)

const (
	// sampleSide is the thumbnail edge the center crop is reduced to.
	sampleSide = 24
	// backgroundLuminance marks studio white and light grey backdrops.
	backgroundLuminance = 235
)

// DominantColor estimates a garment's main color from the center of its
// photo. Near white and transparent pixels are treated as background and
// skipped unless nothing else is left.
func DominantColor(imageBytes []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(imageBytes), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return "", fmt.Errorf("empty image")
	}

	center := imaging.CropCenter(img, max(1, bounds.Dx()/2), max(1, bounds.Dy()/2))
	thumb := imaging.Resize(center, sampleSide, sampleSide, imaging.Box)

	foreground, background := samplePixels(thumb)
	if len(foreground) == 0 {
		foreground = background
	}
	if len(foreground) == 0 {
		return "", fmt.Errorf("image has no opaque pixels")
	}
	return colorspace.Average(foreground, nil)
}

func samplePixels(img *image.NRGBA) (foreground, background []string) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if c.A < 128 {
				continue
			}
			hex := fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
			luminance := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
			if luminance >= backgroundLuminance {
				background = append(background, hex)
				continue
			}
			foreground = append(foreground, hex)
		}
	}
	return foreground, background
}
