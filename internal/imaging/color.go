package imaging

import (
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// darkThreshold is the mean CIE L* (0-1) below which an image is treated as
// light text on a dark background.
const darkThreshold = 0.5

// maxLightnessSamples bounds the pixels visited by MeanLightness.
const maxLightnessSamples = 10000

// MeanLightness returns the average perceptual lightness (CIE L*, 0 to 1)
// of img. Large images are sampled on a regular grid.
//
// Fully transparent pixels are skipped. An image with no opaque pixels
// reports 1 (white).
func MeanLightness(img image.Image) float64 {
	b := img.Bounds()
	if b.Empty() {
		return 1
	}

	step := 1
	for (b.Dx()/step)*(b.Dy()/step) > maxLightnessSamples {
		step++
	}

	var sum float64
	var n int
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			l, _, _ := c.Lab()
			sum += l
			n++
		}
	}

	if n == 0 {
		return 1
	}
	return sum / float64(n)
}

// IsDark reports whether img is predominantly dark.
func IsDark(img image.Image) bool {
	return MeanLightness(img) < darkThreshold
}
