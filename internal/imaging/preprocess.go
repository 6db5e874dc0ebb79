package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// Preprocess lists optional image clean-up steps applied before OCR.
//
// Steps run in a fixed order: crop (Region or Quadrant), trim, scale,
// grayscale, contrast, auto-invert, threshold. The zero value does nothing.
type Preprocess struct {
	// Region restricts recognition to a rectangle. Clamped to the image.
	Region *Region `json:"region,omitempty"`

	// Quadrant restricts recognition to a named area (see Quadrants).
	// Mutually exclusive with Region.
	Quadrant string `json:"quadrant,omitempty"`

	// Trim crops away blank margins around the content, keeping
	// TrimMargin pixels.
	Trim bool `json:"trim,omitempty"`

	// Scale resizes the image (Lanczos). 0 and 1 leave it unchanged.
	Scale float64 `json:"scale,omitempty"`

	// Grayscale drops color information.
	Grayscale bool `json:"grayscale,omitempty"`

	// Contrast adjusts contrast in the range -1 to 1; 0 leaves it unchanged.
	Contrast float64 `json:"contrast,omitempty"`

	// AutoInvert inverts predominantly dark images so text is dark on light.
	AutoInvert bool `json:"auto_invert,omitempty"`

	// Threshold binarizes at the given level (1-255); 0 disables it.
	Threshold int `json:"threshold,omitempty"`
}

// IsZero reports whether p requests no processing.
func (p Preprocess) IsZero() bool {
	return p.Region == nil && p.Quadrant == "" && !p.Trim &&
		(p.Scale == 0 || p.Scale == 1) &&
		!p.Grayscale && p.Contrast == 0 && !p.AutoInvert && p.Threshold == 0
}

// Validate checks option ranges.
func (p Preprocess) Validate() error {
	if p.Region != nil && p.Quadrant != "" {
		return fmt.Errorf("region and quadrant are mutually exclusive")
	}
	if p.Quadrant != "" {
		if _, err := QuadrantRegion(image.Rect(0, 0, 4, 4), p.Quadrant); err != nil {
			return err
		}
	}
	if p.Scale < 0 {
		return fmt.Errorf("scale must be positive, got %v", p.Scale)
	}
	if p.Contrast < -1 || p.Contrast > 1 {
		return fmt.Errorf("contrast must be between -1 and 1, got %v", p.Contrast)
	}
	if p.Threshold < 0 || p.Threshold > 255 {
		return fmt.Errorf("threshold must be between 0 and 255, got %d", p.Threshold)
	}
	return nil
}

// process runs the requested steps and also returns where the processed
// image's origin lies in img.
func (p Preprocess) process(img image.Image) (image.Image, image.Point, error) {
	if err := p.Validate(); err != nil {
		return nil, image.Point{}, err
	}

	out := img
	origin := img.Bounds().Min
	if r, ok, err := p.cropArea(img.Bounds()); err != nil {
		return nil, image.Point{}, err
	} else if ok {
		cropped, clamped, err := cropRegion(out, r)
		if err != nil {
			return nil, image.Point{}, err
		}
		out = cropped
		origin = image.Pt(clamped.X1, clamped.Y1)
	}

	if p.Trim {
		if content, ok := ContentBounds(out, TrimMargin); ok {
			origin = origin.Add(content.Min.Sub(out.Bounds().Min))
			out = imaging.Crop(out, content)
		}
	}

	if p.Scale > 0 && p.Scale != 1 {
		w := int(float64(out.Bounds().Dx()) * p.Scale)
		h := int(float64(out.Bounds().Dy()) * p.Scale)
		if w < 1 || h < 1 {
			return nil, image.Point{}, fmt.Errorf("scale %v shrinks image to nothing", p.Scale)
		}
		out = imaging.Resize(out, w, h, imaging.Lanczos)
	}

	if p.Grayscale {
		out = effect.Grayscale(out)
	}

	if p.Contrast != 0 {
		out = adjust.Contrast(out, p.Contrast)
	}

	if p.AutoInvert && IsDark(out) {
		out = imaging.Invert(out)
	}

	if p.Threshold > 0 {
		out = segment.Threshold(out, uint8(p.Threshold))
	}

	return out, origin, nil
}

func (p Preprocess) cropArea(bounds image.Rectangle) (Region, bool, error) {
	switch {
	case p.Region != nil:
		return *p.Region, true, nil
	case p.Quadrant != "":
		r, err := QuadrantRegion(bounds, p.Quadrant)
		return r, err == nil, err
	}
	return Region{}, false, nil
}
