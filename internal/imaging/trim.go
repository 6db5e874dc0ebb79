package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

const (
	// edgeLevel is the Sobel magnitude (0-255) at which a pixel counts as
	// part of a stroke.
	edgeLevel = 64

	// minLineEdges is the number of edge pixels a row or column needs
	// before it counts as holding content. Lone specks are ignored.
	minLineEdges = 2

	// TrimMargin is the border kept around content by Preprocess.Trim.
	// Tesseract reads glyphs touching the image edge poorly.
	TrimMargin = 8
)

// ContentBounds returns the smallest rectangle holding the image's strokes,
// grown by margin pixels and clamped to the image. Strokes are found with a
// Sobel filter, so flat areas of any color count as background. ok is false
// when the image has no strokes at all.
func ContentBounds(img image.Image, margin int) (image.Rectangle, bool) {
	b := img.Bounds()
	if b.Empty() {
		return image.Rectangle{}, false
	}

	edges := effect.Sobel(effect.Grayscale(img))
	eb := edges.Bounds()

	rows := make([]int, eb.Dy())
	cols := make([]int, eb.Dx())
	for y := 0; y < eb.Dy(); y++ {
		line := edges.Pix[y*edges.Stride:]
		for x := 0; x < eb.Dx(); x++ {
			if line[x*4] >= edgeLevel {
				rows[y]++
				cols[x]++
			}
		}
	}

	y0, y1, ok := span(rows)
	if !ok {
		return image.Rectangle{}, false
	}
	x0, x1, ok := span(cols)
	if !ok {
		return image.Rectangle{}, false
	}

	r := image.Rect(x0-margin, y0-margin, x1+1+margin, y1+1+margin)
	return r.Add(b.Min).Intersect(b), true
}

// span returns the first and last index whose count reaches minLineEdges.
func span(counts []int) (first, last int, ok bool) {
	first = -1
	for i, n := range counts {
		if n >= minLineEdges {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	return first, last, first >= 0
}
