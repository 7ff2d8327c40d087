package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"
)

const (
	ssimWindow = 7
	ssimK1     = 0.01
	ssimK2     = 0.03
	dataRange  = 255.0
)

var (
	// ErrDimensionMismatch is returned when the two rasters differ in size.
	ErrDimensionMismatch = errors.New("image dimensions differ")
	// ErrImageTooSmall is returned when a raster is smaller than the SSIM window.
	ErrImageTooSmall = errors.New("image smaller than similarity window")
	// ErrNonFinite is returned when the similarity score is NaN or infinite.
	ErrNonFinite = errors.New("similarity score is not finite")
)

// SSIM computes the mean structural similarity between two grayscale rasters
// over every full 7x7 window. Identical inputs score 1; anticorrelated inputs
// can score below 0.
func SSIM(a, b *image.Gray) (float64, error) {
	if a == nil || b == nil {
		return 0, errors.New("ssim: nil image")
	}
	ab, bb := a.Bounds(), b.Bounds()
	w, h := ab.Dx(), ab.Dy()
	if w != bb.Dx() || h != bb.Dy() {
		return 0, fmt.Errorf("ssim: %w: %dx%d vs %dx%d", ErrDimensionMismatch, w, h, bb.Dx(), bb.Dy())
	}
	if w < ssimWindow || h < ssimWindow {
		return 0, fmt.Errorf("ssim: %w: %dx%d", ErrImageTooSmall, w, h)
	}

	// Per-column sums over the current band of ssimWindow rows. Integer sums
	// stay exact for 8-bit input.
	cols := newColumnSums(w)
	rowA := func(y int) []uint8 { return a.Pix[a.PixOffset(ab.Min.X, ab.Min.Y+y):][:w] }
	rowB := func(y int) []uint8 { return b.Pix[b.PixOffset(bb.Min.X, bb.Min.Y+y):][:w] }

	for y := 0; y < ssimWindow-1; y++ {
		cols.add(rowA(y), rowB(y), 1)
	}

	var total float64
	count := 0
	for top := 0; top+ssimWindow <= h; top++ {
		cols.add(rowA(top+ssimWindow-1), rowB(top+ssimWindow-1), 1)
		if top > 0 {
			cols.add(rowA(top-1), rowB(top-1), -1)
		}

		var win windowSums
		for x := 0; x < ssimWindow-1; x++ {
			win.add(cols, x, 1)
		}
		for left := 0; left+ssimWindow <= w; left++ {
			win.add(cols, left+ssimWindow-1, 1)
			if left > 0 {
				win.add(cols, left-1, -1)
			}
			total += win.score()
			count++
		}
	}

	score := total / float64(count)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("ssim: %w", ErrNonFinite)
	}
	return score, nil
}

type columnSums struct {
	x, y, xx, yy, xy []int64
}

func newColumnSums(width int) *columnSums {
	return &columnSums{
		x:  make([]int64, width),
		y:  make([]int64, width),
		xx: make([]int64, width),
		yy: make([]int64, width),
		xy: make([]int64, width),
	}
}

func (c *columnSums) add(ra, rb []uint8, sign int64) {
	for i := range ra {
		pa, pb := int64(ra[i]), int64(rb[i])
		c.x[i] += sign * pa
		c.y[i] += sign * pb
		c.xx[i] += sign * pa * pa
		c.yy[i] += sign * pb * pb
		c.xy[i] += sign * pa * pb
	}
}

type windowSums struct {
	x, y, xx, yy, xy int64
}

func (s *windowSums) add(c *columnSums, col int, sign int64) {
	s.x += sign * c.x[col]
	s.y += sign * c.y[col]
	s.xx += sign * c.xx[col]
	s.yy += sign * c.yy[col]
	s.xy += sign * c.xy[col]
}

func (s windowSums) score() float64 {
	const (
		n  = float64(ssimWindow * ssimWindow)
		c1 = (ssimK1 * dataRange) * (ssimK1 * dataRange)
		c2 = (ssimK2 * dataRange) * (ssimK2 * dataRange)
	)
	sx, sy := float64(s.x), float64(s.y)
	ux, uy := sx/n, sy/n
	vx := (float64(s.xx) - sx*sx/n) / (n - 1)
	vy := (float64(s.yy) - sy*sy/n) / (n - 1)
	vxy := (float64(s.xy) - sx*sy/n) / (n - 1)

	num := (2*ux*uy + c1) * (2*vxy + c2)
	den := (ux*ux + uy*uy + c1) * (vx + vy + c2)
	return num / den
}
