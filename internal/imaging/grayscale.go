package imaging

import (
	"image"

	"github.com/disintegration/gift"
)

var grayscaleFilter = gift.New(gift.Grayscale())

// Grayscale converts img to an 8-bit luminance raster anchored at (0,0).
func Grayscale(img image.Image) *image.Gray {
	if img == nil {
		return nil
	}
	dst := image.NewGray(grayscaleFilter.Bounds(img.Bounds()))
	grayscaleFilter.Draw(dst, img)
	return dst
}

// CloneGray returns a deep copy of g anchored at (0,0).
func CloneGray(g *image.Gray) *image.Gray {
	if g == nil {
		return nil
	}
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):]
		copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], src[:b.Dx()])
	}
	return out
}
