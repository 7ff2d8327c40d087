package imaging

import (
	"fmt"
	"image"
	"math/bits"

	"github.com/disintegration/gift"
)

const hashSide = 8

// Hash is a 64-bit average hash, row-major with the top-left cell in the
// most significant bit.
type Hash uint64

var hashFilter = gift.New(
	gift.Grayscale(),
	gift.Resize(hashSide, hashSide, gift.LanczosResampling),
)

// AverageHash reduces img to an 8x8 grayscale thumbnail and sets a bit for
// every cell brighter than the thumbnail mean.
func AverageHash(img image.Image) Hash {
	if img == nil {
		return 0
	}
	thumb := image.NewGray(image.Rect(0, 0, hashSide, hashSide))
	hashFilter.Draw(thumb, img)

	var sum int
	for y := 0; y < hashSide; y++ {
		for x := 0; x < hashSide; x++ {
			sum += int(thumb.GrayAt(x, y).Y)
		}
	}
	mean := float64(sum) / float64(hashSide*hashSide)

	var h Hash
	for y := 0; y < hashSide; y++ {
		for x := 0; x < hashSide; x++ {
			h <<= 1
			if float64(thumb.GrayAt(x, y).Y) > mean {
				h |= 1
			}
		}
	}
	return h
}

// Distance returns the Hamming distance between two hashes.
func (h Hash) Distance(other Hash) int {
	return bits.OnesCount64(uint64(h ^ other))
}

func (h Hash) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}
