package raster

import (
	"image"
	"math/bits"

	"github.com/steakknife/hamming"
)

// Bitmap is a 1-bit image. A set bit is an ink pixel.
type Bitmap struct {
	W, H  int
	words []uint64
}

// NewBitmap creates an empty bitmap of w × h pixels.
func NewBitmap(w, h int) *Bitmap {
	if w < 0 || h < 0 {
		w, h = 0, 0
	}
	return &Bitmap{W: w, H: h, words: make([]uint64, (w*h+63)/64)}
}

func (b *Bitmap) index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return 0, false
	}
	return y*b.W + x, true
}

// Set marks pixel (x, y) as ink. Pixels outside the bitmap are ignored.
func (b *Bitmap) Set(x, y int) {
	if i, ok := b.index(x, y); ok {
		b.words[i>>6] |= 1 << (i & 63)
	}
}

// Get is a predicate: is pixel (x, y) ink?
func (b *Bitmap) Get(x, y int) bool {
	i, ok := b.index(x, y)
	return ok && b.words[i>>6]&(1<<(i&63)) != 0
}

// Count returns the number of ink pixels.
func (b *Bitmap) Count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Threshold reduces a grayscale image to a bitmap. Pixels darker than
// level become ink.
func Threshold(img *image.Gray, level uint8) *Bitmap {
	r := img.Bounds()
	b := NewBitmap(r.Dx(), r.Dy())
	for y := 0; y < b.H; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.W]
		for x, v := range row {
			if v < level {
				b.Set(x, y)
			}
		}
	}
	return b
}

// Diff returns the share of pixels in which a and b differ, in [0, 1].
// Bitmaps of different dimensions differ completely.
func Diff(a, b *Bitmap) float64 {
	if a == nil || b == nil || a.W != b.W || a.H != b.H {
		return 1.0
	}
	if a.W*a.H == 0 {
		return 0
	}
	return float64(hamming.Uint64s(a.words, b.words)) / float64(a.W*a.H)
}
