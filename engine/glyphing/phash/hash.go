/*
Package phash computes perceptual hashes of glyph renderings.

The average hash (computed by goimagehash) scales an image down to
size × size gray pixels and sets one bit per pixel brighter than the mean.
Hashes of similar images differ in few bits; the Hamming distance between
two hashes is a cheap measure of visual similarity.

The textual form of a hash is the hexadecimal number formed by its bits in
row-major order, most significant bit first, zero-padded to a fixed width.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package phash

import (
	"image"
	"math/big"
	"strings"

	"github.com/corona10/goimagehash"
	"github.com/jjfont/jjfont/core"
	"github.com/steakknife/hamming"
)

// Hash is an average hash of size × size bits. Bits are kept the way
// goimagehash keeps them: row-major, most significant bit of each word first.
type Hash struct {
	size int
	bits []uint64
}

// AverageHash computes the average hash of img. size² has to be a multiple
// of 64.
func AverageHash(img image.Image, size int) (Hash, error) {
	if size <= 0 || size*size%64 != 0 {
		return Hash{}, core.Error(core.EINVALID, "cannot hash with size %d", size)
	}
	eh, err := goimagehash.ExtAverageHash(img, size, size)
	if err != nil {
		return Hash{}, core.WrapError(err, core.EINVALID, "cannot hash image")
	}
	return Hash{size: size, bits: eh.GetHash()}, nil
}

func newHash(size int) Hash {
	return Hash{size: size, bits: make([]uint64, (size*size+63)/64)}
}

func (h Hash) set(i int) {
	h.bits[i>>6] |= 1 << (63 - i&63)
}

func (h Hash) bit(i int) bool {
	return h.bits[i>>6]&(1<<(63-i&63)) != 0
}

// Size returns the edge length of the hash; it has Size()² bits.
func (h Hash) Size() int {
	return h.size
}

// IsZero is a predicate: is h the zero value, i.e. no hash at all?
func (h Hash) IsZero() bool {
	return h.size == 0
}

// Distance returns the number of bits in which h and other differ.
// Hashes of different sizes differ in all bits of the larger one.
func (h Hash) Distance(other Hash) int {
	if h.size != other.size {
		if h.size > other.size {
			return h.size * h.size
		}
		return other.size * other.size
	}
	return hamming.Uint64s(h.bits, other.bits)
}

// Equal is a predicate: do h and other have identical bits?
func (h Hash) Equal(other Hash) bool {
	return h.size == other.size && h.Distance(other) == 0
}

func hexWidth(size int) int {
	return (size*size + 3) / 4
}

func (h Hash) String() string {
	n := h.size * h.size
	z := new(big.Int)
	for i := 0; i < n; i++ {
		if h.bit(i) {
			z.SetBit(z, n-1-i, 1)
		}
	}
	s := z.Text(16)
	if w := hexWidth(h.size); len(s) < w {
		s = strings.Repeat("0", w-len(s)) + s
	}
	return s
}

// ParseHex reads a hash from its textual form. The hash size is derived
// from the length of s.
func ParseHex(s string) (Hash, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	size := 1
	for hexWidth(size) < len(s) {
		size++
	}
	if s == "" || hexWidth(size) != len(s) {
		return Hash{}, core.Error(core.EINVALID, "invalid hash length %d", len(s))
	}
	z, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return Hash{}, core.Error(core.EINVALID, "invalid hash %q", s)
	}
	n := size * size
	if z.BitLen() > n {
		return Hash{}, core.Error(core.EINVALID, "hash %q exceeds %d bits", s, n)
	}
	h := newHash(size)
	for i := 0; i < n; i++ {
		if z.Bit(n-1-i) == 1 {
			h.set(i)
		}
	}
	return h, nil
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(b []byte) error {
	parsed, err := ParseHex(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
