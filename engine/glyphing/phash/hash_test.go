package phash

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/jjfont/jjfont/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quadrants returns an image, white in the top left and bottom right
// quarters and black elsewhere.
func quadrants(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x < w/2) == (y < h/2) {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestAverageHash(t *testing.T) {
	h, err := AverageHash(quadrants(64, 64), 8)
	require.NoError(t, err)
	assert.Equal(t, 8, h.Size())
	// rows read 11110000 and 00001111, most significant bit first
	assert.Equal(t, "f0f0f0f00f0f0f0f", h.String())
	other, err := AverageHash(quadrants(128, 128), 8)
	require.NoError(t, err)
	assert.Equal(t, 0, h.Distance(other))
	assert.True(t, h.bit(0))
	assert.False(t, h.bit(4))
}

func TestAverageHashSize(t *testing.T) {
	for _, size := range []int{0, -8, 4, 12} {
		_, err := AverageHash(quadrants(32, 32), size)
		assert.Equal(t, core.EINVALID, core.Code(err), "size %d", size)
	}
}

func TestBlankImageHashesToZero(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	h, err := AverageHash(img, 16)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("0", 64), h.String())
}

func TestDistance(t *testing.T) {
	a, err := ParseHex("cccc")
	require.NoError(t, err)
	b, err := ParseHex("ccc3")
	require.NoError(t, err)
	assert.Equal(t, 4, a.Distance(b))
	assert.Equal(t, a.Distance(b), b.Distance(a))
	assert.False(t, a.Equal(b))
	c, _ := ParseHex(strings.Repeat("f", 64))
	assert.Equal(t, 256, a.Distance(c))
}

func TestParseHex(t *testing.T) {
	s := "0000000000000000000000000000000000000000000000000000000000000001"
	h, err := ParseHex(s)
	require.NoError(t, err)
	assert.Equal(t, 16, h.Size())
	assert.Equal(t, s, h.String())
	assert.True(t, h.bit(255))
	//
	for _, bad := range []string{"", "xyz0", "ccccc"} {
		_, err = ParseHex(bad)
		assert.Equal(t, core.EINVALID, core.Code(err), bad)
	}
	var u Hash
	require.NoError(t, u.UnmarshalText([]byte("CCCC")))
	b, _ := u.MarshalText()
	assert.Equal(t, "cccc", string(b))
}
