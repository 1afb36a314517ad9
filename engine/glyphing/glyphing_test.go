package glyphing

import (
	"testing"

	"github.com/jjfont/jjfont/core/font"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "jjfont.glyphs")
	defer teardown()
	//
	f, err := font.ParseOpenTypeFont(goregular.TTF)
	require.NoError(t, err)
	glyphs, err := Glyphs(f)
	require.NoError(t, err)
	require.NotEmpty(t, glyphs)
	for i := 1; i < len(glyphs); i++ {
		require.Less(t, glyphs[i-1].Codepoint, glyphs[i].Codepoint)
	}
	assert.GreaterOrEqual(t, glyphs[0].Codepoint, rune(0x20))
	_, err = Glyphs(nil)
	assert.Error(t, err)
}
