package fontregistry

import (
	"testing"

	"github.com/jjfont/jjfont/core"
	"github.com/jjfont/jjfont/core/font"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestNormalizeFont(t *testing.T) {
	assert.Equal(t, "jjwxcfont_00abc", NormalizeFontname("jjwxcfont_00abc.woff2"))
	assert.Equal(t, "fzlantinghei-m-gbk", NormalizeFontname(" FZLanTingHei-M-GBK.ttf"))
	assert.Equal(t, "go_regular", NormalizeFontname("Go Regular"))
	assert.Equal(t, "v1.2", NormalizeFontname("v1.2"))
}

func TestRegistryTypeCases(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "jjfont.font")
	defer teardown()
	//
	f, err := font.ParseOpenTypeFont(goregular.TTF)
	require.NoError(t, err)
	fr := NewRegistry()
	fr.StoreFont("Go Regular", f)
	fr.StoreFont("Go Regular", &font.ScalableFont{Fontname: "other"})
	got, ok := fr.Font("go_regular")
	require.True(t, ok)
	assert.Equal(t, f, got, "stored font must not be overridden")
	tc1, err := fr.TypeCase("Go Regular", 40)
	require.NoError(t, err)
	tc2, err := fr.TypeCase("Go Regular", 40)
	require.NoError(t, err)
	assert.Same(t, tc1, tc2)
	fr.LogFontList()
	//
	_, err = fr.TypeCase("unknown", 40)
	assert.Equal(t, core.EMISSING, core.Code(err))
	//
	fr.Drop("Go Regular")
	assert.Equal(t, 0, fr.Len())
	_, err = fr.TypeCase("Go Regular", 40)
	assert.Error(t, err)
}
