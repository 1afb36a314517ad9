package resolve

import (
	"context"
	"testing"

	"github.com/jjfont/jjfont/core"
	"github.com/jjfont/jjfont/core/font"
	"github.com/jjfont/jjfont/core/font/fontregistry"
	"github.com/jjfont/jjfont/core/table"
	"github.com/jjfont/jjfont/engine/atlas"
	"github.com/jjfont/jjfont/engine/coords"
	"github.com/jjfont/jjfont/engine/glyphing/raster"
	"github.com/jjfont/jjfont/engine/match"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

type goLoader struct{}

func (goLoader) Load(ctx context.Context, name string) (*font.ScalableFont, error) {
	if name == "jjwxcfont_zzzzz" {
		return nil, core.Error(core.EMISSING, "font %s not found", name)
	}
	f, err := font.ParseOpenTypeFont(goregular.TTF)
	if err != nil {
		return nil, err
	}
	f.Fontname = name
	return f, nil
}

type pages map[string]int

func (p pages) WritePage(name string, t table.Table) error {
	p[name] = len(t)
	return nil
}

func TestPipeline(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "jjfont.resolve")
	defer teardown()
	//
	uf, err := goLoader{}.Load(context.Background(), "seed")
	require.NoError(t, err)
	ix := coords.NewMemoryIndex()
	for _, r := range uf.Codepoints(0x20, 0xFFFF) {
		outline, err := uf.Outline(r)
		require.NoError(t, err)
		require.NoError(t, ix.Append(coords.Entry{Char: r, Coords: outline}))
	}
	rz, err := raster.NewRasterizer(fontregistry.NewRegistry(), 64, 64)
	require.NoError(t, err)
	conf := match.Config{ReferenceSize: 48, UnknownSize: 48, HashSize: 16, Fuzz: 20, Sentinels: []rune{'x'}}
	m := match.NewMatcher(uf, atlas.New(nil), ix, rz, conf)
	cache := table.NewCache(t.TempDir())
	published := pages{}
	p := &Pipeline{Loader: goLoader{}, Matcher: m, Cache: cache, Publisher: published, Forgetter: rz}
	//
	require.NoError(t, p.Resolve(context.Background(), "jjwxcfont_00abc"))
	tt, _, err := cache.Load("jjwxcfont_00abc")
	require.NoError(t, err)
	assert.Equal(t, 'A', tt['A'])
	assert.Equal(t, len(tt), published["jjwxcfont_00abc"])
	assert.Equal(t, 0, rz.Cached())
	//
	err = p.Resolve(context.Background(), "jjwxcfont_zzzzz")
	assert.Equal(t, core.EMISSING, core.Code(err))
	assert.False(t, cache.Exists("jjwxcfont_zzzzz"))
}
