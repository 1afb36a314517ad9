package raster

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/jjfont/jjfont/core"
	"github.com/jjfont/jjfont/core/font"
	"github.com/jjfont/jjfont/core/font/fontregistry"
	"github.com/jjfont/jjfont/engine/glyphing"
)

// InkThreshold is the gray level below which a rendered pixel counts as ink.
const InkThreshold = 128

// Glyph is the rendering of a glyph.
type Glyph struct {
	Key  glyphing.Key
	Gray *image.Gray // anti-aliased rendering
	Bits *Bitmap     // 1-bit reduction of Gray
}

// Rasterizer renders glyphs onto a square canvas.
// A Rasterizer is safe for concurrent use.
type Rasterizer struct {
	registry *fontregistry.Registry
	canvas   int
	cache    *lru.Cache[glyphing.Key, *Glyph]
}

// NewRasterizer creates a rasterizer for a canvas of canvas × canvas pixels,
// caching up to cacheSize renderings. Typecases are taken from reg; if reg
// is nil, the global font registry is used.
func NewRasterizer(reg *fontregistry.Registry, canvas int, cacheSize int) (*Rasterizer, error) {
	if canvas <= 0 {
		return nil, core.Error(core.EINVALID, "invalid canvas size %d", canvas)
	}
	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, err := lru.New[glyphing.Key, *Glyph](cacheSize)
	if err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "cannot create render cache")
	}
	if reg == nil {
		reg = fontregistry.GlobalRegistry()
	}
	return &Rasterizer{registry: reg, canvas: canvas, cache: cache}, nil
}

// Canvas returns the edge length of the canvas in pixels.
func (rz *Rasterizer) Canvas() int {
	return rz.canvas
}

// Render returns the rendering of the glyph for r in font f at a pixel size.
// Renderings are cached.
func (rz *Rasterizer) Render(f *font.ScalableFont, size float64, r rune) (*Glyph, error) {
	key := glyphing.Key{Font: fontregistry.NormalizeFontname(f.Fontname), Size: size, Codepoint: r}
	if g, ok := rz.cache.Get(key); ok {
		return g, nil
	}
	g, err := rz.Draw(f, size, r)
	if err != nil {
		return nil, err
	}
	rz.cache.Add(key, g)
	return g, nil
}

// Draw renders the glyph for r in font f at a pixel size, bypassing the
// cache.
func (rz *Rasterizer) Draw(f *font.ScalableFont, size float64, r rune) (*Glyph, error) {
	if f == nil {
		return nil, core.Error(core.EINVALID, "no font to render %U", r)
	}
	rz.registry.StoreFont(f.Fontname, f)
	tc, err := rz.registry.TypeCase(f.Fontname, size)
	if err != nil {
		return nil, err
	}
	img := image.NewGray(image.Rect(0, 0, rz.canvas, rz.canvas))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if !tc.DrawCentered(img, r) {
		return nil, core.Error(core.EMISSING, "font %s has no glyph for %U", f.Fontname, r)
	}
	return &Glyph{
		Key:  glyphing.Key{Font: fontregistry.NormalizeFontname(f.Fontname), Size: size, Codepoint: r},
		Gray: img,
		Bits: Threshold(img, InkThreshold),
	}, nil
}

// Forget removes all renderings of a font from the cache, and the font
// from the registry.
func (rz *Rasterizer) Forget(fontname string) {
	name := fontregistry.NormalizeFontname(fontname)
	n := 0
	for _, k := range rz.cache.Keys() {
		if k.Font == name {
			rz.cache.Remove(k)
			n++
		}
	}
	rz.registry.Drop(fontname)
	tracer().Debugf("forgot %d renderings of font %s", n, name)
}

// Cached returns the number of renderings in the cache.
func (rz *Rasterizer) Cached() int {
	return rz.cache.Len()
}
