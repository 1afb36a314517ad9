package match

import (
	"context"

	"github.com/jjfont/jjfont/core/font"
	"github.com/jjfont/jjfont/engine/atlas"
	"github.com/jjfont/jjfont/engine/glyphing/phash"
	"github.com/jjfont/jjfont/engine/glyphing/raster"
)

// ReferenceHasher returns a function hashing glyphs of the reference font
// the way the matcher hashes unknown glyphs. Renderings are not cached.
func ReferenceHasher(rz *raster.Rasterizer, ref *font.ScalableFont, conf Config) atlas.HashFunc {
	return func(r rune) (phash.Hash, error) {
		g, err := rz.Draw(ref, conf.ReferenceSize, r)
		if err != nil {
			return phash.Hash{}, err
		}
		return phash.AverageHash(g.Gray, conf.HashSize)
	}
}

// LoadReferenceAtlas loads the atlas of ref persisted at path, or builds
// it from the characters of window which ref maps.
func LoadReferenceAtlas(ctx context.Context, path string, ref *font.ScalableFont, window atlas.Window,
	rz *raster.Rasterizer, conf Config, workers int) (*atlas.Atlas, error) {
	//
	chars := ref.Codepoints(window.Lo, window.Hi)
	return atlas.LoadOrBuild(ctx, path, chars, ReferenceHasher(rz, ref, conf), workers)
}
