package glyphing

import (
	"fmt"

	"github.com/jjfont/jjfont/core"
	"github.com/jjfont/jjfont/core/font"
)

// A Glyph is the outline a font maps a codepoint to.
type Glyph struct {
	Codepoint rune
	Outline   font.Outline
}

func (g Glyph) String() string {
	return fmt.Sprintf("(%U, %d points)", g.Codepoint, len(g.Outline))
}

// Key identifies the rendering of a glyph.
type Key struct {
	Font      string  // normalized font name
	Size      float64 // pixel size
	Codepoint rune
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%.2f:%U", k.Font, k.Size, k.Codepoint)
}

// Glyphs extracts the glyph outlines of every BMP codepoint from U+0020 up the
// font maps, in ascending codepoint order. A glyph which cannot be loaded
// makes the whole font unusable and results in an error.
func Glyphs(f *font.ScalableFont) ([]Glyph, error) {
	if f == nil {
		return nil, core.Error(core.EINVALID, "no font")
	}
	cps := f.Codepoints(0x20, 0xFFFF)
	glyphs := make([]Glyph, 0, len(cps))
	for _, r := range cps {
		outline, err := f.Outline(r)
		if err != nil {
			return nil, err
		}
		glyphs = append(glyphs, Glyph{Codepoint: r, Outline: outline})
	}
	tracer().Debugf("font %s has %d glyphs", f.Fontname, len(glyphs))
	return glyphs, nil
}
