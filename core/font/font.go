package font

import (
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/golang/freetype/truetype"
	"github.com/jjfont/jjfont/core"
	tdfont "github.com/tdewolff/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ScalableFont is a parsed font file.
type ScalableFont struct {
	Fontname string
	Filepath string         // file path, if loaded from disk
	Binary   []byte         // raw SFNT data
	SFNT     *sfnt.Font     // the font's container, used for rendering
	TTF      *truetype.Font // glyph outlines; nil for CFF-flavoured fonts
}

// TypeCase is a scalable font at a given pixel size.
// Go faces are not safe for concurrent use, so drawing is serialized.
type TypeCase struct {
	mx                 sync.Mutex
	scalableFontParent *ScalableFont
	font               xfont.Face // Go uses 'face' and 'font' in an inverse manner
	size               float64
}

// LoadOpenTypeFont loads and parses a font file. WOFF2 files are accepted
// as well as plain TrueType/OpenType files.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font file %s", fontfile)
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	if f.Fontname == "" {
		base := filepath.Base(fontfile)
		f.Fontname = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return f, nil
}

// ParseOpenTypeFont parses font data, unpacking WOFF2 containers first.
// Unparsable data results in an error with code core.ECORRUPT.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	data, err := Decode(fbytes)
	if err != nil {
		return nil, err
	}
	f = &ScalableFont{Binary: data}
	if f.SFNT, err = sfnt.Parse(f.Binary); err != nil {
		return nil, core.WrapError(err, core.ECORRUPT, "cannot parse font")
	}
	f.Fontname, _ = f.SFNT.Name(nil, sfnt.NameIDFull)
	if string(data[:4]) != "OTTO" {
		if f.TTF, err = truetype.Parse(f.Binary); err != nil {
			return nil, core.WrapError(err, core.ECORRUPT, "cannot parse glyph outlines")
		}
	}
	return f, nil
}

// Decode returns plain SFNT data for a font binary. WOFF and WOFF2
// containers are unpacked, SFNT data is returned unchanged.
func Decode(b []byte) ([]byte, error) {
	if len(b) < 12 {
		return nil, core.Error(core.ECORRUPT, "font data too short (%d bytes)", len(b))
	}
	var unpack func([]byte) ([]byte, error)
	switch string(b[:4]) {
	case "\x00\x01\x00\x00", "true", "OTTO":
		return b, nil
	case "wOF2":
		unpack = tdfont.ParseWOFF2
	case "wOFF":
		unpack = tdfont.ParseWOFF
	default:
		return nil, core.Error(core.ECORRUPT, "unknown font format %q", b[:4])
	}
	data, err := unpack(b)
	if err != nil {
		return nil, core.WrapError(err, core.ECORRUPT, "cannot unpack %s font", b[:4])
	}
	tracer().Debugf("unpacked %s font: %d bytes -> %d bytes", b[:4], len(b), len(data))
	return data, nil
}

// --- Glyphs ----------------------------------------------------------------

// Point is an outline point in font units.
type Point struct {
	X, Y int
}

// MarshalJSON encodes a point as a two-element array.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

// UnmarshalJSON decodes a point from a two-element array.
func (p *Point) UnmarshalJSON(b []byte) error {
	var xy [2]int
	if err := json.Unmarshal(b, &xy); err != nil {
		return err
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

// Outline is the ordered list of a glyph's contour points, as stored in
// the font.
type Outline []Point

func (o Outline) String() string {
	return fmt.Sprintf("outline(%d points)", len(o))
}

// HasGlyph is a predicate: does the font map r to a glyph?
func (sf *ScalableFont) HasGlyph(r rune) bool {
	if sf.TTF != nil {
		return sf.TTF.Index(r) != 0
	}
	var buf sfnt.Buffer
	inx, err := sf.SFNT.GlyphIndex(&buf, r)
	return err == nil && inx != 0
}

// Codepoints returns all codepoints lo ≤ r ≤ hi the font maps to a glyph,
// in ascending order.
func (sf *ScalableFont) Codepoints(lo, hi rune) []rune {
	var cps []rune
	for r := lo; r <= hi; r++ {
		if r >= 0xD800 && r <= 0xDFFF {
			continue
		}
		if sf.HasGlyph(r) {
			cps = append(cps, r)
		}
	}
	return cps
}

// Glyphs returns every codepoint from U+0020 up which the font maps to a
// glyph, in ascending order.
func (sf *ScalableFont) Glyphs() []rune {
	return sf.Codepoints(0x20, unicode.MaxRune)
}

// Outline extracts the raw outline of the glyph for r. Coordinates are in
// font units, in contour order, with the glyph's origin shifted to its
// left side bearing point (which is a no-op for well-formed fonts).
func (sf *ScalableFont) Outline(r rune) (Outline, error) {
	if sf.TTF == nil {
		return nil, core.Error(core.EINVALID, "font %s has no TrueType outlines", sf.Fontname)
	}
	inx := sf.TTF.Index(r)
	if inx == 0 {
		return nil, core.Error(core.EMISSING, "font %s has no glyph for %U", sf.Fontname, r)
	}
	var buf truetype.GlyphBuf
	upem := fixed.Int26_6(sf.TTF.FUnitsPerEm()) // scaling by upem/upem keeps font units
	if err := buf.Load(sf.TTF, upem, inx, xfont.HintingNone); err != nil {
		return nil, core.WrapError(err, core.ECORRUPT, "cannot load glyph %U of font %s", r, sf.Fontname)
	}
	outline := make(Outline, len(buf.Points))
	for i, p := range buf.Points {
		outline[i] = Point{X: int(p.X), Y: int(p.Y)}
	}
	return outline, nil
}

// --- Type cases ------------------------------------------------------------

// PrepareCase creates a typecase for a pixel size.
func (sf *ScalableFont) PrepareCase(size float64) (*TypeCase, error) {
	if size < 5.0 || size > 1000.0 {
		tracer().Errorf("font size must be 5px < size < 1000px, is %g", size)
		return nil, core.Error(core.EINVALID, "invalid font size %g", size)
	}
	options := &opentype.FaceOptions{
		Size:    size,
		DPI:     72, // 1pt = 1px
		Hinting: xfont.HintingNone,
	}
	f, err := opentype.NewFace(sf.SFNT, options)
	if err != nil {
		return nil, core.WrapError(err, core.ECORRUPT, "cannot create face for %s", sf.Fontname)
	}
	return &TypeCase{
		scalableFontParent: sf,
		font:               f,
		size:               size,
	}, nil
}

func (tc *TypeCase) ScalableFontParent() *ScalableFont {
	return tc.scalableFontParent
}

func (tc *TypeCase) PtSize() float64 {
	return tc.size
}

// DrawCentered draws the glyph for r in black onto dst, with the glyph's
// ink box centered within dst's bounds. It returns false if the font has no
// glyph for r.
func (tc *TypeCase) DrawCentered(dst draw.Image, r rune) bool {
	tc.mx.Lock()
	defer tc.mx.Unlock()
	bounds, _, ok := tc.font.GlyphBounds(r)
	if !ok {
		return false
	}
	rect := dst.Bounds()
	w, h := bounds.Max.X-bounds.Min.X, bounds.Max.Y-bounds.Min.Y
	dot := fixed.Point26_6{
		X: fixed.I(rect.Min.X) + (fixed.I(rect.Dx())-w)/2 - bounds.Min.X,
		Y: fixed.I(rect.Min.Y) + (fixed.I(rect.Dy())-h)/2 - bounds.Min.Y,
	}
	drawer := xfont.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: tc.font,
		Dot:  dot,
	}
	drawer.DrawString(string(r))
	return true
}
