package match

import (
	"context"
	"sync/atomic"

	"github.com/jjfont/jjfont/core"
	"github.com/jjfont/jjfont/core/font"
	"github.com/jjfont/jjfont/core/parameters"
	"github.com/jjfont/jjfont/core/table"
	"github.com/jjfont/jjfont/engine/atlas"
	"github.com/jjfont/jjfont/engine/coords"
	"github.com/jjfont/jjfont/engine/glyphing"
	"github.com/jjfont/jjfont/engine/glyphing/phash"
	"github.com/jjfont/jjfont/engine/glyphing/raster"
)

// Renderer renders glyphs of a font at a pixel size.
type Renderer interface {
	Render(f *font.ScalableFont, size float64, r rune) (*raster.Glyph, error)
}

// Config holds the tunables of a matcher.
type Config struct {
	ReferenceSize float64 // pixel size for reference font renderings
	UnknownSize   float64 // pixel size for unknown font renderings
	HashSize      int     // edge length of perceptual hashes
	Fuzz          int     // tolerance of the quick match, in font units
	Sentinels     []rune  // glyph codepoints never matched
}

// ConfigFrom derives a matcher configuration from a parameter set.
func ConfigFrom(params *parameters.Parameters) Config {
	return Config{
		ReferenceSize: float64(params.Int(parameters.P_REFERENCESIZE)),
		UnknownSize:   float64(params.Int(parameters.P_UNKNOWNSIZE)),
		HashSize:      params.Int(parameters.P_HASHSIZE),
		Fuzz:          params.Int(parameters.P_FUZZ),
		Sentinels:     params.Runes(parameters.P_SENTINELS),
	}
}

// Matcher resolves scrambled fonts against a reference font.
// A Matcher is safe for concurrent use, provided its renderer and index are.
type Matcher struct {
	conf        Config
	reference   *font.ScalableFont
	atlas       *atlas.Atlas
	index       coords.Index
	render      Renderer
	corrections Corrections
	overrides   Overrides
	disamb      *Disambiguator
	lost        atomic.Int64 // outlines not added to the index
}

// Option configures a matcher.
type Option func(*Matcher)

// WithCorrections replaces the default corrections.
func WithCorrections(c Corrections) Option {
	return func(m *Matcher) {
		m.corrections = c
	}
}

// WithOverrides sets manual per-font overrides.
func WithOverrides(o Overrides) Option {
	return func(m *Matcher) {
		m.overrides = o
	}
}

// WithDisambiguator enables the 已/己 disambiguation.
func WithDisambiguator(d *Disambiguator) Option {
	return func(m *Matcher) {
		m.disamb = d
	}
}

// NewMatcher creates a matcher for reference font ref with its atlas a.
// Identified outlines are appended to ix.
func NewMatcher(ref *font.ScalableFont, a *atlas.Atlas, ix coords.Index, r Renderer,
	conf Config, opts ...Option) *Matcher {
	//
	m := &Matcher{
		conf:        conf,
		reference:   ref,
		atlas:       a,
		index:       ix,
		render:      r,
		corrections: DefaultCorrections(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LostOutlines returns the number of identified outlines which could not
// be added to the coordinate index since m was created.
func (m *Matcher) LostOutlines() int64 {
	return m.lost.Load()
}

func (m *Matcher) isSentinel(r rune) bool {
	for _, s := range m.conf.Sentinels {
		if s == r {
			return true
		}
	}
	return false
}

// Resolve identifies every glyph of the unknown font uf, in ascending
// codepoint order, and returns the post-processed resolution table.
func (m *Matcher) Resolve(ctx context.Context, uf *font.ScalableFont) (table.Table, error) {
	glyphs, err := glyphing.Glyphs(uf)
	if err != nil {
		return nil, err
	}
	tracer().Infof("start matching font %s (%d glyphs)", uf.Fontname, len(glyphs))
	t := make(table.Table, len(glyphs))
	quick, lost := 0, 0
	for _, g := range glyphs {
		if err = ctx.Err(); err != nil {
			return nil, core.WrapError(err, core.EINTERNAL, "matching font %s cancelled", uf.Fontname)
		}
		if m.isSentinel(g.Codepoint) {
			continue
		}
		if r, ok := coords.QuickMatch(m.index.Snapshot(), g.Outline, m.conf.Fuzz); ok {
			t[g.Codepoint] = r
			quick++
			continue
		}
		tracer().Debugf("quick match failed for %s %U, falling back to image match", uf.Fontname, g.Codepoint)
		r, err := m.imageMatch(uf, g.Codepoint)
		if err != nil {
			return nil, err
		}
		if err = m.index.Append(coords.Entry{Char: r, Coords: g.Outline}); err != nil {
			tracer().Debugf("cannot add outline of %c to coordinate index: %v", r, err)
			lost++
		}
		t[g.Codepoint] = r
	}
	tracer().Debugf("font %s: %d of %d glyphs matched by outline", uf.Fontname, quick, len(t))
	if lost > 0 {
		m.lost.Add(int64(lost))
		tracer().Errorf("font %s: %d identified outlines could not be added to the coordinate index",
			uf.Fontname, lost)
	}
	m.correct(ctx, uf, t)
	tracer().Infof("finished matching font %s", uf.Fontname)
	return t, nil
}

// imageMatch identifies the glyph for r of font uf by its rendering.
func (m *Matcher) imageMatch(uf *font.ScalableFont, r rune) (rune, error) {
	ug, err := m.render.Render(uf, m.conf.UnknownSize, r)
	if err != nil {
		return 0, err
	}
	h, err := phash.AverageHash(ug.Gray, m.conf.HashSize)
	if err != nil {
		return 0, err
	}
	dist, candidates := m.atlas.Nearest(h)
	if len(candidates) == 0 {
		return 0, core.Error(core.EMISSING, "reference atlas is empty")
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	tracer().Debugf("%U: %d candidates at distance %d", r, len(candidates), dist)
	best, bestDiff := rune(0), 2.0
	for _, c := range candidates {
		rg, err := m.render.Render(m.reference, m.conf.ReferenceSize, c)
		if err != nil {
			return 0, err
		}
		if d := raster.Diff(ug.Bits, rg.Bits); d < bestDiff {
			best, bestDiff = c, d
		}
	}
	return best, nil
}

// Correct re-applies corrections, disambiguation and overrides to an
// existing table of font name. uf may be nil if the font is not available;
// disambiguation is skipped then.
func (m *Matcher) Correct(ctx context.Context, name string, uf *font.ScalableFont, t table.Table) table.Table {
	t = t.Clone()
	m.corrections.Apply(t)
	if uf != nil {
		m.disambiguate(ctx, uf, t)
	}
	m.overrides.Apply(name, t)
	return t
}

func (m *Matcher) correct(ctx context.Context, uf *font.ScalableFont, t table.Table) {
	m.corrections.Apply(t)
	m.disambiguate(ctx, uf, t)
	m.overrides.Apply(uf.Fontname, t)
}

// Seed adds the outlines of an already resolved font to the coordinate
// index, in ascending codepoint order. It returns the number of entries
// added.
func (m *Matcher) Seed(uf *font.ScalableFont, t table.Table) (int, error) {
	var entries []coords.Entry
	for _, k := range t.Keys() {
		outline, err := uf.Outline(k)
		if err != nil {
			if core.Is(err, core.EMISSING) {
				tracer().Infof("font %s has no glyph %U, skipped", uf.Fontname, k)
				continue
			}
			return 0, err
		}
		entries = append(entries, coords.Entry{Char: t[k], Coords: outline})
	}
	if err := m.index.Append(entries...); err != nil {
		return 0, err
	}
	tracer().Infof("seeded coordinate index with %d outlines of font %s", len(entries), uf.Fontname)
	return len(entries), nil
}
