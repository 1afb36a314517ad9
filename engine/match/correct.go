package match

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/jjfont/jjfont/core"
	"github.com/jjfont/jjfont/core/font"
	"github.com/jjfont/jjfont/core/table"
	"github.com/jjfont/jjfont/engine/glyphing/raster"
)

// Corrections substitutes characters the matcher is known to confuse.
type Corrections map[rune]rune

// DefaultCorrections returns the substitutions for the confusions observed
// with the default reference font.
func DefaultCorrections() Corrections {
	return Corrections{
		'杲': '果',
		'曼': '最',
		'吋': '时',
	}
}

// Apply replaces resolved characters of t in place.
func (c Corrections) Apply(t table.Table) {
	for k, v := range t {
		if r, ok := c[v]; ok {
			t[k] = r
		}
	}
}

// --- Overrides -------------------------------------------------------------

// Overrides are manual resolutions of individual glyphs, per font name.
type Overrides map[string]table.Table

// DefaultOverrides returns the glyphs of known fonts which resolve to 已
// but are not detected as such.
func DefaultOverrides() Overrides {
	return Overrides{
		"jjwxcfont_00heq": {0xEAE6: '已'},
		"jjwxcfont_00huu": {0xE24B: '已'},
		"jjwxcfont_00jat": {0xE519: '已'},
		"jjwxcfont_00k07": {0xE1DE: '已'},
		"jjwxcfont_00gv7": {0xEA86: '已'},
	}
}

// LoadOverrides reads overrides from a JSON file of the form
// {"font": {"glyph": "char"}} and merges them over the defaults. A missing
// file yields the defaults.
func LoadOverrides(path string) (Overrides, error) {
	o := DefaultOverrides()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return o, nil
	} else if err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "cannot read overrides %s", path)
	}
	var loaded map[string]table.Table
	if err = json.Unmarshal(data, &loaded); err != nil {
		return nil, core.WrapError(err, core.ECORRUPT, "overrides %s are corrupt", path)
	}
	for name, t := range loaded {
		if o[name] == nil {
			o[name] = make(table.Table, len(t))
		}
		for k, v := range t {
			o[name][k] = v
		}
	}
	tracer().Debugf("loaded overrides for %d fonts from %s", len(loaded), path)
	return o, nil
}

// Apply sets the overrides for font name in t.
func (o Overrides) Apply(name string, t table.Table) {
	for k, v := range o[name] {
		t[k] = v
	}
}

// --- Disambiguation of 已 and 己 --------------------------------------------

// FontSource provides fonts by name.
type FontSource interface {
	Load(ctx context.Context, name string) (*font.ScalableFont, error)
}

// Glyphs of the default disambiguation font.
const (
	DisambiguationYi rune = 0xE09A // displays 已
	DisambiguationJi rune = 0xE13E // displays 己
)

// Disambiguator tells 已 and 己 apart by comparing renderings to a font with
// known glyphs for both.
type Disambiguator struct {
	source   FontSource
	fontname string
	yi, ji   rune
	mx       sync.Mutex
	font     *font.ScalableFont
}

// NewDisambiguator creates a disambiguator using font fontname, where glyph
// yi displays 已 and glyph ji displays 己. The font is loaded from src on
// first use.
func NewDisambiguator(src FontSource, fontname string, yi, ji rune) *Disambiguator {
	return &Disambiguator{source: src, fontname: fontname, yi: yi, ji: ji}
}

func (d *Disambiguator) load(ctx context.Context) (*font.ScalableFont, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	if d.font != nil {
		return d.font, nil
	}
	f, err := d.source.Load(ctx, d.fontname)
	if err != nil {
		return nil, err
	}
	d.font = f
	return f, nil
}

// disambiguate decides between 已 and 己 for every glyph of t resolved to
// 己, if there is more than one. Failing to render leaves t unchanged.
func (m *Matcher) disambiguate(ctx context.Context, uf *font.ScalableFont, t table.Table) {
	if m.disamb == nil || t.Count('己') <= 1 {
		return
	}
	df, err := m.disamb.load(ctx)
	if err != nil {
		tracer().Errorf("cannot load disambiguation font %s, skipping 已/己: %v", m.disamb.fontname, err)
		return
	}
	yi, err := m.render.Render(df, m.conf.UnknownSize, m.disamb.yi)
	if err != nil {
		tracer().Errorf("cannot render 已 of %s: %v", m.disamb.fontname, err)
		return
	}
	ji, err := m.render.Render(df, m.conf.UnknownSize, m.disamb.ji)
	if err != nil {
		tracer().Errorf("cannot render 己 of %s: %v", m.disamb.fontname, err)
		return
	}
	decided := make(table.Table)
	for _, k := range t.Keys() {
		if t[k] != '己' {
			continue
		}
		g, err := m.render.Render(uf, m.conf.UnknownSize, k)
		if err != nil {
			tracer().Errorf("cannot render %U of %s: %v", k, uf.Fontname, err)
			return
		}
		if raster.Diff(yi.Bits, g.Bits) < raster.Diff(ji.Bits, g.Bits) {
			decided[k] = '已'
		} else {
			decided[k] = '己'
		}
	}
	for k, v := range decided {
		t[k] = v
	}
	tracer().Debugf("font %s: %d glyphs disambiguated as 已", uf.Fontname, decided.Count('已'))
}
