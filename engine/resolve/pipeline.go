package resolve

import (
	"context"

	"github.com/jjfont/jjfont/core/font"
	"github.com/jjfont/jjfont/core/table"
	"github.com/jjfont/jjfont/engine/match"
)

// Publisher writes human readable pages for resolved fonts.
type Publisher interface {
	WritePage(name string, t table.Table) error
}

// Forgetter drops everything held for a font once it has been resolved.
type Forgetter interface {
	Forget(fontname string)
}

// Pipeline is the Resolver used in production: it loads a scrambled font,
// matches its glyphs, and stores the resulting table.
type Pipeline struct {
	Loader    match.FontSource
	Matcher   *match.Matcher
	Cache     *table.Cache
	Publisher Publisher // optional
	Forgetter Forgetter // optional
}

// Resolve runs the pipeline for font name. If any step up to storing the
// table fails, nothing is stored.
func (p *Pipeline) Resolve(ctx context.Context, name string) error {
	tracer().Infof("resolving font %s", name)
	uf, err := p.Loader.Load(ctx, name)
	if err != nil {
		return err
	}
	defer p.forget(uf)
	t, err := p.Matcher.Resolve(ctx, uf)
	if err != nil {
		return err
	}
	if err = p.Cache.Save(name, t); err != nil {
		return err
	}
	if p.Publisher != nil {
		if err = p.Publisher.WritePage(name, t); err != nil {
			tracer().Errorf("cannot write page for font %s: %v", name, err)
		}
	}
	return nil
}

func (p *Pipeline) forget(uf *font.ScalableFont) {
	if p.Forgetter != nil {
		p.Forgetter.Forget(uf.Fontname)
	}
}

var _ Resolver = (*Pipeline)(nil)
