package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/jjfont/jjfont/backend/integrity"
	"github.com/jjfont/jjfont/backend/publish"
	"github.com/jjfont/jjfont/backend/server"
	"github.com/jjfont/jjfont/core"
	"github.com/jjfont/jjfont/core/font"
	"github.com/jjfont/jjfont/core/locate/resources"
	"github.com/jjfont/jjfont/core/parameters"
	"github.com/jjfont/jjfont/core/table"
	"github.com/jjfont/jjfont/engine/atlas"
	"github.com/jjfont/jjfont/engine/coords"
	"github.com/jjfont/jjfont/engine/glyphing/raster"
	"github.com/jjfont/jjfont/engine/match"
	"github.com/jjfont/jjfont/engine/resolve"
	"github.com/pterm/pterm"
)

// File names below the assets folder.
const (
	coordsFile    = "coorTable.json"
	overridesFile = "overrides.json"
	atlasSuffix   = "-Hash-Table.json"
)

// app holds the wired resolution engine.
type app struct {
	params  *parameters.Parameters
	local   *resources.FontLoader // never fetches
	matcher *match.Matcher
	tables  *table.Cache
	pages   *publish.Publisher
	coord   *resolve.Coordinator
}

func newRemote(params *parameters.Parameters) *resources.Remote {
	return resources.NewRemote(
		params.String(parameters.P_REMOTEURL),
		params.Int(parameters.P_REMOTERETRIES),
		params.Duration(parameters.P_REMOTEBACKOFF),
		params.Duration(parameters.P_REMOTETIMEOUT),
	)
}

// atlasPath is the location of the persisted atlas of reference font path.
func atlasPath(assets, path string) string {
	base := filepath.Base(path)
	return filepath.Join(assets, strings.TrimSuffix(base, filepath.Ext(base))+atlasSuffix)
}

// setup loads the reference font with its atlas, the coordinate index and
// the overrides, and wires the resolution pipeline.
func setup(ctx context.Context, params *parameters.Parameters) (*app, error) {
	dirs, err := resources.Bootstrap(params.String(parameters.P_DATAROOT))
	if err != nil {
		return nil, err
	}
	loader := resources.NewFontLoader(dirs.Fonts, newRemote(params))
	ref, err := resources.ResolveReferenceFont(params.String(parameters.P_REFERENCEFONT)).Await(ctx)
	if err != nil {
		return nil, err
	}
	rz, err := raster.NewRasterizer(nil, params.Int(parameters.P_CANVAS), params.Int(parameters.P_RENDERCACHE))
	if err != nil {
		return nil, err
	}
	conf := match.ConfigFrom(params)
	workers := params.Int(parameters.P_WORKERS)
	a, err := match.LoadReferenceAtlas(ctx, atlasPath(dirs.Assets, ref.Filepath), ref,
		atlas.DefaultWindow, rz, conf, workers)
	if err != nil {
		return nil, err
	}
	pterm.Info.Printf("Reference atlas holds %d characters\n", a.Len())
	ix, err := coords.OpenFileIndex(filepath.Join(dirs.Assets, coordsFile))
	if err != nil {
		return nil, err
	}
	overrides, err := match.LoadOverrides(filepath.Join(dirs.Assets, overridesFile))
	if err != nil {
		return nil, err
	}
	disamb := match.NewDisambiguator(loader, params.String(parameters.P_DISAMBIGUATIONFONT),
		match.DisambiguationYi, match.DisambiguationJi)
	matcher := match.NewMatcher(ref, a, ix, rz, conf,
		match.WithOverrides(overrides), match.WithDisambiguator(disamb))
	tables := table.NewCache(dirs.Tables)
	pages, err := publish.New(dirs.Tables, dirs.Dist)
	if err != nil {
		return nil, err
	}
	pipeline := &resolve.Pipeline{
		Loader:    loader,
		Matcher:   matcher,
		Cache:     tables,
		Publisher: pages,
		Forgetter: rz,
	}
	coord := resolve.NewCoordinator(tables, pipeline,
		resolve.WithWorkers(workers),
		resolve.WithWaitWindow(params.Duration(parameters.P_WAITWINDOW)))
	return &app{
		params:  params,
		local:   resources.NewFontLoader(dirs.Fonts, nil),
		matcher: matcher,
		tables:  tables,
		pages:   pages,
		coord:   coord,
	}, nil
}

// resolveFonts resolves fonts on the worker pool and waits for all of them.
func (a *app) resolveFonts(ctx context.Context, names []string) error {
	if len(names) == 0 {
		pterm.Info.Println("Nothing to resolve")
		return nil
	}
	a.coord.Start(ctx)
	defer a.coord.Stop()
	spinner, _ := pterm.DefaultSpinner.Start("Resolving ", len(names), " fonts")
	failed, err := a.coord.ResolveAll(ctx, names)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	pterm.Success.Printf("Resolved %d of %d fonts\n", len(names)-len(failed), len(names))
	if len(failed) > 0 {
		pterm.Warning.Printf("No table for: %s\n", strings.Join(failed, ", "))
	}
	if lost := a.matcher.LostOutlines(); lost > 0 {
		pterm.Warning.Printf("%d outlines could not be added to the coordinate index\n", lost)
	}
	return nil
}

// resolveCached resolves the fonts of the font cache, optionally only those
// without a table.
func (a *app) resolveCached(ctx context.Context, onlyNew bool) error {
	names, err := a.local.Cached()
	if err != nil {
		return err
	}
	if onlyNew {
		fresh := names[:0]
		for _, name := range names {
			if !a.tables.Exists(name) {
				fresh = append(fresh, name)
			}
		}
		names = fresh
	}
	return a.resolveFonts(ctx, names)
}

// forEachTable calls f for every stored table together with its cached
// font, or nil if the font is not cached.
func (a *app) forEachTable(ctx context.Context, f func(name string, t table.Table, uf *font.ScalableFont) error) error {
	names, err := a.tables.Names()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err = ctx.Err(); err != nil {
			return core.WrapError(err, core.EINTERNAL, "cancelled")
		}
		t, _, err := a.tables.Load(name)
		if err != nil {
			pterm.Warning.Printf("Skipping table %s: %v\n", name, err)
			continue
		}
		uf, err := a.local.Load(ctx, name)
		if err != nil {
			tracer().Infof("font %s not available: %v", name, err)
			uf = nil
		}
		if err = f(name, t, uf); err != nil {
			return err
		}
	}
	return nil
}

// patch re-applies corrections, disambiguation and overrides to all tables.
func (a *app) patch(ctx context.Context) error {
	n := 0
	err := a.forEachTable(ctx, func(name string, t table.Table, uf *font.ScalableFont) error {
		patched := a.matcher.Correct(ctx, name, uf, t)
		if err := a.tables.Save(name, patched); err != nil {
			return err
		}
		n++
		return a.pages.WritePage(name, patched)
	})
	pterm.Success.Printf("Patched %d tables\n", n)
	return err
}

// seed adds the outlines of all resolved and cached fonts to the coordinate
// index.
func (a *app) seed(ctx context.Context) error {
	total := 0
	err := a.forEachTable(ctx, func(name string, t table.Table, uf *font.ScalableFont) error {
		if uf == nil {
			return nil
		}
		n, err := a.matcher.Seed(uf, t)
		total += n
		return err
	})
	pterm.Success.Printf("Added %d outlines to the coordinate index\n", total)
	return err
}

// serve answers table requests over HTTP until ctx is done.
func (a *app) serve(ctx context.Context) error {
	h, err := server.NewHandler(a.coord, a.params.String(parameters.P_FONTPATTERN))
	if err != nil {
		return err
	}
	a.coord.Start(ctx)
	defer a.coord.Stop()
	addr := a.params.String(parameters.P_LISTEN)
	pterm.Info.Printf("Serving tables on http://%s/\n", addr)
	return server.ListenAndServe(ctx, server.Config{
		Addr:        addr,
		Connections: a.params.Int(parameters.P_CONNECTIONS),
	}, h)
}

// runBundle writes bundles and the static site from all tables.
func runBundle(params *parameters.Parameters) error {
	dirs, err := resources.Bootstrap(params.String(parameters.P_DATAROOT))
	if err != nil {
		return err
	}
	pages, err := publish.New(dirs.Tables, dirs.Dist)
	if err != nil {
		return err
	}
	summary, err := pages.Bundle(table.NewCache(dirs.Tables))
	if err != nil {
		return err
	}
	pterm.Success.Printf("Bundled %d fonts, site in %s\n", summary.Fonts, summary.Docs)
	if len(summary.Skipped) > 0 {
		pterm.Warning.Printf("Skipped unreadable tables: %s\n", strings.Join(summary.Skipped, ", "))
	}
	return nil
}

// runClean removes cached fonts which differ from the content site.
func runClean(ctx context.Context, params *parameters.Parameters) error {
	dirs, err := resources.Bootstrap(params.String(parameters.P_DATAROOT))
	if err != nil {
		return err
	}
	pages, err := publish.New(dirs.Tables, dirs.Dist)
	if err != nil {
		return err
	}
	checker := &integrity.Checker{
		Fonts:  resources.NewFontLoader(dirs.Fonts, nil),
		Remote: newRemote(params),
		Tables: table.NewCache(dirs.Tables),
		Pages:  pages,
	}
	results, err := checker.Clean(ctx)
	if rerr := integrity.Report(os.Stdout, results); rerr != nil {
		tracer().Errorf("cannot print report: %v", rerr)
	}
	return err
}
