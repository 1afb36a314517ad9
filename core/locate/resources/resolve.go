package resources

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/jjfont/jjfont/core"
	"github.com/jjfont/jjfont/core/font"
)

// Fetcher downloads a scrambled font by name.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// FontLoader loads scrambled fonts, preferring the local cache over the
// remote site.
type FontLoader struct {
	dir    string
	remote Fetcher
}

// NewFontLoader creates a loader caching fonts in folder dir.
func NewFontLoader(dir string, remote Fetcher) *FontLoader {
	return &FontLoader{dir: dir, remote: remote}
}

// ValidFontname is a predicate: may name be used as a font file name?
func ValidFontname(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`+"\x00")
}

// Path returns the cache location of font name.
func (l *FontLoader) Path(name string) string {
	return filepath.Join(l.dir, name+".woff2")
}

// Load returns the font name. A font not cached locally is fetched and
// written to the cache before it is parsed. If the font cannot be parsed,
// the cached copy is removed and an error with code core.ECORRUPT is
// returned.
func (l *FontLoader) Load(ctx context.Context, name string) (*font.ScalableFont, error) {
	if !ValidFontname(name) {
		return nil, core.Error(core.EINVALID, "invalid font name %q", name)
	}
	path := l.Path(name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if l.remote == nil {
			return nil, core.Error(core.EMISSING, "font %s not cached", name)
		}
		tracer().Infof("font %s not cached, fetching", name)
		if data, err = l.remote.Fetch(ctx, name); err != nil {
			return nil, err
		}
		if err = core.WriteFileAtomic(path, data, 0644); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "cannot read font %s", path)
	}
	f, err := font.ParseOpenTypeFont(data)
	if err != nil {
		tracer().Errorf("font %s is corrupt, removing %s: %v", name, path, err)
		if rerr := os.Remove(path); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			tracer().Errorf("cannot remove %s: %v", path, rerr)
		}
		return nil, core.WrapError(err, core.ECORRUPT, "font %s is corrupt", name)
	}
	f.Fontname = name
	f.Filepath = path
	return f, nil
}

// Cached returns the names of all fonts in the cache, sorted.
func (l *FontLoader) Cached() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot list fonts in %s", l.dir)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".woff2") {
			names = append(names, strings.TrimSuffix(e.Name(), ".woff2"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes the cached copy of font name, if any.
func (l *FontLoader) Remove(name string) error {
	err := os.Remove(l.Path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return core.WrapError(err, core.EINTERNAL, "cannot remove font %s", name)
	}
	return nil
}

// --- Promises --------------------------------------------------------------

type fontPlusErr struct {
	font *font.ScalableFont
	err  error
}

// FontPromise delivers a font loaded in the background.
type FontPromise interface {
	Font() (*font.ScalableFont, error)
	Await(ctx context.Context) (*font.ScalableFont, error)
}

type fontLoader struct {
	await func(ctx context.Context) (*font.ScalableFont, error)
}

func (loader fontLoader) Font() (*font.ScalableFont, error) {
	return loader.await(context.Background())
}

func (loader fontLoader) Await(ctx context.Context) (*font.ScalableFont, error) {
	return loader.await(ctx)
}

func promise(load func() (*font.ScalableFont, error)) FontPromise {
	done := make(chan struct{})
	result := fontPlusErr{}
	go func() {
		result.font, result.err = load()
		close(done)
	}()
	return fontLoader{
		await: func(ctx context.Context) (*font.ScalableFont, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-done:
				return result.font, result.err
			}
		},
	}
}

// ResolveFont loads scrambled font name in the background.
func (l *FontLoader) ResolveFont(ctx context.Context, name string) FontPromise {
	return promise(func() (*font.ScalableFont, error) {
		return l.Load(ctx, name)
	})
}

// ResolveReferenceFont loads the reference font in the background.
// location is either a path to a font file or the file name of a system
// font.
func ResolveReferenceFont(location string) FontPromise {
	return promise(func() (*font.ScalableFont, error) {
		path := location
		if _, err := os.Stat(path); err != nil {
			fpath, ferr := findfont.Find(filepath.Base(location)) // try to find as system font
			if ferr != nil || fpath == "" {
				return nil, core.WrapError(err, core.EMISSING, "reference font %s not found", location)
			}
			tracer().Debugf("%s is a system font", location)
			path = fpath
		}
		tracer().Infof("loading reference font %s", path)
		return font.LoadOpenTypeFont(path)
	})
}
