package fontregistry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jjfont/jjfont/core"
	"github.com/jjfont/jjfont/core/font"
	"github.com/npillmayer/schuko/tracing"
)

// Registry is a type for holding loaded fonts and the typecases derived
// from them. The reference font stays in the registry for the lifetime of
// the application, scrambled fonts are dropped as soon as they are resolved.
type Registry struct {
	sync.Mutex
	fonts     map[string]*font.ScalableFont
	typecases map[string]*font.TypeCase
}

var globalFontRegistry *Registry

var globalRegistryCreation sync.Once

// GlobalRegistry is an application-wide singleton to hold loaded fonts and
// typecases.
func GlobalRegistry() *Registry {
	globalRegistryCreation.Do(func() {
		globalFontRegistry = NewRegistry()
	})
	return globalFontRegistry
}

func NewRegistry() *Registry {
	fr := &Registry{
		fonts:     make(map[string]*font.ScalableFont),
		typecases: make(map[string]*font.TypeCase),
	}
	return fr
}

// StoreFont pushes a font into the registry if it isn't contained yet.
//
// The font will be stored using the normalized font name as a key. If this
// key is already associated with a font, that font will not be overridden.
func (fr *Registry) StoreFont(name string, f *font.ScalableFont) {
	if f == nil {
		tracer().Errorf("registry cannot store null font")
		return
	}
	normalizedName := NormalizeFontname(name)
	fr.Lock()
	defer fr.Unlock()
	if _, ok := fr.fonts[normalizedName]; !ok {
		tracer().Debugf("registry stores font %s as %s", f.Fontname, normalizedName)
		fr.fonts[normalizedName] = f
	}
}

// Font returns the font stored under name, if any.
func (fr *Registry) Font(name string) (*font.ScalableFont, bool) {
	fr.Lock()
	defer fr.Unlock()
	f, ok := fr.fonts[NormalizeFontname(name)]
	return f, ok
}

// TypeCase returns a typecase of a stored font at a given pixel size.
// Typecases are created on first use and cached afterwards.
func (fr *Registry) TypeCase(name string, size float64) (*font.TypeCase, error) {
	normalizedName := NormalizeFontname(name)
	tname := appendSize(normalizedName, size)
	fr.Lock()
	defer fr.Unlock()
	if t, ok := fr.typecases[tname]; ok {
		return t, nil
	}
	f, ok := fr.fonts[normalizedName]
	if !ok {
		tracer().Infof("registry does not contain font %s", normalizedName)
		return nil, core.Error(core.EMISSING, "font %s not found in registry", name)
	}
	t, err := f.PrepareCase(size)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("font registry has font %s, caches at %.2f", normalizedName, size)
	fr.typecases[tname] = t
	return t, nil
}

// Drop removes a font and all of its typecases from the registry.
func (fr *Registry) Drop(name string) {
	normalizedName := NormalizeFontname(name)
	fr.Lock()
	defer fr.Unlock()
	delete(fr.fonts, normalizedName)
	prefix := normalizedName + "@"
	for k := range fr.typecases {
		if strings.HasPrefix(k, prefix) {
			delete(fr.typecases, k)
		}
	}
	tracer().Debugf("registry dropped font %s", normalizedName)
}

// Len returns the number of fonts in the registry.
func (fr *Registry) Len() int {
	fr.Lock()
	defer fr.Unlock()
	return len(fr.fonts)
}

// LogFontList is a helper function to dump the list of known fonts and typecases
// in a registry to the trace-file (log-level Info).
func (fr *Registry) LogFontList() {
	fr.Lock()
	defer fr.Unlock()
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelInfo)
	tracer().Infof("--- registered fonts ---")
	for _, k := range sortedKeys(fr.fonts) {
		tracer().Infof("font [%s] = %v", k, fr.fonts[k].Fontname)
	}
	for _, k := range sortedKeys(fr.typecases) {
		tracer().Infof("typecase [%s] = %v", k, fr.typecases[k].ScalableFontParent().Fontname)
	}
	tracer().Infof("------------------------")
	tracer().SetTraceLevel(level)
}

// NormalizeFontname strips a file extension and lower-cases a font name.
func NormalizeFontname(fname string) string {
	fname = strings.TrimSpace(fname)
	fname = strings.ReplaceAll(fname, " ", "_")
	if dot := strings.LastIndex(fname, "."); dot > 0 {
		switch strings.ToLower(fname[dot:]) {
		case ".ttf", ".otf", ".woff2", ".woff":
			fname = fname[:dot]
		}
	}
	return strings.ToLower(fname)
}

func appendSize(fname string, size float64) string {
	return fmt.Sprintf("%s@%.2f", fname, size)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
