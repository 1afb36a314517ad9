package publish

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jjfont/jjfont/core"
	"github.com/jjfont/jjfont/core/locate/resources"
	"github.com/jjfont/jjfont/core/table"
	"golang.org/x/text/unicode/runenames"
)

//go:embed templates/*.html
var templateFS embed.FS

// FontURL is the location pages load scrambled fonts from. It takes the
// font name as its single argument.
const FontURL = "https://static.jjwxc.net/tmp/fonts/%s.woff2?h=my.jjwxc.net"

// Publisher writes pages and bundles.
type Publisher struct {
	tables    string // folder of tables and pages
	dist      string // folder of bundles
	templates *template.Template
}

// New creates a publisher writing pages to folder tablesDir and bundles to
// folder distDir.
func New(tablesDir, distDir string) (*Publisher, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "cannot parse page templates")
	}
	return &Publisher{tables: tablesDir, dist: distDir, templates: tmpl}, nil
}

type row struct {
	Ord   string
	Glyph string
	Char  string
	Name  string
}

type page struct {
	Fontname string
	FontURL  string
	Rows     []row
}

// PagePath returns the location of the page for font name.
func (p *Publisher) PagePath(name string) string {
	return filepath.Join(p.tables, name+".html")
}

// Page renders the HTML page for font name.
func (p *Publisher) Page(name string, t table.Table) ([]byte, error) {
	pg := page{Fontname: name, FontURL: fmt.Sprintf(FontURL, name)}
	for _, k := range t.Keys() {
		v := t[k]
		pg.Rows = append(pg.Rows, row{
			Ord:   fmt.Sprintf("U+%04X", k),
			Glyph: string(k),
			Char:  string(v),
			Name:  runenames.Name(v),
		})
	}
	var buf bytes.Buffer
	if err := p.templates.ExecuteTemplate(&buf, "font.html", pg); err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "cannot render page for font %s", name)
	}
	return buf.Bytes(), nil
}

// WritePage writes the HTML page for font name next to its table.
func (p *Publisher) WritePage(name string, t table.Table) error {
	html, err := p.Page(name, t)
	if err != nil {
		return err
	}
	return core.WriteFileAtomic(p.PagePath(name), html, 0644)
}

// RemovePage deletes the page for font name, if any.
func (p *Publisher) RemovePage(name string) error {
	err := os.Remove(p.PagePath(name))
	if err != nil && !os.IsNotExist(err) {
		return core.WrapError(err, core.EINTERNAL, "cannot remove page for font %s", name)
	}
	return nil
}

// --- Bundles ---------------------------------------------------------------

const tsPrologue = "export interface jjwxcFontTable {[index: string]: string;} " +
	"interface jjwxcFontTables {[index: string]: jjwxcFontTable;} " +
	"export const jjwxcFontTables: jjwxcFontTables = "

// sortFontnames sorts names case-insensitively.
func sortFontnames(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
}

// BundleJSON encodes tables as a single JSON object, fonts ordered
// case-insensitively by name.
func BundleJSON(tables map[string]table.Table) ([]byte, error) {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sortFontnames(names)
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		t, err := json.Marshal(tables[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(t)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Summary reports the outcome of Bundle.
type Summary struct {
	Fonts   int
	Skipped []string // tables which could not be read
	Docs    string   // folder of the static site
}

// Bundle reads all tables of cache and writes bundle.json, bundle.ts and
// the static site folder docs to the dist folder.
func (p *Publisher) Bundle(cache *table.Cache) (Summary, error) {
	var summary Summary
	names, err := cache.Names()
	if err != nil {
		return summary, err
	}
	tables := make(map[string]table.Table, len(names))
	for _, name := range names {
		t, _, err := cache.Load(name)
		if err != nil {
			tracer().Errorf("skipping table of font %s: %v", name, err)
			summary.Skipped = append(summary.Skipped, name)
			continue
		}
		tables[name] = t
	}
	bundle, err := BundleJSON(tables)
	if err != nil {
		return summary, core.WrapError(err, core.EINTERNAL, "cannot encode bundle")
	}
	ts := append([]byte(tsPrologue), bundle...)
	docs, err := resources.CacheDirPath(p.dist, "docs")
	if err != nil {
		return summary, err
	}
	summary.Docs = docs
	for _, dir := range []string{p.dist, docs} {
		if err = core.WriteFileAtomic(filepath.Join(dir, "bundle.json"), bundle, 0644); err != nil {
			return summary, err
		}
		if err = core.WriteFileAtomic(filepath.Join(dir, "bundle.ts"), ts, 0644); err != nil {
			return summary, err
		}
	}
	fontnames := make([]string, 0, len(tables))
	for name, t := range tables {
		html, err := p.Page(name, t)
		if err != nil {
			return summary, err
		}
		if err = core.WriteFileAtomic(filepath.Join(docs, name+".html"), html, 0644); err != nil {
			return summary, err
		}
		fontnames = append(fontnames, name)
	}
	sort.Strings(fontnames)
	var index bytes.Buffer
	err = p.templates.ExecuteTemplate(&index, "index.html", struct{ Fontnames []string }{fontnames})
	if err != nil {
		return summary, core.WrapError(err, core.EINTERNAL, "cannot render index page")
	}
	if err = core.WriteFileAtomic(filepath.Join(docs, "index.html"), index.Bytes(), 0644); err != nil {
		return summary, err
	}
	summary.Fonts = len(tables)
	tracer().Infof("bundled %d tables into %s", summary.Fonts, p.dist)
	return summary, nil
}
