/*
Package table holds resolution tables and their on-disk cache.

A resolution table maps the codepoints of a scrambled font to the
characters their glyphs display. Tables are stored as JSON objects with
sorted keys, one file per font, in the tables folder of the data root.
Files are always replaced as a whole, so readers never see partial
tables.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package table

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jjfont/jjfont/core"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'jjfont.table'.
func tracer() tracing.Trace {
	return tracing.Select("jjfont.table")
}

// Table maps glyph codepoints of a scrambled font to resolved characters.
type Table map[rune]rune

// Keys returns the glyph codepoints of t in ascending order.
func (t Table) Keys() []rune {
	keys := make([]rune, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Count returns how many glyphs resolve to r.
func (t Table) Count(r rune) int {
	n := 0
	for _, v := range t {
		if v == r {
			n++
		}
	}
	return n
}

// Clone returns a copy of t.
func (t Table) Clone() Table {
	c := make(Table, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

// Encode returns t as a JSON object with sorted keys and 4-space
// indentation, the format of table files.
func (t Table) Encode() ([]byte, error) {
	m := make(map[string]string, len(t))
	for k, v := range t {
		m[string(k)] = string(v)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (t Table) MarshalJSON() ([]byte, error) {
	return t.Encode()
}

func (t *Table) UnmarshalJSON(b []byte) error {
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	tt := make(Table, len(m))
	for k, v := range m {
		kr, err := single(k)
		if err != nil {
			return err
		}
		vr, err := single(v)
		if err != nil {
			return err
		}
		tt[kr] = vr
	}
	*t = tt
	return nil
}

func single(s string) (rune, error) {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || n != len(s) {
		return 0, core.Error(core.ECORRUPT, "not a single character: %q", s)
	}
	return r, nil
}

// --- Cache -----------------------------------------------------------------

// Cache is the folder of persisted resolution tables.
type Cache struct {
	dir string
}

// NewCache creates a cache for folder dir.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the cache folder.
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns the location of the table for font name.
func (c *Cache) Path(name string) string {
	return filepath.Join(c.dir, name+".json")
}

// Exists is a predicate: is there a table for font name?
func (c *Cache) Exists(name string) bool {
	fi, err := os.Stat(c.Path(name))
	return err == nil && fi.Mode().IsRegular()
}

// Open returns the raw JSON of the table for font name together with its
// modification time. A missing table results in an error with code
// core.EMISSING.
func (c *Cache) Open(name string) ([]byte, time.Time, error) {
	path := c.Path(name)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, time.Time{}, core.WrapError(err, core.EMISSING, "no table for font %s", name)
	} else if err != nil {
		return nil, time.Time{}, core.WrapError(err, core.EINTERNAL, "cannot open table %s", path)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, time.Time{}, core.WrapError(err, core.EINTERNAL, "cannot stat table %s", path)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, time.Time{}, core.WrapError(err, core.EINTERNAL, "cannot read table %s", path)
	}
	return data, fi.ModTime(), nil
}

// Load reads the table for font name.
func (c *Cache) Load(name string) (Table, time.Time, error) {
	data, mtime, err := c.Open(name)
	if err != nil {
		return nil, mtime, err
	}
	var t Table
	if err = json.Unmarshal(data, &t); err != nil {
		return nil, mtime, core.WrapError(err, core.ECORRUPT, "table for font %s is corrupt", name)
	}
	return t, mtime, nil
}

// Save writes the table for font name, replacing an existing one.
func (c *Cache) Save(name string, t Table) error {
	data, err := t.Encode()
	if err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot encode table for font %s", name)
	}
	if err = core.WriteFileAtomic(c.Path(name), data, 0644); err != nil {
		return err
	}
	tracer().Infof("saved table for font %s (%d glyphs)", name, len(t))
	return nil
}

// Remove deletes the table for font name, if any.
func (c *Cache) Remove(name string) error {
	err := os.Remove(c.Path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return core.WrapError(err, core.EINTERNAL, "cannot remove table for font %s", name)
	}
	return nil
}

// Names returns the names of all fonts with a table, sorted.
func (c *Cache) Names() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot list tables in %s", c.dir)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	sort.Strings(names)
	return names, nil
}
