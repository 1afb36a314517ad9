package atlas

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/jjfont/jjfont/core"
	"github.com/jjfont/jjfont/engine/glyphing/phash"
)

// Entry is a character of the reference font together with its hash.
type Entry struct {
	Char rune
	Hash phash.Hash
}

// Atlas is an immutable set of entries, ordered by character.
// It is safe for concurrent use.
type Atlas struct {
	entries []Entry
	index   map[rune]int
}

// New creates an atlas from a set of entries. If a character occurs more
// than once, the last entry for it wins.
func New(entries []Entry) *Atlas {
	byChar := make(map[rune]phash.Hash, len(entries))
	for _, e := range entries {
		byChar[e.Char] = e.Hash
	}
	a := &Atlas{
		entries: make([]Entry, 0, len(byChar)),
		index:   make(map[rune]int, len(byChar)),
	}
	for r, h := range byChar {
		a.entries = append(a.entries, Entry{Char: r, Hash: h})
	}
	sort.Slice(a.entries, func(i, j int) bool {
		return a.entries[i].Char < a.entries[j].Char
	})
	for i, e := range a.entries {
		a.index[e.Char] = i
	}
	return a
}

// Len returns the number of characters in the atlas.
func (a *Atlas) Len() int {
	return len(a.entries)
}

// Entries returns the entries of the atlas, ordered by character.
func (a *Atlas) Entries() []Entry {
	return append([]Entry(nil), a.entries...)
}

// Lookup returns the hash of a character.
func (a *Atlas) Lookup(r rune) (phash.Hash, bool) {
	if i, ok := a.index[r]; ok {
		return a.entries[i].Hash, true
	}
	return phash.Hash{}, false
}

// Nearest returns the minimal Hamming distance between h and any hash of
// the atlas, together with all characters at this distance, in ascending
// order. For an empty atlas it returns -1 and no characters.
func (a *Atlas) Nearest(h phash.Hash) (int, []rune) {
	best := -1
	var chars []rune
	for _, e := range a.entries {
		d := h.Distance(e.Hash)
		switch {
		case best < 0 || d < best:
			best = d
			chars = append(chars[:0], e.Char)
		case d == best:
			chars = append(chars, e.Char)
		}
	}
	return best, chars
}

// --- Building --------------------------------------------------------------

// Window is a range of codepoints, bounds included.
type Window struct {
	Lo, Hi rune
}

// DefaultWindow covers the CJK Unified Ideographs of the GBK repertoire.
var DefaultWindow = Window{Lo: 0x4E00, Hi: 0x9FA5}

// Contains is a predicate: is r inside the window?
func (w Window) Contains(r rune) bool {
	return r >= w.Lo && r <= w.Hi
}

// HashFunc computes the hash of a character of the reference font.
type HashFunc func(r rune) (phash.Hash, error)

// Build hashes chars with up to workers goroutines. Characters for which
// hash reports core.EMISSING are left out; any other error aborts the
// build.
func Build(ctx context.Context, chars []rune, hash HashFunc, workers int) (*Atlas, error) {
	if workers < 1 {
		workers = 1
	}
	tracer().Infof("building atlas of %d characters", len(chars))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	todo := make(chan int)
	results := make([]Entry, len(chars))
	ok := make([]bool, len(chars))
	var errOnce sync.Once
	var buildErr error
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range todo {
				r := chars[i]
				h, err := hash(r)
				if err != nil {
					if core.Is(err, core.EMISSING) {
						tracer().Debugf("reference font lacks %U", r)
						continue
					}
					errOnce.Do(func() {
						buildErr = err
						cancel()
					})
					continue
				}
				results[i], ok[i] = Entry{Char: r, Hash: h}, true
			}
		}()
	}
feed:
	for i := range chars {
		select {
		case todo <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(todo)
	wg.Wait()
	if buildErr != nil {
		return nil, buildErr
	}
	if err := ctx.Err(); err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "atlas build cancelled")
	}
	entries := make([]Entry, 0, len(chars))
	for i, e := range results {
		if ok[i] {
			entries = append(entries, e)
		}
	}
	tracer().Infof("atlas holds %d characters", len(entries))
	return New(entries), nil
}

// --- Persistence -----------------------------------------------------------

// Load reads an atlas from a JSON file. A file which exists but cannot be
// read as an atlas results in an error with code core.ECORRUPT.
func Load(path string) (*Atlas, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.WrapError(err, core.EMISSING, "no atlas at %s", path)
	} else if err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "cannot read atlas %s", path)
	}
	var m map[string]phash.Hash
	if err = json.Unmarshal(data, &m); err != nil {
		return nil, core.WrapError(err, core.ECORRUPT, "atlas %s is corrupt", path)
	}
	entries := make([]Entry, 0, len(m))
	for k, h := range m {
		r, n := utf8.DecodeRuneInString(k)
		if r == utf8.RuneError || n != len(k) {
			return nil, core.Error(core.ECORRUPT, "atlas %s has invalid key %q", path, k)
		}
		entries = append(entries, Entry{Char: r, Hash: h})
	}
	return New(entries), nil
}

// Save writes the atlas to a JSON file, atomically.
func (a *Atlas) Save(path string) error {
	m := make(map[string]phash.Hash, len(a.entries))
	for _, e := range a.entries {
		m[string(e.Char)] = e.Hash
	}
	data, err := json.Marshal(m)
	if err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot encode atlas")
	}
	return core.WriteFileAtomic(path, data, 0644)
}

// LoadOrBuild loads the atlas persisted at path. If there is none, or it is
// corrupt, the atlas is built from chars and persisted.
func LoadOrBuild(ctx context.Context, path string, chars []rune, hash HashFunc, workers int) (*Atlas, error) {
	a, err := Load(path)
	if err == nil {
		tracer().Debugf("loaded atlas of %d characters from %s", a.Len(), path)
		return a, nil
	}
	if !core.Is(err, core.EMISSING) && !core.Is(err, core.ECORRUPT) {
		return nil, err
	}
	tracer().Infof("%v, rebuilding", err)
	if a, err = Build(ctx, chars, hash, workers); err != nil {
		return nil, err
	}
	if err = a.Save(path); err != nil {
		return nil, err
	}
	return a, nil
}
