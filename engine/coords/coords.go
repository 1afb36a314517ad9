package coords

import (
	"encoding/json"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/jjfont/jjfont/core/font"
)

// Entry is an outline identified as a character.
type Entry struct {
	Char   rune
	Coords font.Outline
}

type jsonEntry struct {
	Char   string       `json:"char"`
	Coords font.Outline `json:"coords"`
}

// MarshalJSON encodes an entry as {"char": "字", "coords": [[x,y],…]}.
func (e Entry) MarshalJSON() ([]byte, error) {
	coords := e.Coords
	if coords == nil {
		coords = font.Outline{}
	}
	return json.Marshal(jsonEntry{Char: string(e.Char), Coords: coords})
}

func (e *Entry) UnmarshalJSON(b []byte) error {
	var je jsonEntry
	if err := json.Unmarshal(b, &je); err != nil {
		return err
	}
	r, err := decodeChar(je.Char)
	if err != nil {
		return err
	}
	e.Char, e.Coords = r, je.Coords
	return nil
}

func decodeChar(s string) (rune, error) {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || n != len(s) {
		return 0, fmt.Errorf("not a single character: %q", s)
	}
	return r, nil
}

// Index is an append-only list of identified outlines.
type Index interface {
	// Snapshot returns the current entries in insertion order. The result
	// may be stale, but is never modified afterwards.
	Snapshot() []Entry
	// Append adds entries at the end of the index.
	Append(entries ...Entry) error
	// Len returns the number of entries.
	Len() int
}

// Similar is a predicate: do outlines a and b have the same number of
// points, with every pair of corresponding points at most fuzz units apart
// on both axes?
func Similar(a, b font.Outline, fuzz int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if abs(a[i].X-b[i].X) > fuzz || abs(a[i].Y-b[i].Y) > fuzz {
			return false
		}
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// QuickMatch searches entries in order for the first outline similar to
// outline and returns its character.
func QuickMatch(entries []Entry, outline font.Outline, fuzz int) (rune, bool) {
	for _, e := range entries {
		if Similar(e.Coords, outline, fuzz) {
			return e.Char, true
		}
	}
	return 0, false
}

// --- In-memory index -------------------------------------------------------

// MemoryIndex is an Index without persistence.
type MemoryIndex struct {
	mx      sync.RWMutex
	entries []Entry
}

// NewMemoryIndex creates an index holding a copy of entries.
func NewMemoryIndex(entries ...Entry) *MemoryIndex {
	return &MemoryIndex{entries: append([]Entry(nil), entries...)}
}

func (ix *MemoryIndex) Snapshot() []Entry {
	ix.mx.RLock()
	defer ix.mx.RUnlock()
	return ix.entries[:len(ix.entries):len(ix.entries)]
}

func (ix *MemoryIndex) Append(entries ...Entry) error {
	ix.mx.Lock()
	defer ix.mx.Unlock()
	ix.entries = append(ix.entries, entries...)
	return nil
}

func (ix *MemoryIndex) Len() int {
	ix.mx.RLock()
	defer ix.mx.RUnlock()
	return len(ix.entries)
}

var _ Index = (*MemoryIndex)(nil)
