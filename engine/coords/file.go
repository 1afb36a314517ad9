package coords

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/jjfont/jjfont/core"
	"github.com/jjfont/jjfont/core/font"
)

// FileIndex is an Index persisted as a JSON array. Appends are written
// through to the file immediately. Other processes appending to the same
// file are synchronized by an advisory lock on path + ".lock"; their entries
// are merged in before each write.
type FileIndex struct {
	mx      sync.RWMutex
	path    string
	entries []Entry
}

// OpenFileIndex loads the index at path. A missing file yields an empty
// index; a file which cannot be read as an index results in an error with
// code core.ECORRUPT.
func OpenFileIndex(path string) (*FileIndex, error) {
	ix := &FileIndex{path: path}
	unlock, err := lockFile(path + ".lock")
	if err != nil {
		return nil, err
	}
	defer unlock()
	if ix.entries, err = readEntries(path); err != nil {
		return nil, err
	}
	tracer().Infof("coordinate index %s has %d entries", path, len(ix.entries))
	return ix, nil
}

// Path returns the location of the index file.
func (ix *FileIndex) Path() string {
	return ix.path
}

func (ix *FileIndex) Snapshot() []Entry {
	ix.mx.RLock()
	defer ix.mx.RUnlock()
	return ix.entries[:len(ix.entries):len(ix.entries)]
}

func (ix *FileIndex) Len() int {
	ix.mx.RLock()
	defer ix.mx.RUnlock()
	return len(ix.entries)
}

// Append adds entries to the index and rewrites the index file.
func (ix *FileIndex) Append(added ...Entry) error {
	if len(added) == 0 {
		return nil
	}
	ix.mx.Lock()
	defer ix.mx.Unlock()
	unlock, err := lockFile(ix.path + ".lock")
	if err != nil {
		return err
	}
	defer unlock()
	onDisk, err := readEntries(ix.path)
	if err != nil {
		return err
	}
	entries := ix.entries
	if len(onDisk) > len(entries) {
		tracer().Debugf("merging %d entries appended by others", len(onDisk)-len(ix.entries))
		entries = onDisk
	}
	entries = append(entries[:len(entries):len(entries)], added...)
	data, err := json.Marshal(entries)
	if err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot encode coordinate index")
	}
	if err = core.WriteFileAtomic(ix.path, data, 0644); err != nil {
		return err
	}
	ix.entries = entries
	tracer().Debugf("coordinate index: added %d entries, has %d", len(added), len(entries))
	return nil
}

var _ Index = (*FileIndex)(nil)

func readEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "cannot read coordinate index %s", path)
	}
	entries, err := decodeEntries(data)
	if err != nil {
		return nil, core.WrapError(err, core.ECORRUPT, "coordinate index %s is corrupt", path)
	}
	return entries, nil
}

// decodeEntries accepts a JSON array of entries, or an object from
// characters to outlines. Entries of the latter keep the order of the keys
// in the document; a repeated key keeps its first position and its last
// outline.
func decodeEntries(data []byte) ([]Entry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '[' {
		var entries []Entry
		err := json.Unmarshal(data, &entries)
		return entries, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil {
		return nil, err
	} else if tok != json.Delim('{') {
		return nil, fmt.Errorf("coordinate index must be an array or object, found %v", tok)
	}
	var entries []Entry
	at := make(map[rune]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		r, err := decodeChar(tok.(string))
		if err != nil {
			return nil, err
		}
		var outline font.Outline
		if err = dec.Decode(&outline); err != nil {
			return nil, err
		}
		if i, ok := at[r]; ok {
			entries[i].Coords = outline
			continue
		}
		at[r] = len(entries)
		entries = append(entries, Entry{Char: r, Coords: outline})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}
