package coords

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jjfont/jjfont/core"
	"github.com/jjfont/jjfont/core/font"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var square = font.Outline{{0, 0}, {0, 100}, {100, 100}, {100, 0}}

func shifted(o font.Outline, dx, dy int) font.Outline {
	s := make(font.Outline, len(o))
	for i, p := range o {
		s[i] = font.Point{X: p.X + dx, Y: p.Y + dy}
	}
	return s
}

func TestSimilar(t *testing.T) {
	assert.True(t, Similar(square, square, 0))
	assert.True(t, Similar(square, shifted(square, 20, -20), 20))
	assert.False(t, Similar(square, shifted(square, 21, 0), 20))
	assert.False(t, Similar(square, square[:3], 20))
	assert.True(t, Similar(nil, font.Outline{}, 20))
}

func TestQuickMatchFirstWins(t *testing.T) {
	entries := []Entry{
		{Char: '口', Coords: shifted(square, 5, 5)},
		{Char: '囗', Coords: square},
	}
	r, ok := QuickMatch(entries, square, 20)
	require.True(t, ok)
	assert.Equal(t, '口', r, "first similar entry must win, not the closest")
	_, ok = QuickMatch(entries, shifted(square, 50, 0), 20)
	assert.False(t, ok)
}

func TestEntryJSON(t *testing.T) {
	b, err := json.Marshal(Entry{Char: '字', Coords: font.Outline{{1, 2}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"char":"字","coords":[[1,2]]}`, string(b))
	var e Entry
	require.NoError(t, json.Unmarshal(b, &e))
	assert.Equal(t, '字', e.Char)
	assert.Error(t, json.Unmarshal([]byte(`{"char":"字字","coords":[]}`), &e))
}

func TestFileIndexAppends(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "jjfont.coords")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "coorTable.json")
	ix, err := OpenFileIndex(path)
	require.NoError(t, err)
	assert.Equal(t, 0, ix.Len())
	require.NoError(t, ix.Append(Entry{Char: '口', Coords: square}))
	snap := ix.Snapshot()
	require.NoError(t, ix.Append(Entry{Char: '口', Coords: shifted(square, 1, 1)}))
	assert.Len(t, snap, 1, "snapshots must not change")
	assert.Equal(t, 2, ix.Len())
	//
	other, err := OpenFileIndex(path)
	require.NoError(t, err)
	assert.Equal(t, ix.Snapshot(), other.Snapshot())
	// appends of another index on the same file are merged, never lost
	require.NoError(t, other.Append(Entry{Char: '田', Coords: square}))
	require.NoError(t, ix.Append(Entry{Char: '目', Coords: square}))
	reread, err := OpenFileIndex(path)
	require.NoError(t, err)
	chars := []rune{}
	for _, e := range reread.Snapshot() {
		chars = append(chars, e.Char)
	}
	assert.Equal(t, []rune{'口', '口', '田', '目'}, chars)
}

func TestFileIndexConcurrentAppends(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "jjfont.coords")
	defer teardown()
	//
	ix, err := OpenFileIndex(filepath.Join(t.TempDir(), "coorTable.json"))
	require.NoError(t, err)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, ix.Append(Entry{Char: rune('a' + i), Coords: square}))
			_, _ = QuickMatch(ix.Snapshot(), square, 0)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 8, ix.Len())
}

func TestFileIndexLegacyAndCorrupt(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "jjfont.coords")
	defer teardown()
	//
	dir := t.TempDir()
	legacy := filepath.Join(dir, "legacy.json")
	require.NoError(t, os.WriteFile(legacy, []byte(`{"田": [[0,0],[1,1]], "口": [[2,2]]}`), 0644))
	ix, err := OpenFileIndex(legacy)
	require.NoError(t, err)
	snap := ix.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, '田', snap[0].Char) // document order, not codepoint order
	assert.Equal(t, '口', snap[1].Char)
	assert.Equal(t, font.Outline{{2, 2}}, snap[1].Coords)
	//
	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte(`[{"char": 1}`), 0644))
	_, err = OpenFileIndex(corrupt)
	assert.Equal(t, core.ECORRUPT, core.Code(err))
}

func TestLegacyIndexKeepsKeyOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "jjfont.coords")
	defer teardown()
	//
	// U+679C 果 sorts after U+6772 杲, both outlines are within tolerance
	path := filepath.Join(t.TempDir(), "coorTable.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"果": [[0,0],[0,100],[100,100],[100,0]],
		"杲": [[5,5],[5,105],[105,105],[105,5]],
		"口": [[1,1]],
		"果": [[1,1],[1,101],[101,101],[101,1]]
	}`), 0644))
	ix, err := OpenFileIndex(path)
	require.NoError(t, err)
	snap := ix.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []rune{'果', '杲', '口'}, []rune{snap[0].Char, snap[1].Char, snap[2].Char})
	assert.Equal(t, shifted(square, 1, 1), snap[0].Coords, "a repeated key keeps its last outline")
	r, ok := QuickMatch(snap, shifted(square, 3, 3), 20)
	require.True(t, ok)
	assert.Equal(t, '果', r)
	//
	_, err = decodeEntries([]byte(`"口"`))
	assert.Error(t, err)
	_, err = decodeEntries([]byte(`{"口口": []}`))
	assert.Error(t, err)
}

func TestMemoryIndex(t *testing.T) {
	ix := NewMemoryIndex(Entry{Char: '口', Coords: square})
	require.NoError(t, ix.Append(Entry{Char: '田', Coords: square}))
	assert.Equal(t, 2, ix.Len())
	r, ok := QuickMatch(ix.Snapshot(), square, 0)
	assert.True(t, ok)
	assert.Equal(t, '口', r)
}
