package integrity

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jjfont/jjfont/core"
	"github.com/jjfont/jjfont/core/locate/resources"
	"github.com/jjfont/jjfont/core/table"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// remote serves fonts from a map; names mapped to nil fail to transfer.
type remote map[string][]byte

func (r remote) Fetch(ctx context.Context, name string) ([]byte, error) {
	data, ok := r[name]
	if !ok {
		return nil, core.Error(core.EMISSING, "font not found: %s", name)
	}
	if data == nil {
		return nil, core.Error(core.ECONNECTION, "connection reset")
	}
	return data, nil
}

type pages struct {
	dir string
}

func (p pages) RemovePage(name string) error {
	err := os.Remove(filepath.Join(p.dir, name+".html"))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func TestClean(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "jjfont.integrity")
	defer teardown()
	//
	dirs, err := resources.Bootstrap(t.TempDir())
	require.NoError(t, err)
	loader := resources.NewFontLoader(dirs.Fonts, nil)
	tables := table.NewCache(dirs.Tables)
	for _, name := range []string{"jjwxcfont_same0", "jjwxcfont_diff0", "jjwxcfont_gone0", "jjwxcfont_down0"} {
		require.NoError(t, os.WriteFile(loader.Path(name), []byte("font "+name), 0644))
		require.NoError(t, tables.Save(name, table.Table{0xE000: '我'}))
		require.NoError(t, os.WriteFile(filepath.Join(dirs.Tables, name+".html"), []byte("<html>"), 0644))
	}
	c := &Checker{
		Fonts: loader,
		Remote: remote{
			"jjwxcfont_same0": []byte("font jjwxcfont_same0"),
			"jjwxcfont_diff0": []byte("another font"),
			"jjwxcfont_down0": nil,
		},
		Tables: tables,
		Pages:  pages{dirs.Tables},
	}
	results, err := c.Clean(context.Background())
	require.NoError(t, err)
	verdicts := map[string]Verdict{}
	for _, res := range results {
		verdicts[res.Font] = res.Verdict
	}
	assert.Equal(t, map[string]Verdict{
		"jjwxcfont_same0": Consistent,
		"jjwxcfont_diff0": Inconsistent,
		"jjwxcfont_gone0": Gone,
		"jjwxcfont_down0": Unreachable,
	}, verdicts)
	for _, name := range []string{"jjwxcfont_same0", "jjwxcfont_down0"} {
		assert.FileExists(t, loader.Path(name))
		assert.True(t, tables.Exists(name))
	}
	for _, name := range []string{"jjwxcfont_diff0", "jjwxcfont_gone0"} {
		assert.NoFileExists(t, loader.Path(name))
		assert.False(t, tables.Exists(name))
		assert.NoFileExists(t, filepath.Join(dirs.Tables, name+".html"))
	}
	//
	pterm.DisableColor()
	var buf bytes.Buffer
	require.NoError(t, Report(&buf, results))
	assert.Contains(t, buf.String(), "jjwxcfont_gone0")
	assert.Contains(t, buf.String(), "removed")
}

func TestDigest(t *testing.T) {
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", digest([]byte("abc")))
}
