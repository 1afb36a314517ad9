package table

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/jjfont/jjfont/core"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeIsSortedAndIndented(t *testing.T) {
	tt := Table{0xE002: '的', 0xE001: '一'}
	b, err := tt.Encode()
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"\ue001\": \"一\",\n    \"\ue002\": \"的\"\n}", string(b))
	assert.Equal(t, []rune{0xE001, 0xE002}, tt.Keys())
	//
	var back Table
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, tt, back)
	assert.Error(t, json.Unmarshal([]byte(`{"ab": "c"}`), &back))
}

func TestCount(t *testing.T) {
	tt := Table{1: '己', 2: '己', 3: '已'}
	assert.Equal(t, 2, tt.Count('己'))
	c := tt.Clone()
	c[3] = '己'
	assert.Equal(t, 2, tt.Count('己'))
}

func TestCache(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "jjfont.table")
	defer teardown()
	//
	c := NewCache(t.TempDir())
	assert.False(t, c.Exists("jjwxcfont_00abc"))
	_, _, err := c.Load("jjwxcfont_00abc")
	assert.Equal(t, core.EMISSING, core.Code(err))
	//
	tt := Table{0xE000: '我'}
	require.NoError(t, c.Save("jjwxcfont_00abc", tt))
	assert.True(t, c.Exists("jjwxcfont_00abc"))
	loaded, mtime, err := c.Load("jjwxcfont_00abc")
	require.NoError(t, err)
	assert.Equal(t, tt, loaded)
	assert.False(t, mtime.IsZero())
	names, err := c.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"jjwxcfont_00abc"}, names)
	//
	require.NoError(t, os.WriteFile(c.Path("jjwxcfont_bad00"), []byte("{"), 0644))
	_, _, err = c.Load("jjwxcfont_bad00")
	assert.Equal(t, core.ECORRUPT, core.Code(err))
	//
	require.NoError(t, c.Remove("jjwxcfont_00abc"))
	require.NoError(t, c.Remove("jjwxcfont_00abc"))
	assert.False(t, c.Exists("jjwxcfont_00abc"))
}
