package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	err := Error(EMISSING, "font %s not found", "jjwxcfont_00abc")
	assert.Equal(t, EMISSING, Code(err))
	assert.Equal(t, "font jjwxcfont_00abc not found", UserMessage(err))
	assert.True(t, Is(err, EMISSING))
	assert.False(t, Is(nil, EMISSING))
	//
	wrapped := fmt.Errorf("loading: %w", err)
	assert.Equal(t, EMISSING, Code(wrapped))
	//
	outer := WrapError(err, ECONNECTION, "remote failed")
	assert.Equal(t, ECONNECTION, Code(outer))
	assert.True(t, errors.Is(outer, err))
	//
	assert.Equal(t, NOERROR, Code(nil))
	assert.Equal(t, EINTERNAL, Code(errors.New("plain")))
	assert.Equal(t, "internal error", UserMessage(errors.New("plain")))
}

func TestWrapNilError(t *testing.T) {
	err := WrapError(nil, ECORRUPT, "font %q is damaged", "x")
	require.Error(t, err)
	assert.Equal(t, ECORRUPT, Code(err))
	assert.Equal(t, `[126] font "x" is damaged: corrupt`, err.Error())
	assert.Equal(t, "[122] no table", Error(EMISSING, "no table").Error())
	assert.Equal(t, "transport failure", CodeText(ECONNECTION))
	assert.Equal(t, "undefined error", CodeText(4711))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.json")
	require.NoError(t, WriteFileAtomic(path, []byte("{}"), 0644))
	require.NoError(t, WriteFileAtomic(path, []byte(`{"a":"b"}`), 0644))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"b"}`, string(data))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not survive")
}
