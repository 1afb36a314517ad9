package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jjfont/jjfont/core"
	"github.com/jjfont/jjfont/core/parameters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJSONConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jjfont.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"jjfont": {"render": {"canvas": 200}, "server": {"listen": ":8080"}},
		"trace": {"jjfont.match": "Debug"}
	}`), 0644))
	conf, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "go", conf.GetString("tracing.adapter"))
	params := parameters.FromConfig(conf)
	assert.Equal(t, 200, params.Int(parameters.P_CANVAS))
	assert.Equal(t, ":8080", params.String(parameters.P_LISTEN))
	assert.Equal(t, 223, params.Int(parameters.P_UNKNOWNSIZE))
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "jjfont.yaml"))
	assert.Equal(t, core.EINVALID, core.Code(err))
	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, core.EINVALID, core.Code(err))
}

func TestAtlasPath(t *testing.T) {
	assert.Equal(t, filepath.Join("assets", "FZLanTingHei-M-GBK-Hash-Table.json"),
		atlasPath("assets", "/usr/share/fonts/FZLanTingHei-M-GBK.ttf"))
}
