package main

import (
	"path/filepath"

	"github.com/jjfont/jjfont/core"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/npillmayer/schuko/schukonf/koanfadapter"
)

// loadConfig initializes the application configuration. Without an explicit
// path, a file jjfont.nt is searched at the usual configuration locations.
func loadConfig(path string) (*koanfadapter.KConf, error) {
	if path == "" {
		conf := koanfadapter.New(nil, "jjfont", []string{".nt"})
		conf.InitDefaults()
		return conf, nil
	}
	conf := koanfadapter.New(nil, "", nil)
	conf.InitDefaults()
	var parser koanf.Parser
	switch ext := filepath.Ext(path); ext {
	case ".nt":
		parser = koanfadapter.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, core.Error(core.EINVALID, "do not know how to decode %q-files (%s)", ext, path)
	}
	if err := conf.Koanf().Load(file.Provider(path), parser); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot load configuration %s", path)
	}
	return conf, nil
}
