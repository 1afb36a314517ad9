package resources

import (
	"os"
	"path/filepath"

	"github.com/jjfont/jjfont/core"
)

// Dirs is the on-disk layout below a data root.
type Dirs struct {
	Root   string
	Fonts  string // cached scrambled fonts, <name>.woff2
	Tables string // resolution tables, <name>.json and <name>.html
	Dist   string // bundles
	Assets string // reference atlas, coordinate index, overrides
}

// Layout returns the folder layout below root without touching the file
// system.
func Layout(root string) Dirs {
	return Dirs{
		Root:   root,
		Fonts:  filepath.Join(root, "fonts"),
		Tables: filepath.Join(root, "tables"),
		Dist:   filepath.Join(root, "dist"),
		Assets: filepath.Join(root, "assets"),
	}
}

// Bootstrap creates the folder layout below root, as far as it does not
// exist yet.
func Bootstrap(root string) (Dirs, error) {
	dirs := Layout(root)
	for _, dir := range []string{dirs.Fonts, dirs.Tables, dirs.Dist, dirs.Assets} {
		if _, err := CacheDirPath(dir); err != nil {
			return dirs, err
		}
	}
	return dirs, nil
}

// CacheDirPath checks and possibly creates a folder. Clients may specify a
// sequence of folder names, which will be appended to base. Non-existing
// sub-folders will be created as necessary (with permissions 755).
func CacheDirPath(base string, subfolders ...string) (string, error) {
	dir := filepath.Join(append([]string{base}, subfolders...)...)
	_, err := os.Stat(dir)
	if os.IsNotExist(err) {
		tracer().Infof("creating folder %s", dir)
		if err = os.MkdirAll(dir, 0755); err != nil {
			return "", core.WrapError(err, core.EINVALID, "cannot create folder %s", dir)
		}
		return dir, nil
	}
	if err != nil {
		return "", core.WrapError(err, core.EINVALID, "cannot access folder %s", dir)
	}
	return dir, nil
}
