package core

import (
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to a temporary file in the directory of path
// and renames it to path afterwards. Readers will either see the old or
// the new content, never a partial write.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return WrapError(err, EINTERNAL, "cannot create temporary file in %s", dir)
	}
	tmpname := tmp.Name()
	defer os.Remove(tmpname) // no-op after successful rename
	if _, err = tmp.Write(data); err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return WrapError(err, EINTERNAL, "cannot write %s", path)
	}
	if err = os.Chmod(tmpname, perm); err != nil {
		return WrapError(err, EINTERNAL, "cannot set permissions for %s", path)
	}
	if err = os.Rename(tmpname, path); err != nil {
		return WrapError(err, EINTERNAL, "cannot replace %s", path)
	}
	return nil
}
