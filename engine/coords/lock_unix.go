//go:build unix

package coords

import (
	"os"

	"github.com/jjfont/jjfont/core"
	"golang.org/x/sys/unix"
)

// lockFile takes an exclusive advisory lock on path, creating the file if
// necessary. The returned function releases the lock.
func lockFile(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "cannot open lock file %s", path)
	}
	if err = unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, core.WrapError(err, core.EINTERNAL, "cannot lock %s", path)
	}
	return func() {
		if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
			tracer().Errorf("cannot unlock %s: %v", path, err)
		}
		f.Close()
	}, nil
}
