package pagestore

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// lockFile takes a non-blocking advisory exclusive lock on f, so a second
// Create or Open of the same store file fails while the first is open.
// Being advisory, it does not exclude processes that open the file
// without taking the lock. The lock is released automatically when f is
// closed.
func lockFile(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		return errors.Wrapf(err, "pagestore: lock %s (already open elsewhere?)", f.Name())
	}
	return nil
}
