// Package lock implements pacwrap's single-writer exclusion: a single
// path whose mere existence, plus its creation ctime, identifies the
// active hold. There is no fcntl-style advisory lock; a ctime mismatch
// on re-check means a foreign process recreated the file underneath us.
package lock

import (
	"os"
	"syscall"

	"github.com/pacwrap/pacwrap/usefulerror"
)

// Lock guards the path named at construction.
type Lock struct {
	path string
	ctime int64
}

// New returns an unacquired Lock over path.
func New(path string) *Lock {
	return &Lock{path: path}
}

// Exists reports whether the lock file is currently present.
func (l *Lock) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// Lock creates the lock file and records its ctime. It fails with
// ErrCodeLocked if the file already exists.
func (l *Lock) Lock() error {
	if l.Exists() {
		return usefulerror.Useful().
			WithCode(usefulerror.ErrCodeLocked).
			WithHumanError("another pacwrap operation is already running").
			WithHelp("wait for the other operation to finish, or remove the lock file if it is stale").
			Msg("lock file is present: '" + l.path + "'")
	}

	f, err := os.Create(l.path)
	if err != nil {
		return usefulerror.Useful().Wrap(err).Msg("failed to create lock file '" + l.path + "'")
	}
	defer f.Close()

	ctime, err := statCtime(l.path)
	if err != nil {
		return err
	}
	l.ctime = ctime
	return nil
}

// Assert re-reads the lock file's ctime and fails with ErrCodeNotAcquired
// if the file is absent, or if its ctime no longer matches the value
// recorded at Lock time — both signal that a foreign process tampered
// with the lock mid-operation.
func (l *Lock) Assert() error {
	if !l.Exists() {
		return notAcquired()
	}

	ctime, err := statCtime(l.path)
	if err != nil {
		return err
	}
	if ctime != l.ctime {
		return notAcquired()
	}
	return nil
}

// Unlock removes the lock file.
func (l *Lock) Unlock() error {
	if err := os.Remove(l.path); err != nil {
		return usefulerror.Useful().Wrap(err).Msg("failed to remove lock file '" + l.path + "'")
	}
	return nil
}

func notAcquired() error {
	return usefulerror.Useful().
		WithCode(usefulerror.ErrCodeNotAcquired).
		WithHumanError("the pacwrap lock was not held, or was lost mid-operation").
		Msg("lock not acquired")
}

func statCtime(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, usefulerror.Useful().Wrap(err).Msg("failed to acquire metadata on lock file '" + path + "'")
	}
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, nil
	}
	return int64(sys.Ctim.Sec)*1e9 + int64(sys.Ctim.Nsec), nil
}
