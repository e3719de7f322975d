package buildcache

import (
	"os"

	"golang.org/x/sys/unix"
)

// LockHandle is an opaque token representing exclusive access to the cache
// slot for a single fingerprint (spec §3). The holder must release it on
// every exit path.
type LockHandle struct {
	file *os.File
	path string
}

// LockManager serializes per-fingerprint critical sections across
// cooperating processes on the host via an OS-level advisory file lock
// (spec §4.3), grounded on the flock-based artifact cache pattern used for
// concurrent resolver de-duplication (Cache.Lock in the "rig" package).
// Unlike that pattern, lock files here are never removed: spec §5 states
// "Lock files are never deleted (their presence is benign)", since removing
// one out from under a waiting sibling would let two holders believe they
// each won the flock.
type LockManager struct{}

func NewLockManager() *LockManager {
	return &LockManager{}
}

// Acquire blocks until this process holds an exclusive flock on lockPath
// (the per-fingerprint lock file, see PathService.LockPath), across all
// cooperating processes (spec §4.3).
// Reentrancy within a single process isn't supported; callers must avoid
// nested acquisition of the same fingerprint.
func (m *LockManager) Acquire(lockPath string) (*LockHandle, error) {
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, &LockError{Message: "open lock file " + lockPath, Err: err}
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, &LockError{Message: "flock " + lockPath, Err: err}
	}

	return &LockHandle{file: f, path: lockPath}, nil
}

// Release returns the lock. Safe to call on every exit path, including after
// a panic recovery, matching spec §4.3's "holders must release on every exit
// path including panics/exceptions".
func (m *LockManager) Release(handle *LockHandle) error {
	if handle == nil || handle.file == nil {
		return nil
	}
	err := unix.Flock(int(handle.file.Fd()), unix.LOCK_UN)
	closeErr := handle.file.Close()
	if err != nil {
		return &LockError{Message: "unlock " + handle.path, Err: err}
	}
	if closeErr != nil {
		return &LockError{Message: "close lock file " + handle.path, Err: closeErr}
	}
	return nil
}
