package buildcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLockManagerExcludesConcurrentHolders(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "m1.lock")
	locks := NewLockManager()

	first, err := locks.Acquire(lockPath)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		second, err := locks.Acquire(lockPath)
		if err != nil {
			t.Errorf("second Acquire: %v", err)
			return
		}
		close(acquired)
		_ = locks.Release(second)
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire returned before the first lock was released")
	case <-time.After(100 * time.Millisecond):
	}

	if err := locks.Release(first); err != nil {
		t.Fatalf("Release: %v", err)
	}

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second Acquire never unblocked after Release")
	}
}

func TestLockManagerLockFileSurvivesRelease(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "m1.lock")
	locks := NewLockManager()

	handle, err := locks.Acquire(lockPath)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := locks.Release(handle); err != nil {
		t.Fatalf("Release: %v", err)
	}

	// A lock file must never be deleted, only unlocked (spec §5): a sibling
	// that's still waiting on it must find it in place.
	if _, err := os.Stat(lockPath); err != nil {
		t.Fatalf("lock file should still exist after Release: %v", err)
	}
	if _, err := locks.Acquire(lockPath); err != nil {
		t.Fatalf("re-Acquire after Release: %v", err)
	}
}
