package buildcache

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestDiskCache(t *testing.T) (*DiskCache, *PathService) {
	t.Helper()
	cacheRoot := filepath.Join(t.TempDir(), "cache")
	paths, err := NewPathService(cacheRoot)
	if err != nil {
		t.Fatalf("NewPathService: %v", err)
	}
	return NewDiskCache(paths, NewLockManager(), NewMemoryCache(), newTestLogger(t)), paths
}

func makeStagedDir(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "module.so"), []byte(contents), 0644); err != nil {
		t.Fatalf("writing staged artifact: %v", err)
	}
	return dir
}

func TestDiskCachePromoteMovesStagedDirIntoCache(t *testing.T) {
	disk, paths := newTestDiskCache(t)
	staged := makeStagedDir(t, "v1")

	finalPath, err := disk.Promote(staged, "m1")
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if finalPath != paths.ArtifactPath("m1") {
		t.Errorf("Promote returned %s, want %s", finalPath, paths.ArtifactPath("m1"))
	}
	if _, err := os.Stat(filepath.Join(finalPath, "module.so")); err != nil {
		t.Errorf("promoted artifact missing: %v", err)
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Errorf("staged directory should no longer exist after promotion")
	}
}

func TestDiskCachePromoteLosingRacerReusesWinner(t *testing.T) {
	disk, paths := newTestDiskCache(t)

	winnerStaged := makeStagedDir(t, "winner")
	winnerPath, err := disk.Promote(winnerStaged, "m1")
	if err != nil {
		t.Fatalf("winner Promote: %v", err)
	}

	loserStaged := makeStagedDir(t, "loser")
	loserPath, err := disk.Promote(loserStaged, "m1")
	if err != nil {
		t.Fatalf("loser Promote: %v", err)
	}

	if loserPath != winnerPath {
		t.Errorf("losing racer's Promote returned %s, want the winner's path %s", loserPath, winnerPath)
	}

	data, err := os.ReadFile(filepath.Join(paths.ArtifactPath("m1"), "module.so"))
	if err != nil {
		t.Fatalf("reading promoted artifact: %v", err)
	}
	if string(data) != "winner" {
		t.Errorf("cache content = %q, want the first writer's content %q (first-writer-wins)", data, "winner")
	}
}

func TestDiskCacheLookupMissWhenNotYetPromoted(t *testing.T) {
	disk, _ := newTestDiskCache(t)
	handle, err := disk.Lookup("never-built", nil)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if handle != nil {
		t.Errorf("expected a cache miss, got %v", handle)
	}
}
