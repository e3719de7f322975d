package buildcache

import (
	"os"
	"path/filepath"
	"testing"

	"gojit/internal/common"
)

func newTestLogger(t *testing.T) *common.Logger {
	t.Helper()
	logger, err := common.MakeLogger("stderr", 0)
	if err != nil {
		t.Fatalf("MakeLogger: %v", err)
	}
	return logger
}

func stagedInputsWithInterface(t *testing.T) (*BuildInputs, string) {
	in := baseInputs(t)
	interfacePath := filepath.Join(in.SourceDirectory, "generated.i")
	writeTempSource(t, in.SourceDirectory, "generated.i", "/* interface v1 */")
	return in, interfacePath
}

func TestRecompileGuardCompilesOnceThenSkips(t *testing.T) {
	in, interfacePath := stagedInputsWithInterface(t)
	stagedDir := t.TempDir()
	errorRoot := t.TempDir()

	driver := &fakeDriver{}
	guard := NewRecompileGuard(driver, newTestLogger(t))

	if err := guard.Ensure(in, stagedDir, interfacePath, "m1", errorRoot); err != nil {
		t.Fatalf("first Ensure: %v", err)
	}
	if driver.runCalls() != 1 {
		t.Fatalf("expected 1 toolchain invocation, got %d", driver.runCalls())
	}

	if err := guard.Ensure(in, stagedDir, interfacePath, "m1", errorRoot); err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if driver.runCalls() != 1 {
		t.Fatalf("expected the recompilation guard to skip a matching checksum, but the toolchain ran %d times", driver.runCalls())
	}
}

func TestRecompileGuardRecompilesAfterInputChange(t *testing.T) {
	in, interfacePath := stagedInputsWithInterface(t)
	stagedDir := t.TempDir()
	errorRoot := t.TempDir()

	driver := &fakeDriver{}
	guard := NewRecompileGuard(driver, newTestLogger(t))

	if err := guard.Ensure(in, stagedDir, interfacePath, "m1", errorRoot); err != nil {
		t.Fatalf("first Ensure: %v", err)
	}

	writeTempSource(t, in.SourceDirectory, "generated.i", "/* interface v2 */")
	if err := guard.Ensure(in, stagedDir, interfacePath, "m1", errorRoot); err != nil {
		t.Fatalf("second Ensure: %v", err)
	}

	if driver.runCalls() != 2 {
		t.Fatalf("expected the toolchain to rerun after the interface file changed, got %d calls", driver.runCalls())
	}
}

func TestRecompileGuardPreservesFailedBuildAndDropsChecksum(t *testing.T) {
	in, interfacePath := stagedInputsWithInterface(t)
	stagedDir := t.TempDir()
	errorRoot := t.TempDir()

	driver := &fakeDriver{exitCode: 1}
	guard := NewRecompileGuard(driver, newTestLogger(t))

	err := guard.Ensure(in, stagedDir, interfacePath, "m1", errorRoot)
	if err == nil {
		t.Fatal("expected an error from a non-zero toolchain exit")
	}
	buildErr, ok := err.(*BuildError)
	if !ok {
		t.Fatalf("expected *BuildError, got %T: %v", err, err)
	}

	if _, statErr := os.Stat(filepath.Join(stagedDir, checksumFileName)); !os.IsNotExist(statErr) {
		t.Error("checksum file should have been removed after a failed compile")
	}

	preservedDir := filepath.Join(errorRoot, "m1")
	if _, statErr := os.Stat(preservedDir); statErr != nil {
		t.Errorf("expected the failed build to be preserved at %s: %v", preservedDir, statErr)
	}
	if _, statErr := os.Stat(buildErr.LogPath); statErr != nil {
		t.Errorf("expected a compile log at %s: %v", buildErr.LogPath, statErr)
	}
}
