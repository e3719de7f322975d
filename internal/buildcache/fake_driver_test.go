package buildcache

import (
	"os"
	"path/filepath"
	"sync/atomic"

	"gojit/internal/toolchain"
)

// fakeDriver is a toolchain.Driver that never shells out to a real compiler:
// RunToolchain just drops a placeholder "<module_name>.so" file (not a real
// shared object — purego.Dlopen will reject it, so tests that exercise the
// full Orchestrator.Build path expect a *LoadError rather than a live
// handle) and counts its own invocations, the way the teacher's tests would
// inject a fake CompilerLauncher instead of invoking cxx for real.
type fakeDriver struct {
	exitCode   int
	runCount   int32
	failEnsure bool
}

func (d *fakeDriver) EnsureToolchainPresent() error {
	if d.failEnsure {
		return os.ErrNotExist
	}
	return nil
}

func (d *fakeDriver) WriteInterfaceFile(path string, in toolchain.InterfaceFileInputs) error {
	return os.WriteFile(path, []byte(in.InlineCode), 0644)
}

func (d *fakeDriver) WriteBuildDescriptor(path string, in toolchain.BuildDescriptorInputs) error {
	return os.WriteFile(path, []byte(in.ModuleName), 0644)
}

func (d *fakeDriver) RunToolchain(descriptorPath string) (toolchain.RunResult, error) {
	atomic.AddInt32(&d.runCount, 1)

	stagedDir := filepath.Dir(descriptorPath)
	moduleName := filepath.Base(stagedDir)
	if d.exitCode == 0 {
		if err := os.WriteFile(filepath.Join(stagedDir, moduleName+".so"), []byte("not a real shared object"), 0644); err != nil {
			return toolchain.RunResult{}, err
		}
	}

	return toolchain.RunResult{ExitCode: d.exitCode, CombinedOutput: []byte("fake toolchain output")}, nil
}

func (d *fakeDriver) InterfaceFileName(moduleName string) string  { return moduleName + ".fake.i" }
func (d *fakeDriver) DescriptorFileName(moduleName string) string { return moduleName + ".fake.json" }

func (d *fakeDriver) runCalls() int {
	return int(atomic.LoadInt32(&d.runCount))
}
