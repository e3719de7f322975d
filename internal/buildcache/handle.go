package buildcache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ebitengine/purego"
)

// ModuleHandle is the live handle returned by build(): a loaded shared
// object plus the module name it was loaded under (spec §3 "ModuleArtifact",
// GLOSSARY "ModuleArtifact"). It can invoke the compiled symbols.
//
// Loading goes through purego rather than cgo/Go plugins: purego's
// Dlopen/Dlsym wrapper is pure Go, so the host runtime doesn't need to be
// built with cgo enabled to JIT-load a freshly compiled .so — it only needs
// the shared object itself, produced by the external toolchain. This is the
// Go-native rendering of spec §6's "import_module(directory, module_name) →
// (handle | none)".
type ModuleHandle struct {
	ModuleName string
	Path       string // directory containing the artifact
	libHandle  uintptr
}

// ImportModule loads the shared object for moduleName out of dir and
// resolves it into a ModuleHandle. It returns (nil, nil) on a recoverable
// "couldn't load" condition so the caller can classify the failure as
// *LoadError (spec §6: "may fail silently (returning none) so the caller can
// classify").
func ImportModule(dir string, moduleName string) (*ModuleHandle, error) {
	soPath := filepath.Join(dir, moduleName+".so")
	if _, err := os.Stat(soPath); err != nil {
		return nil, nil
	}

	lib, err := purego.Dlopen(soPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, nil
	}

	return &ModuleHandle{ModuleName: moduleName, Path: dir, libHandle: lib}, nil
}

// Symbol resolves a compiled symbol's address within the loaded module.
func (h *ModuleHandle) Symbol(name string) (uintptr, error) {
	addr, err := purego.Dlsym(h.libHandle, name)
	if err != nil {
		return 0, fmt.Errorf("symbol %q not found in %s: %w", name, h.Path, err)
	}
	return addr, nil
}

// CallFloat64_2 invokes a compiled `double fn(double, double)` symbol — the
// common shape for the numeric inline-code scenarios in spec §8 ("double
// add(double a,double b){return a+b;}").
func (h *ModuleHandle) CallFloat64_2(symbol string, a, b float64) (float64, error) {
	addr, err := h.Symbol(symbol)
	if err != nil {
		return 0, err
	}
	var fn func(float64, float64) float64
	purego.RegisterFunc(&fn, addr)
	return fn(a, b), nil
}
