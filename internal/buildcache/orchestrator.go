package buildcache

import (
	"os"
	"path/filepath"

	"gojit/internal/common"
	"gojit/internal/toolchain"
)

// Orchestrator is the top-level build-and-load state machine (spec §4.6):
// validate, resolve the request's identity, probe both cache tiers, stage,
// guard recompilation, promote, then load and memoize. Grounded on
// Session's request-handling sequence (internal/server/session.go),
// generalized from "one compilation request over gRPC" to "one JIT build
// request in-process".
type Orchestrator struct {
	paths  *PathService
	locks  *LockManager
	memory *MemoryCache
	disk   *DiskCache
	guard  *RecompileGuard
	driver toolchain.Driver
	logger *common.Logger
}

func NewOrchestrator(paths *PathService, locks *LockManager, memory *MemoryCache, disk *DiskCache, driver toolchain.Driver, logger *common.Logger) *Orchestrator {
	return &Orchestrator{
		paths:  paths,
		locks:  locks,
		memory: memory,
		disk:   disk,
		guard:  NewRecompileGuard(driver, logger),
		driver: driver,
		logger: logger,
	}
}

// Build realizes a ModuleArtifact for in, compiling only when nothing
// equivalent already exists in either cache tier (spec §4.6 steps 1-8).
func (o *Orchestrator) Build(in *BuildInputs) (*ModuleHandle, error) {
	// Step 1: Validate.
	if err := in.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Name resolution. An explicit module_name disables caching
	// entirely (spec §3, §4.6 step 2); otherwise the lookup key is the
	// caller's signature if provided, falling back to the computed interface
	// fingerprint.
	cacheable := in.ModuleName == ""
	if !cacheable {
		return o.buildUnconditionally(in, in.ModuleName)
	}

	lookupKey := in.Signature.Value
	if in.Signature.Kind != SignatureProvided {
		fp, err := InterfaceFingerprint(in)
		if err != nil {
			return nil, err
		}
		lookupKey = fp.ModuleName()
	}

	// Step 3: MemoryCache probe.
	if handle, ok := o.memory.Lookup(lookupKey); ok {
		return handle, nil
	}

	// singleflight collapses concurrent in-process callers sharing lookupKey
	// before any of them reaches the cross-process lock (spec §8 "Racer
	// convergence", restated at process scope; SPEC_FULL.md §3).
	handle, err, _ := o.memory.Coalesce(lookupKey, func() (*ModuleHandle, error) {
		return o.buildCacheable(in, lookupKey)
	})
	return handle, err
}

// buildCacheable resolves the on-disk module name, probes the MemoryCache
// and DiskCache again under that name (a never-seen signature alias can
// still resolve to an already-known module), and otherwise builds from
// scratch.
func (o *Orchestrator) buildCacheable(in *BuildInputs, lookupKey string) (*ModuleHandle, error) {
	moduleName := lookupKey
	if in.Signature.Kind == SignatureProvided {
		fp, err := InterfaceFingerprint(in)
		if err != nil {
			return nil, err
		}
		moduleName = fp.ModuleName()
	}

	aliasTrail := []string{moduleName}
	if lookupKey != moduleName {
		aliasTrail = append(aliasTrail, lookupKey)
	}

	if handle, ok := o.memory.Lookup(moduleName); ok {
		o.memory.Install(moduleName, aliasTrail, handle)
		return handle, nil
	}

	// Step 4: DiskCache probe.
	if handle, err := o.disk.Lookup(moduleName, aliasTrail); err != nil {
		return nil, err
	} else if handle != nil {
		return handle, nil
	}

	stagedDir, _, err := o.buildArtifact(in, moduleName, true)
	if err != nil {
		return nil, err
	}

	// Step 7: Promotion.
	finalPath, err := o.disk.Promote(stagedDir, moduleName)
	if err != nil {
		return nil, err
	}

	// Step 8: Load & memoize, bracketed by a second, short-lived lock
	// acquisition so a promoting sibling can't be mid-rename when we stat
	// the artifact (spec §4.6 step 8, REDESIGN FLAGS open question (a),
	// grounded on instant.build_module's lock/import_and_cache_module/
	// release_lock sequence).
	lockHandle, err := o.locks.Acquire(o.paths.LockPath(moduleName))
	if err != nil {
		return nil, err
	}
	handle, err := ImportModule(finalPath, moduleName)
	_ = o.locks.Release(lockHandle)
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, &LoadError{Message: "module loader returned no handle for " + moduleName + " at " + finalPath}
	}

	o.memory.Install(moduleName, aliasTrail, handle)
	return handle, nil
}

// buildUnconditionally is the explicit-module_name path (spec §3, §4.6 step
// 2): no cache tier is consulted, but the recompilation guard still runs
// (REDESIGN FLAGS open question (b): instant.build_module's non-cache branch
// still calls recompile, so a stale directory with a matching checksum skips
// the toolchain even here). Per spec §4.6 step 2, module_path is created
// directly under the caller's working directory, outside the cache root
// entirely (instant.build_module: "module_path = os.path.join(original_path,
// modulename)").
func (o *Orchestrator) buildUnconditionally(in *BuildInputs, moduleName string) (*ModuleHandle, error) {
	stagedDir, _, err := o.buildArtifact(in, moduleName, false)
	if err != nil {
		return nil, err
	}

	handle, err := ImportModule(stagedDir, moduleName)
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, &LoadError{Message: "module loader returned no handle for " + moduleName + " at " + stagedDir}
	}
	return handle, nil
}

// buildArtifact runs steps 5 and 6: stage the request into a fresh working
// directory, then let the recompilation guard decide whether the toolchain
// actually needs to run. cacheable selects where that working directory
// lives (spec §4.6 step 2/5): under the process-local temp root when the
// build can be cached, or under the caller's CWD for an explicit module_name.
func (o *Orchestrator) buildArtifact(in *BuildInputs, moduleName string, cacheable bool) (stagedDir, interfaceFilePath string, err error) {
	stagedDir, interfaceFilePath, err = o.stage(in, moduleName, cacheable)
	if err != nil {
		return "", "", err
	}

	if err := o.driver.EnsureToolchainPresent(); err != nil {
		return "", "", &ToolchainError{Message: err.Error()}
	}

	if err := o.guard.Ensure(in, stagedDir, interfaceFilePath, moduleName, o.paths.ErrorRoot()); err != nil {
		return "", "", err
	}

	return stagedDir, interfaceFilePath, nil
}

// stage materializes the build's working directory: copies FilesToCopy()
// from source_directory, then writes the generated interface file and build
// descriptor (spec §4.6 step 5). A cacheable build stages under the
// process-local temp root and must not already exist there — a pre-existing
// staged directory means two requests collided on the same fingerprint
// within this process (spec §4.6 "Tie-breaks and edge policies", mirroring
// instant.build_module's instant_assert(not os.path.exists(module_path))).
// An explicit module_name build stages directly under the caller's working
// directory instead (spec §4.6 step 2) and is free to reuse that directory
// across repeated calls, since the recompilation guard is what decides
// whether the toolchain reruns there.
func (o *Orchestrator) stage(in *BuildInputs, moduleName string, cacheable bool) (stagedDir, interfaceFilePath string, err error) {
	if cacheable {
		tempRoot, err := o.paths.TempRoot()
		if err != nil {
			return "", "", err
		}
		stagedDir = filepath.Join(tempRoot, moduleName)
		if _, statErr := os.Stat(stagedDir); statErr == nil {
			return "", "", newInputError("staged directory already exists for %s (fingerprint collision within this process): %s", moduleName, stagedDir)
		} else if !os.IsNotExist(statErr) {
			return "", "", wrapIOError("checking staged directory "+stagedDir, statErr)
		}
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return "", "", wrapIOError("resolving working directory", err)
		}
		stagedDir = filepath.Join(cwd, moduleName)
	}
	if err := os.MkdirAll(stagedDir, os.ModePerm); err != nil {
		return "", "", wrapIOError("creating staged directory "+stagedDir, err)
	}

	for _, rel := range in.FilesToCopy() {
		src := filepath.Join(in.SourceDirectory, rel)
		dst := filepath.Join(stagedDir, filepath.Base(rel))
		if _, statErr := os.Stat(dst); statErr == nil {
			o.logger.Warn("overwriting", dst, "while staging", moduleName)
		}
		if err := common.CopyFile(src, dst); err != nil {
			return "", "", wrapIOError("staging "+src, err)
		}
	}

	interfaceFilePath = filepath.Join(stagedDir, o.driver.InterfaceFileName(moduleName))
	if err := o.driver.WriteInterfaceFile(interfaceFilePath, toolchain.InterfaceFileInputs{
		ModuleName:             moduleName,
		InlineCode:             in.InlineCode,
		InitCode:               in.InitCode,
		AdditionalDefinitions:  in.AdditionalDefinitions,
		AdditionalDeclarations: in.AdditionalDeclarations,
		SystemHeaders:          in.SystemHeaders,
		LocalHeaders:           in.LocalHeaders,
		WrapHeaders:            in.WrapHeaders,
		Arrays:                 in.Arrays,
	}); err != nil {
		return "", "", wrapIOError("writing interface file "+interfaceFilePath, err)
	}

	descriptorPath := filepath.Join(stagedDir, o.driver.DescriptorFileName(moduleName))
	if err := o.driver.WriteBuildDescriptor(descriptorPath, toolchain.BuildDescriptorInputs{
		ModuleName:      moduleName,
		CSources:        baseNames(in.CSources()),
		CXXSources:      baseNames(in.CXXSources()),
		LocalHeaders:    baseNames(in.LocalHeaders),
		IncludeDirs:     in.IncludeDirs,
		LibraryDirs:     in.LibraryDirs,
		Libraries:       in.Libraries,
		SwigIncludeDirs: in.SwigIncludeDirs,
		SwigArgs:        in.SwigArgs,
		CppArgs:         in.CppArgs,
		LdArgs:          in.LdArgs,
	}); err != nil {
		return "", "", wrapIOError("writing build descriptor "+descriptorPath, err)
	}

	return stagedDir, interfaceFilePath, nil
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}
