package buildcache

import (
	"os"

	"gojit/internal/common"
)

// DiskCache is the on-disk half of the two-tier lookup (spec §4.5). The
// artifact directory's basename equals its module name, so a lookup is a
// single stat call; grounded on ObjFileCache's LookupInCache/SaveFileToCache
// shape (internal/server/obj-cache.go), adapted from "one compiled .o" to
// "one whole module directory".
type DiskCache struct {
	paths   *PathService
	locks   *LockManager
	memory  *MemoryCache
	logger  *common.Logger
}

func NewDiskCache(paths *PathService, locks *LockManager, memory *MemoryCache, logger *common.Logger) *DiskCache {
	return &DiskCache{paths: paths, locks: locks, memory: memory, logger: logger}
}

// Lookup checks whether <cache_root>/<moduleName> already exists; if so, it
// loads it via the module loader and installs it into the MemoryCache under
// every alias in aliasTrail (spec §4.5).
func (d *DiskCache) Lookup(moduleName string, aliasTrail []string) (*ModuleHandle, error) {
	artifactPath := d.paths.ArtifactPath(moduleName)
	info, err := os.Stat(artifactPath)
	if err != nil || !info.IsDir() {
		return nil, nil
	}

	handle, err := ImportModule(artifactPath, moduleName)
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, nil
	}

	d.memory.Install(moduleName, aliasTrail, handle)
	return handle, nil
}

// Promote materializes the first-writer-wins protocol of spec §4.6 step 7:
// acquire the per-fingerprint lock; if a sibling process already published
// the artifact, defer to it; otherwise move the staged tree into place.
// Only this build's staged directory is removed; the process temp root that
// contains it is left in place. Returns the final (cache) path.
func (d *DiskCache) Promote(stagedDir string, moduleName string) (string, error) {
	lockHandle, err := d.locks.Acquire(d.paths.LockPath(moduleName))
	if err != nil {
		return "", err
	}
	defer func() { _ = d.locks.Release(lockHandle) }()

	finalPath := d.paths.ArtifactPath(moduleName)

	if info, statErr := os.Stat(finalPath); statErr == nil && info.IsDir() {
		// A racing sibling process already materialized this fingerprint
		// (spec §4.6 step 7, §8 "Racer convergence"). Don't overwrite - only
		// this build's own staged directory is discarded, never the shared
		// process-local temp root other concurrent builds may still be
		// using (spec §5 "Resource lifetimes").
		d.logger.Warn("lost promotion race for", moduleName, "- reusing existing artifact at", finalPath)
		if err := os.RemoveAll(stagedDir); err != nil {
			return "", wrapIOError("removing staged directory after lost race", err)
		}
		return finalPath, nil
	}

	if err := common.RenameOrCopyTree(stagedDir, finalPath); err != nil {
		if os.IsExist(err) {
			// A second racer finished between our Stat and our rename/copy;
			// treat as success (spec §4.6 step 7).
			d.logger.Warn("lost promotion race for", moduleName, "(EEXIST) - reusing existing artifact")
			_ = os.RemoveAll(stagedDir)
			return finalPath, nil
		}
		return "", wrapIOError("promoting "+stagedDir+" to "+finalPath, err)
	}

	// RenameOrCopyTree already removed stagedDir (rename moves it outright;
	// the EXDEV fallback copies then removes the source), so there's nothing
	// left to clean up here.
	return finalPath, nil
}
