package buildcache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// MemoryCache is a process-wide mapping from fingerprint (module name) to
// loaded module handle, plus an inverse alias list mapping any additional
// user-supplied identifiers (the alias trail) to the canonical module name
// (spec §4.4). Grounded on ClientsStorage's table+sync.RWMutex shape
// (internal/server/clients-storage.go): a small, never-evicted, process-local
// table guarded by a single RWMutex.
type MemoryCache struct {
	mu      sync.RWMutex
	byName  map[string]*ModuleHandle
	aliases map[string]string // alias -> canonical module name

	// group collapses concurrent in-process Build calls that land on the
	// same fingerprint before any of them reaches the cross-process lock
	// (spec §8 "Racer convergence", restated at process scope). This has no
	// analogue in the original Python, which has no concurrency story within
	// a single process; it's added because Go make concurrent callers within
	// one process the common case, not the exception.
	group singleflight.Group
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		byName:  make(map[string]*ModuleHandle),
		aliases: make(map[string]string),
	}
}

// Lookup resolves id (a user-supplied signature or a module name) through the
// alias table to a handle, if one is installed. It returns only the handle
// and whether one was found; the identifiers that led to the hit are not
// reported.
func (c *MemoryCache) Lookup(id string) (handle *ModuleHandle, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name, aliased := c.aliases[id]
	if !aliased {
		name = id
	}
	handle, ok = c.byName[name]
	return handle, ok
}

// Install registers handle under every identifier in aliasTrail, so a later
// Lookup by any of them (signature, computed fingerprint, module name) is a
// hit (spec §4.4, GLOSSARY "Alias trail").
func (c *MemoryCache) Install(moduleName string, aliasTrail []string, handle *ModuleHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.byName[moduleName] = handle
	for _, alias := range aliasTrail {
		if alias != moduleName {
			c.aliases[alias] = moduleName
		}
	}
}

// Coalesce runs fn at most once per concurrent set of callers sharing key
// within this process, returning the same (handle, error) to every waiter.
// This is the in-process half of spec §8's "at-most-one-compile" property;
// the cross-process half is LockManager.
func (c *MemoryCache) Coalesce(key string, fn func() (*ModuleHandle, error)) (*ModuleHandle, error, bool) {
	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		return fn()
	})
	if v == nil {
		return nil, err, shared
	}
	return v.(*ModuleHandle), err, shared
}
