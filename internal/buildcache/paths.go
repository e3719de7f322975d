package buildcache

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	defaultCacheDirName = ".gojit/cache"
	errorDirName        = "errors"
)

// envCacheDir is spec §6's "variable overriding the cache root directory".
const envCacheDir = "GOJIT_CACHE_DIR"

// PathService answers where things live: the cache root, a process-unique
// temporary root, and the error root where failed builds are preserved for
// inspection (spec §4.2). Grounded on the directory conventions in
// internal/server/clients-storage.go (a process-rooted work directory handed
// out once and reused).
type PathService struct {
	cacheRoot string
	errorRoot string

	tempRoot     string
	tempRootOnce bool
}

// NewPathService resolves the cache root with the precedence spec §4.2
// describes: explicit override, then environment variable, then a default
// under the user's home directory.
func NewPathService(cacheDirOverride string) (*PathService, error) {
	cacheRoot, err := resolveCacheRoot(cacheDirOverride)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cacheRoot, os.ModePerm); err != nil {
		return nil, wrapIOError("creating cache root "+cacheRoot, err)
	}

	errorRoot := filepath.Join(cacheRoot, errorDirName)
	if err := os.MkdirAll(errorRoot, os.ModePerm); err != nil {
		return nil, wrapIOError("creating error root "+errorRoot, err)
	}

	return &PathService{cacheRoot: cacheRoot, errorRoot: errorRoot}, nil
}

func resolveCacheRoot(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if envValue, ok := os.LookupEnv(envCacheDir); ok && envValue != "" {
		return envValue, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", wrapIOError("resolving home directory", err)
	}
	return filepath.Join(home, defaultCacheDirName), nil
}

func (p *PathService) CacheRoot() string {
	return p.cacheRoot
}

func (p *PathService) ErrorRoot() string {
	return p.errorRoot
}

func (p *PathService) ArtifactPath(moduleName string) string {
	return filepath.Join(p.cacheRoot, moduleName)
}

func (p *PathService) LockPath(moduleName string) string {
	return filepath.Join(p.cacheRoot, moduleName+".lock")
}

func (p *PathService) ErrorPath(moduleName string) string {
	return filepath.Join(p.errorRoot, moduleName)
}

// TempRoot resolves (and lazily creates) this process's temporary root,
// trying to sit alongside the cache root so the promotion step can rename
// instead of copy (spec §4.2: "must be on the same filesystem as the cache
// root when feasible"). It's created once per PathService and reused.
func (p *PathService) TempRoot() (string, error) {
	if p.tempRootOnce {
		return p.tempRoot, nil
	}

	root := filepath.Join(p.cacheRoot, "tmp", uuid.NewString())
	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return "", wrapIOError("creating temp root "+root, err)
	}
	p.tempRoot = root
	p.tempRootOnce = true
	return root, nil
}
