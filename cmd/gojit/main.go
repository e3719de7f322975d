// Command gojit builds and loads a single JIT module described by a TOML
// request file, the way nocc's cmd/nocc wraps a single compiler invocation.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"

	"gojit/internal/buildcache"
	"gojit/internal/common"
	"gojit/internal/toolchain"
)

func exitOnError(err error) {
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "[gojit]", err)
		os.Exit(1)
	}
}

func main() {
	configPath := common.CmdEnvString("Path to a gojit.toml configuration file.", "", "config")
	requestPath := common.CmdEnvString("Path to a TOML file describing the module to build.", "", "request")
	cacheDirFlag := common.CmdEnvString("Override the cache root directory (also GOJIT_CACHE_DIR).", "", "cache-dir")
	verbosity := common.CmdEnvInt("Logger verbosity for INFO (-1 off, default 0, max 2).", 0, "v")

	common.ParseCmdFlagsCombiningWithEnv()

	if *requestPath == "" {
		exitOnError(fmt.Errorf("-request is required"))
	}

	config, err := ParseConfiguration(*configPath)
	exitOnError(err)

	logger, err := common.MakeLogger(config.LogFileName, orInt(*verbosity, config.LogLevel))
	exitOnError(err)

	cacheDirOverride := config.CacheDir
	if *cacheDirFlag != "" {
		cacheDirOverride = *cacheDirFlag
	}

	in, err := loadBuildInputs(*requestPath, cacheDirOverride)
	exitOnError(err)

	handle, err := runBuild(in, config, logger)
	if err != nil {
		var buildErr *buildcache.BuildError
		if errors.As(err, &buildErr) {
			color.Red("[gojit] build failed: %s", buildErr.Error())
		} else {
			color.Red("[gojit] %s", err.Error())
		}
		os.Exit(1)
	}

	fmt.Printf("loaded module %q from %s\n", handle.ModuleName, handle.Path)
}

func orInt(flagValue, configValue int) int {
	if flagValue != 0 {
		return flagValue
	}
	return configValue
}

func runBuild(in *buildcache.BuildInputs, config *Configuration, logger *common.Logger) (*buildcache.ModuleHandle, error) {
	paths, err := buildcache.NewPathService(in.CacheDir)
	if err != nil {
		return nil, err
	}
	locks := buildcache.NewLockManager()
	memory := buildcache.NewMemoryCache()
	disk := buildcache.NewDiskCache(paths, locks, memory, logger)

	driver := selectDriver(config)
	orchestrator := buildcache.NewOrchestrator(paths, locks, memory, disk, driver, logger)

	return orchestrator.Build(in)
}

func selectDriver(config *Configuration) toolchain.Driver {
	if config.Toolchain == "cmake" {
		return toolchain.NewCMakeDriver(config.CMakeBinary, config.MakeBinary)
	}
	return toolchain.NewSWIGDriver(config.CompilerCC, config.CompilerCXX)
}

func loadBuildInputs(requestPath, cacheDirOverride string) (*buildcache.BuildInputs, error) {
	req, err := parseBuildRequest(requestPath)
	if err != nil {
		return nil, err
	}

	cacheDir := req.CacheDir
	if cacheDirOverride != "" {
		cacheDir = cacheDirOverride
	}

	in := &buildcache.BuildInputs{
		ModuleName:             req.ModuleName,
		SourceDirectory:        req.SourceDirectory,
		InlineCode:             req.InlineCode,
		InitCode:               req.InitCode,
		AdditionalDefinitions:  req.AdditionalDefinitions,
		AdditionalDeclarations: req.AdditionalDeclarations,
		Sources:                req.Sources,
		WrapHeaders:            req.WrapHeaders,
		LocalHeaders:           req.LocalHeaders,
		SystemHeaders:          req.SystemHeaders,
		ObjectFiles:            req.ObjectFiles,
		IncludeDirs:            req.IncludeDirs,
		LibraryDirs:            req.LibraryDirs,
		Libraries:              req.Libraries,
		SwigArgs:               req.SwigArgs,
		SwigIncludeDirs:        req.SwigIncludeDirs,
		CppArgs:                req.CppArgs,
		LdArgs:                 req.LdArgs,
		Arrays:                 req.Arrays,
		GenerateInterface:      req.GenerateInterface,
		GenerateSetup:          req.GenerateSetup,
		CacheDir:               cacheDir,
	}

	if req.Signature != "" {
		in.Signature = buildcache.Signature{Kind: buildcache.SignatureProvided, Value: req.Signature}
	}

	return in, nil
}
