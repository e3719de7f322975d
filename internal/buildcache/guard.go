package buildcache

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gojit/internal/common"
	"gojit/internal/toolchain"
)

const (
	checksumFileName     = ".checksum"
	compileLogFileName   = "compile.log"
	envDisplayCompileLog = "GOJIT_DISPLAY_COMPILE_LOG"
)

// RecompileGuard skips invoking the toolchain when a staged directory's
// recorded checksum already matches the freshly computed compilation
// fingerprint (spec §4.7), grounded on instant.recompile's checksum-file
// comparison. It runs unconditionally, even under an explicit module_name
// that bypasses the cache tiers (SPEC_FULL.md §4, open question (b)).
type RecompileGuard struct {
	driver toolchain.Driver
	logger *common.Logger
}

func NewRecompileGuard(driver toolchain.Driver, logger *common.Logger) *RecompileGuard {
	return &RecompileGuard{driver: driver, logger: logger}
}

// Ensure runs RunToolchain on stagedDir unless its recorded checksum already
// matches in's compilation fingerprint (spec §4.6 step 6). On failure the
// staged directory is preserved under errorRoot and GOJIT_DISPLAY_COMPILE_LOG
// echoes the captured output to the warning sink (SPEC_FULL.md §4, mirroring
// instant.recompile's finally-block behavior on non-zero exit).
func (g *RecompileGuard) Ensure(in *BuildInputs, stagedDir, interfaceFilePath, moduleName, errorRoot string) error {
	fp, err := CompilationFingerprint(in, interfaceFilePath)
	if err != nil {
		return err
	}

	checksumPath := filepath.Join(stagedDir, checksumFileName)
	if existing, ok := readChecksum(checksumPath); ok && existing.Equal(fp) {
		return nil
	}

	descriptorPath := filepath.Join(stagedDir, g.driver.DescriptorFileName(moduleName))
	result, runErr := g.driver.RunToolchain(descriptorPath)
	if runErr != nil {
		return &ToolchainError{Message: runErr.Error()}
	}

	logPath := filepath.Join(stagedDir, compileLogFileName)
	if writeErr := common.WriteFile(logPath, result.CombinedOutput); writeErr != nil {
		return wrapIOError("writing compile log "+logPath, writeErr)
	}

	if result.ExitCode != 0 {
		// A stale checksum must not survive a failed recompile, or a later
		// request with identical inputs would wrongly believe this directory
		// is up to date.
		_ = os.Remove(checksumPath)

		if os.Getenv(envDisplayCompileLog) != "" {
			g.logger.Warn(string(result.CombinedOutput))
		}

		preservedPath := filepath.Join(errorRoot, moduleName)
		_ = os.RemoveAll(preservedPath)
		if copyErr := common.CopyTree(stagedDir, preservedPath); copyErr != nil {
			g.logger.Warn("failed to preserve failed build at", preservedPath, ":", copyErr)
		}

		return &BuildError{
			Message: "toolchain exited with status " + strconv.Itoa(result.ExitCode),
			LogPath: filepath.Join(preservedPath, compileLogFileName),
		}
	}

	if err := common.WriteFile(checksumPath, []byte(fp.Hex())); err != nil {
		return wrapIOError("writing checksum "+checksumPath, err)
	}

	return nil
}

func readChecksum(path string) (common.Fingerprint, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return common.Fingerprint{}, false
	}
	return common.ParseFingerprintHex(strings.TrimSpace(string(data)))
}
