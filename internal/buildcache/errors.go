package buildcache

import "fmt"

// The error taxonomy from spec §7. Each is a distinct Go type rather than a
// shared "tag" field, so callers can branch with errors.As the idiomatic way.

// InputError covers invalid arguments, forbidden absolute paths, and missing
// source files under source_directory.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return "input error: " + e.Message }

func newInputError(format string, args ...any) error {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

// ToolchainError means the wrapper generator / compiler driver isn't
// installed (spec §6 EnsureToolchainPresent).
type ToolchainError struct {
	Message string
}

func (e *ToolchainError) Error() string { return "toolchain error: " + e.Message }

// BuildError means the toolchain exited non-zero. LogPath points at the
// preserved compile.log under the error root (spec §7).
type BuildError struct {
	Message string
	LogPath string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build error: %s (see %s)", e.Message, e.LogPath)
}

// LockError means the cross-process per-fingerprint lock could not be
// acquired.
type LockError struct {
	Message string
	Err     error
}

func (e *LockError) Error() string { return "lock error: " + e.Message }
func (e *LockError) Unwrap() error { return e.Err }

// IOError covers filesystem failures not otherwise classified.
type IOError struct {
	Message string
	Err     error
}

func (e *IOError) Error() string { return "io error: " + e.Message }
func (e *IOError) Unwrap() error { return e.Err }

func wrapIOError(message string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Message: message, Err: err}
}

// LoadError means the module loader returned no handle.
type LoadError struct {
	Message string
}

func (e *LoadError) Error() string { return "load error: " + e.Message }
