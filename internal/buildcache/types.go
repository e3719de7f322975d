// Package buildcache implements the content-addressed build cache at the
// core of gojit: fingerprinting, the two-tier (memory + disk) cache lookup,
// the first-writer-wins promotion protocol, and the recompilation guard.
// Everything else (interface-file generation, descriptor writing, the
// compiler invocation itself, and the module loader) is delegated to
// internal/toolchain.
package buildcache

import (
	"path/filepath"
	"strings"

	"gojit/internal/common"
	"gojit/internal/toolchain"
)

// SignatureKind tags how a request's identity was determined. A signature is
// a single tagged variant here — the orchestrator branches on
// Signature.Kind instead of runtime attribute probing. Only two kinds exist:
// computed, and a literal string supplied by the caller; there is no kind
// for a signature taken from an object.
type SignatureKind int

const (
	// SignatureComputed means the caller supplied no signature; the
	// orchestrator computes the interface fingerprint and adopts it.
	SignatureComputed SignatureKind = iota
	// SignatureProvided means the caller supplied a literal string signature.
	SignatureProvided
)

// Signature is the tagged variant described above. The zero value means
// SignatureComputed.
type Signature struct {
	Kind  SignatureKind
	Value string // meaningful only when Kind == SignatureProvided
}

// BuildInputs is the total description of a requested artifact (spec §3).
type BuildInputs struct {
	// ModuleName, if present, disables caching entirely and names the output
	// directory directly (spec §3, §4.6 step 2).
	ModuleName string

	SourceDirectory string // absolute path; where user-supplied files live

	InlineCode              string
	InitCode                string
	AdditionalDefinitions   string
	AdditionalDeclarations  string

	Sources      []string // must end in .c, .C, .cpp, or .cxx
	WrapHeaders  []string
	LocalHeaders []string
	SystemHeaders []string
	ObjectFiles  []string

	IncludeDirs []string
	LibraryDirs []string
	Libraries   []string

	SwigArgs        []string
	SwigIncludeDirs []string
	CppArgs         []string
	LdArgs          []string

	// Arrays describes multi-dimensional array bindings: an ordered sequence
	// of ordered sequences of identifier strings (spec §3).
	Arrays [][]string

	GenerateInterface bool
	GenerateSetup     bool

	// Signature, when its Kind is SignatureProvided, replaces computed
	// fingerprinting for the interface-file stage (spec §3, §4.6 step 2).
	Signature Signature

	// CacheDir overrides the default cache root (spec §3, §4.2).
	CacheDir string

	// Toolchain names a toolchain.Kind. The Orchestrator does not read it:
	// the Driver is fixed when the Orchestrator is constructed
	// (NewOrchestrator), and cmd/gojit picks it from Configuration.Toolchain.
	Toolchain toolchain.Kind
}

// CSources returns the subset of Sources routed to the C compilation list.
func (in *BuildInputs) CSources() []string {
	var out []string
	for _, f := range in.Sources {
		if strings.HasSuffix(f, ".c") || strings.HasSuffix(f, ".C") {
			out = append(out, f)
		}
	}
	return out
}

// CXXSources returns the subset of Sources routed to the C++ compilation list.
func (in *BuildInputs) CXXSources() []string {
	var out []string
	for _, f := range in.Sources {
		if strings.HasSuffix(f, ".cpp") || strings.HasSuffix(f, ".cxx") {
			out = append(out, f)
		}
	}
	return out
}

// FilesToCopy returns sources ∪ wrap_headers ∪ local_headers ∪ object_files,
// in order, as required by the Stage step (spec §4.6 step 5).
func (in *BuildInputs) FilesToCopy() []string {
	all := make([]string, 0, len(in.Sources)+len(in.WrapHeaders)+len(in.LocalHeaders)+len(in.ObjectFiles))
	all = append(all, in.Sources...)
	all = append(all, in.WrapHeaders...)
	all = append(all, in.LocalHeaders...)
	all = append(all, in.ObjectFiles...)
	return all
}

// FingerprintedFiles returns sources ∪ wrap_headers ∪ local_headers, the file
// set covered by both fingerprint stages (spec §4.1).
func (in *BuildInputs) FingerprintedFiles() []string {
	all := make([]string, 0, len(in.Sources)+len(in.WrapHeaders)+len(in.LocalHeaders))
	all = append(all, in.Sources...)
	all = append(all, in.WrapHeaders...)
	all = append(all, in.LocalHeaders...)
	return all
}

// normalize trims and validates every string-bearing field in place,
// mirroring instant.build_module's up-front strip_strings/arg_strings pass
// (spec §3's "All path strings are non-empty and trimmed").
func (in *BuildInputs) normalize() error {
	in.Sources = common.StripStrings(in.Sources)
	in.WrapHeaders = common.StripStrings(in.WrapHeaders)
	in.LocalHeaders = common.StripStrings(in.LocalHeaders)
	in.SystemHeaders = common.StripStrings(in.SystemHeaders)
	in.ObjectFiles = common.StripStrings(in.ObjectFiles)
	in.IncludeDirs = common.StripStrings(in.IncludeDirs)
	in.LibraryDirs = common.StripStrings(in.LibraryDirs)
	in.Libraries = common.StripStrings(in.Libraries)
	in.SwigArgs = common.ArgStrings(in.SwigArgs)
	in.SwigIncludeDirs = common.StripStrings(in.SwigIncludeDirs)
	in.CppArgs = common.ArgStrings(in.CppArgs)
	in.LdArgs = common.ArgStrings(in.LdArgs)

	normalizedArrays := make([][]string, len(in.Arrays))
	for i, a := range in.Arrays {
		normalizedArrays[i] = common.StripStrings(a)
	}
	in.Arrays = normalizedArrays

	return nil
}

// Validate enforces spec §3's invariants, returning *InputError on violation
// (spec §4.6 step 1).
func (in *BuildInputs) Validate() error {
	if in.ModuleName != "" && in.Signature.Kind == SignatureProvided {
		return newInputError("module_name and signature are mutually exclusive")
	}
	if strings.TrimSpace(in.SourceDirectory) == "" {
		return newInputError("source_directory must not be empty")
	}
	if !filepath.IsAbs(in.SourceDirectory) {
		return newInputError("source_directory must be absolute")
	}

	if err := in.normalize(); err != nil {
		return err
	}

	for _, f := range in.Sources {
		if filepath.IsAbs(f) {
			return newInputError("source file must be relative to source_directory, got " + f)
		}
		if !hasRecognizedSuffix(f) {
			return newInputError("source file must end in .c, .C, .cpp, or .cxx: " + f)
		}
	}
	for _, group := range [][]string{in.WrapHeaders, in.LocalHeaders, in.ObjectFiles} {
		for _, f := range group {
			if filepath.IsAbs(f) {
				return newInputError("file list entries must be relative to source_directory, got " + f)
			}
		}
	}

	return nil
}

func hasRecognizedSuffix(fileName string) bool {
	for _, suffix := range []string{".c", ".C", ".cpp", ".cxx"} {
		if strings.HasSuffix(fileName, suffix) {
			return true
		}
	}
	return false
}
