package buildcache

import (
	"errors"
	"hash"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gojit/internal/common"
)

// canonicalText joins a field's string representation with every other
// field's, newline-separated, matching spec §4.1's canonicalization rule:
// "the whole serialization is a newline-joined concatenation of field
// representations". Sequences are joined element-wise preserving order.
type canonicalText struct {
	b strings.Builder
}

func (c *canonicalText) str(s string) *canonicalText {
	c.b.WriteString(s)
	c.b.WriteByte('\n')
	return c
}

func (c *canonicalText) bool(v bool) *canonicalText {
	return c.str(strconv.FormatBool(v))
}

func (c *canonicalText) strs(vs []string) *canonicalText {
	for _, v := range vs {
		c.str(v)
	}
	c.str("") // sequence terminator, so two adjacent sequences can't alias
	return c
}

func (c *canonicalText) strGrid(vs [][]string) *canonicalText {
	for _, row := range vs {
		c.strs(row)
	}
	c.str("")
	return c
}

func (c *canonicalText) Bytes() []byte {
	return []byte(c.b.String())
}

// InterfaceFingerprint computes the "what to generate" fingerprint (spec
// §4.1): covers inputs that influence wrapper-file generation and
// compilation, plus the byte contents of sources ∪ wrap_headers ∪
// local_headers resolved relative to source_directory.
func InterfaceFingerprint(in *BuildInputs) (common.Fingerprint, error) {
	text := new(canonicalText).
		str(in.InlineCode).
		str(in.InitCode).
		str(in.AdditionalDefinitions).
		str(in.AdditionalDeclarations).
		strs(in.SystemHeaders).
		strs(in.IncludeDirs).
		strs(in.LibraryDirs).
		strs(in.Libraries).
		strs(in.SwigIncludeDirs).
		strs(in.SwigArgs).
		strs(in.CppArgs).
		strs(in.LdArgs).
		strs(in.ObjectFiles).
		strGrid(in.Arrays).
		bool(in.GenerateInterface).
		bool(in.GenerateSetup)

	hasher := common.NewFingerprintHasher()
	_, _ = hasher.Write(text.Bytes())

	if err := hashFilesRelativeTo(hasher, in.SourceDirectory, in.FingerprintedFiles()); err != nil {
		return common.Fingerprint{}, err
	}

	return common.MakeFingerprint(hasher), nil
}

// CompilationFingerprint computes the "what to compile" fingerprint (spec
// §4.1): covers inputs that influence only the toolchain step, plus the byte
// contents of sources ∪ wrap_headers ∪ local_headers ∪ {the generated
// interface file}. interfaceFilePath is an absolute path, already staged.
func CompilationFingerprint(in *BuildInputs, interfaceFilePath string) (common.Fingerprint, error) {
	text := new(canonicalText).
		strs(in.SystemHeaders).
		strs(in.IncludeDirs).
		strs(in.LibraryDirs).
		strs(in.Libraries).
		strs(in.SwigArgs).
		strs(in.SwigIncludeDirs).
		strs(in.CppArgs).
		strs(in.LdArgs).
		strs(in.ObjectFiles)

	hasher := common.NewFingerprintHasher()
	_, _ = hasher.Write(text.Bytes())

	if err := hashFilesRelativeTo(hasher, in.SourceDirectory, in.FingerprintedFiles()); err != nil {
		return common.Fingerprint{}, err
	}
	// The interface file already lives inside the staged directory, so it's
	// hashed by its own absolute path rather than relative to SourceDirectory.
	if interfaceFilePath != "" {
		if err := common.HashFileInto(hasher, interfaceFilePath); err != nil {
			return common.Fingerprint{}, wrapIOError("hashing interface file "+interfaceFilePath, err)
		}
	}

	return common.MakeFingerprint(hasher), nil
}

// hashFilesRelativeTo appends the byte contents of each file in names
// (resolved relative to sourceDirectory) to hasher, in order, as spec §4.1
// requires: "File contents are appended by reading each file once and
// hashing its bytes." A missing file under source_directory is an
// *InputError (spec §4.1 failure modes).
func hashFilesRelativeTo(hasher hash.Hash, sourceDirectory string, names []string) error {
	for _, name := range names {
		full := filepath.Join(sourceDirectory, name)
		if err := common.HashFileInto(hasher, full); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return newInputError("missing source file under source_directory: %s", full)
			}
			return wrapIOError("hashing file "+full, err)
		}
	}
	return nil
}
