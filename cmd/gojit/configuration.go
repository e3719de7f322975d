package main

import (
	"github.com/BurntSushi/toml"
)

// Configuration is gojit's process-wide config, loaded from an optional TOML
// file the same way client/configuration.go and nocc-daemon/configuration.go
// load theirs: a struct of defaults, overridden field-by-field by whatever
// the file sets.
type Configuration struct {
	CacheDir    string
	LogFileName string
	LogLevel    int

	Toolchain   string // "swig" (default) or "cmake"
	CompilerCC  string
	CompilerCXX string
	CMakeBinary string
	MakeBinary  string
}

func ParseConfiguration(filePath string) (*Configuration, error) {
	config := Configuration{
		LogFileName: "stderr",
		LogLevel:    0,
		Toolchain:   "swig",
	}
	if filePath == "" {
		return &config, nil
	}
	if _, err := toml.DecodeFile(filePath, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// buildRequestFile is the on-disk TOML shape of a single BuildInputs
// request, the gojit analogue of the descriptor files client/invocation.go
// parses out of a compiler invocation's argument list.
type buildRequestFile struct {
	ModuleName      string
	SourceDirectory string

	InlineCode             string
	InitCode               string
	AdditionalDefinitions  string
	AdditionalDeclarations string

	Sources      []string
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

	Arrays [][]string

	GenerateInterface bool
	GenerateSetup     bool

	Signature string
	CacheDir  string
}

func parseBuildRequest(filePath string) (*buildRequestFile, error) {
	var req buildRequestFile
	if _, err := toml.DecodeFile(filePath, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
