package toolchain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// SWIGDriver is the default Driver: it writes a SWIG-shaped wrapper
// interface file and a JSON build descriptor, then drives a plain C/C++
// compiler to produce a shared object. The descriptor's shape (encoded with
// encoding/json) follows the same pattern cxx-launcher.go uses to shuttle
// build options around (internal/server/cxx-launcher.go imports
// encoding/json for exactly this kind of structured, on-disk build
// configuration).
type SWIGDriver struct {
	// CompilerCC is the C compiler binary, e.g. "cc" or "gcc".
	CompilerCC string
	// CompilerCXX is the C++ compiler binary, e.g. "c++" or "g++".
	CompilerCXX string
}

func NewSWIGDriver(compilerCC, compilerCXX string) *SWIGDriver {
	if compilerCC == "" {
		compilerCC = "cc"
	}
	if compilerCXX == "" {
		compilerCXX = "c++"
	}
	return &SWIGDriver{CompilerCC: compilerCC, CompilerCXX: compilerCXX}
}

func (d *SWIGDriver) InterfaceFileName(moduleName string) string {
	return moduleName + ".i"
}

func (d *SWIGDriver) DescriptorFileName(moduleName string) string {
	return moduleName + ".build.json"
}

func (d *SWIGDriver) EnsureToolchainPresent() error {
	compiler := d.CompilerCXX
	if _, err := exec.LookPath(compiler); err != nil {
		return fmt.Errorf("%s not found on PATH: %w", compiler, err)
	}
	return nil
}

// WriteInterfaceFile emits a wrapper source file: system, local and wrap
// headers included verbatim, then additional_definitions, then
// additional_declarations, then the array bindings as a comment, then the
// user's inline code, then init_code wrapped in a constructor so it runs at
// load time (the Go-native stand-in for SWIG's %init block).
func (d *SWIGDriver) WriteInterfaceFile(path string, in InterfaceFileInputs) error {
	var b bytes.Buffer

	fmt.Fprintf(&b, "/* generated wrapper interface for module %q */\n", in.ModuleName)
	for _, h := range in.SystemHeaders {
		fmt.Fprintf(&b, "#include <%s>\n", h)
	}
	for _, h := range in.LocalHeaders {
		fmt.Fprintf(&b, "#include \"%s\"\n", h)
	}
	for _, h := range in.WrapHeaders {
		fmt.Fprintf(&b, "#include \"%s\"\n", h)
	}
	if in.AdditionalDefinitions != "" {
		b.WriteString(in.AdditionalDefinitions)
		b.WriteString("\n")
	}
	if in.AdditionalDeclarations != "" {
		b.WriteString(in.AdditionalDeclarations)
		b.WriteString("\n")
	}
	if len(in.Arrays) > 0 {
		b.WriteString("/* array bindings:\n")
		for _, dims := range in.Arrays {
			fmt.Fprintf(&b, " *   %s\n", strings.Join(dims, ", "))
		}
		b.WriteString(" */\n")
	}
	b.WriteString(in.InlineCode)
	b.WriteString("\n")
	if in.InitCode != "" {
		fmt.Fprintf(&b, "__attribute__((constructor))\nstatic void %s_init(void) {\n%s\n}\n", in.ModuleName, in.InitCode)
	}

	return os.WriteFile(path, b.Bytes(), 0644)
}

// buildDescriptor is the on-disk shape of BuildDescriptorInputs.
type buildDescriptor struct {
	ModuleName      string   `json:"module_name"`
	CSources        []string `json:"c_sources"`
	CXXSources      []string `json:"cxx_sources"`
	LocalHeaders    []string `json:"local_headers"`
	IncludeDirs     []string `json:"include_dirs"`
	LibraryDirs     []string `json:"library_dirs"`
	Libraries       []string `json:"libraries"`
	SwigIncludeDirs []string `json:"swig_include_dirs"`
	SwigArgs        []string `json:"swig_args"`
	CppArgs         []string `json:"cpp_args"`
	LdArgs          []string `json:"ld_args"`
}

func (d *SWIGDriver) WriteBuildDescriptor(path string, in BuildDescriptorInputs) error {
	desc := buildDescriptor{
		ModuleName:      in.ModuleName,
		CSources:        in.CSources,
		CXXSources:      in.CXXSources,
		LocalHeaders:    in.LocalHeaders,
		IncludeDirs:     in.IncludeDirs,
		LibraryDirs:     in.LibraryDirs,
		Libraries:       in.Libraries,
		SwigIncludeDirs: in.SwigIncludeDirs,
		SwigArgs:        in.SwigArgs,
		CppArgs:         in.CppArgs,
		LdArgs:          in.LdArgs,
	}
	data, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RunToolchain reads the descriptor and invokes the compiler to produce
// <module_name>.so, alongside the interface file it's compiling. Both
// streams are captured into one buffer, matching compile-locally.go's
// RunCompilerLocally (internal/client/compile-locally.go).
func (d *SWIGDriver) RunToolchain(descriptorPath string) (RunResult, error) {
	data, err := os.ReadFile(descriptorPath)
	if err != nil {
		return RunResult{}, err
	}
	var desc buildDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return RunResult{}, err
	}

	dir := filepath.Dir(descriptorPath)
	soName := desc.ModuleName + ".so"

	args := []string{"-shared", "-fPIC", "-o", soName, d.InterfaceFileName(desc.ModuleName)}
	args = append(args, desc.CSources...)
	args = append(args, desc.CXXSources...)
	for _, dir := range desc.IncludeDirs {
		args = append(args, "-I", dir)
	}
	for _, dir := range desc.LibraryDirs {
		args = append(args, "-L", dir)
	}
	for _, lib := range desc.Libraries {
		args = append(args, "-l"+lib)
	}
	args = append(args, desc.CppArgs...)
	args = append(args, desc.LdArgs...)

	compiler := d.CompilerCXX
	if len(desc.CXXSources) == 0 && len(desc.CSources) > 0 {
		compiler = d.CompilerCC
	}

	cmd := exec.Command(compiler, args...)
	cmd.Dir = dir
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	runErr := cmd.Run()
	exitCode := 0
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	if runErr != nil && cmd.ProcessState == nil {
		return RunResult{}, runErr
	}

	return RunResult{ExitCode: exitCode, CombinedOutput: combined.Bytes()}, nil
}
