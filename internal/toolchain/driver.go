// Package toolchain defines the external collaborators spec.md scopes out of
// the core: the code generator that writes the wrapper interface file, the
// build descriptor writer, the toolchain subprocess invocation itself, and
// the presence check. buildcache.Orchestrator consumes a Driver; it never
// invokes a compiler directly.
package toolchain

// Kind selects which Driver builds a given request (spec §9 REDESIGN FLAGS:
// unify the VTK/VMTK duplicate orchestrator paths under one driver
// abstraction with two concrete drivers).
type Kind int

const (
	// SWIG is the default driver: a generated wrapper interface file plus a
	// conventional compile-and-link invocation.
	SWIG Kind = iota
	// CMake drives an external CMake-based build, grounded on
	// build_module_vtk/build_module_vmtk in original_source/instant/build.py.
	CMake
)

// InterfaceFileInputs bundles the arguments write_interface_file needs (spec
// §6).
type InterfaceFileInputs struct {
	ModuleName             string
	InlineCode             string
	InitCode               string
	AdditionalDefinitions  string
	AdditionalDeclarations string
	SystemHeaders          []string
	LocalHeaders           []string
	WrapHeaders            []string
	Arrays                 [][]string
}

// BuildDescriptorInputs bundles the arguments write_build_descriptor needs
// (spec §6).
type BuildDescriptorInputs struct {
	ModuleName      string
	CSources        []string
	CXXSources      []string
	LocalHeaders    []string
	IncludeDirs     []string
	LibraryDirs     []string
	Libraries       []string
	SwigIncludeDirs []string
	SwigArgs        []string
	CppArgs         []string
	LdArgs          []string
}

// RunResult is what run_toolchain returns (spec §6): the subprocess's exit
// code and its combined stdout+stderr.
type RunResult struct {
	ExitCode       int
	CombinedOutput []byte
}

// Driver is the ToolchainDriver abstraction from spec §9 REDESIGN FLAGS: the
// state machine in buildcache.Orchestrator is identical regardless of which
// Driver is plugged in; only interface-file generation and compilation
// delegate through it.
type Driver interface {
	// EnsureToolchainPresent verifies the wrapper generator / compiler is
	// installed (spec §6).
	EnsureToolchainPresent() error

	// WriteInterfaceFile emits the generated wrapper interface file at path
	// (spec §4.6 step 5, §6).
	WriteInterfaceFile(path string, in InterfaceFileInputs) error

	// WriteBuildDescriptor emits the toolchain-readable project file at path
	// (spec §4.6 step 5, §6).
	WriteBuildDescriptor(path string, in BuildDescriptorInputs) error

	// RunToolchain invokes the external build synchronously, capturing both
	// output streams (spec §5 "Suspension points", §6).
	RunToolchain(descriptorPath string) (RunResult, error)

	// InterfaceFileName returns the generated interface file's name for
	// moduleName (e.g. "<name>.i" for SWIG, "<name>.vtk.i" for the CMake
	// driver) so the orchestrator can locate it without knowing the driver's
	// naming convention.
	InterfaceFileName(moduleName string) string

	// DescriptorFileName returns the build descriptor's file name for
	// moduleName.
	DescriptorFileName(moduleName string) string
}
