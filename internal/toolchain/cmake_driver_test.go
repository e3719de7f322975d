package toolchain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCMakeDriverWriteBuildDescriptorListsSources(t *testing.T) {
	driver := NewCMakeDriver("", "")
	path := filepath.Join(t.TempDir(), "CMakeLists.txt")

	err := driver.WriteBuildDescriptor(path, BuildDescriptorInputs{
		ModuleName: "m1",
		CSources:   []string{"a.c"},
		CXXSources: []string{"b.cpp"},
		Libraries:  []string{"vtkCommon"},
	})
	if err != nil {
		t.Fatalf("WriteBuildDescriptor: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading CMakeLists.txt: %v", err)
	}
	contents := string(data)

	for _, want := range []string{
		"project(m1)",
		"add_library(m1 SHARED a.c b.cpp)",
		"target_link_libraries(m1 PRIVATE vtkCommon)",
	} {
		if !strings.Contains(contents, want) {
			t.Errorf("CMakeLists.txt missing %q:\n%s", want, contents)
		}
	}
}

func TestCMakeDriverDefaultsBinaries(t *testing.T) {
	driver := NewCMakeDriver("", "")
	if driver.CMakeBinary != "cmake" || driver.MakeBinary != "make" {
		t.Errorf("defaults = (%q, %q), want (cmake, make)", driver.CMakeBinary, driver.MakeBinary)
	}
}

func TestCMakeDriverFileNames(t *testing.T) {
	driver := NewCMakeDriver("", "")
	if driver.DescriptorFileName("m1") != "CMakeLists.txt" {
		t.Errorf("DescriptorFileName = %q, want CMakeLists.txt", driver.DescriptorFileName("m1"))
	}
	if driver.InterfaceFileName("m1") != "m1.vtk.i" {
		t.Errorf("InterfaceFileName = %q, want m1.vtk.i", driver.InterfaceFileName("m1"))
	}
}
