package buildcache

import "testing"

func TestValidateRejectsRelativeSourceDirectory(t *testing.T) {
	in := &BuildInputs{SourceDirectory: "relative/path"}
	err := in.Validate()
	if _, ok := err.(*InputError); !ok {
		t.Fatalf("expected *InputError for a relative source_directory, got %T: %v", err, err)
	}
}

func TestValidateRejectsModuleNameAndSignatureTogether(t *testing.T) {
	in := &BuildInputs{
		SourceDirectory: "/tmp/whatever",
		ModuleName:      "mymodule",
		Signature:       Signature{Kind: SignatureProvided, Value: "sig"},
	}
	if _, ok := in.Validate().(*InputError); !ok {
		t.Fatalf("expected *InputError when module_name and signature are both set")
	}
}

func TestValidateRejectsAbsoluteSourcePath(t *testing.T) {
	in := &BuildInputs{
		SourceDirectory: "/tmp/whatever",
		Sources:         []string{"/etc/passwd.cpp"},
	}
	if _, ok := in.Validate().(*InputError); !ok {
		t.Fatalf("expected *InputError for an absolute source file path")
	}
}

func TestValidateRejectsUnrecognizedSourceSuffix(t *testing.T) {
	in := &BuildInputs{
		SourceDirectory: "/tmp/whatever",
		Sources:         []string{"a.rs"},
	}
	if _, ok := in.Validate().(*InputError); !ok {
		t.Fatalf("expected *InputError for an unrecognized source suffix")
	}
}

func TestValidateTrimsAndSplitsArgTokens(t *testing.T) {
	in := &BuildInputs{
		SourceDirectory: "/tmp/whatever",
		CppArgs:         []string{"  -O2 -Wall  ", "", "-DFOO"},
	}
	if err := in.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"-O2", "-Wall", "-DFOO"}
	if len(in.CppArgs) != len(want) {
		t.Fatalf("CppArgs = %v, want %v", in.CppArgs, want)
	}
	for i, v := range want {
		if in.CppArgs[i] != v {
			t.Errorf("CppArgs[%d] = %q, want %q", i, in.CppArgs[i], v)
		}
	}
}

func TestCSourcesAndCXXSourcesRouting(t *testing.T) {
	in := &BuildInputs{Sources: []string{"a.c", "b.C", "c.cpp", "d.cxx"}}
	c := in.CSources()
	cxx := in.CXXSources()
	if len(c) != 2 || c[0] != "a.c" || c[1] != "b.C" {
		t.Errorf("CSources() = %v, want [a.c b.C]", c)
	}
	if len(cxx) != 2 || cxx[0] != "c.cpp" || cxx[1] != "d.cxx" {
		t.Errorf("CXXSources() = %v, want [c.cpp d.cxx]", cxx)
	}
}
