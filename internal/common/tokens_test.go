package common

import (
	"reflect"
	"testing"
)

func TestStripStrings(t *testing.T) {
	got := StripStrings([]string{"  foo  ", "", "   ", "bar"})
	want := []string{"foo", "bar"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("StripStrings() = %v, want %v", got, want)
	}
}

func TestArgStringsSplitsWhitespaceSeparatedElements(t *testing.T) {
	got := ArgStrings([]string{"-O2 -Wall", "", "-DFOO=1"})
	want := []string{"-O2", "-Wall", "-DFOO=1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ArgStrings() = %v, want %v", got, want)
	}
}

func TestArgStringsAcceptsOneFlagPerElementToo(t *testing.T) {
	got := ArgStrings([]string{"-O2", "-Wall"})
	want := []string{"-O2", "-Wall"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ArgStrings() = %v, want %v", got, want)
	}
}
