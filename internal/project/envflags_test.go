package project

import (
	"reflect"
	"testing"
)

func TestParseEnvFlags(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{" a   b c ", []string{"a", "b", "c"}},
		{
			`  a\ bc   cd\$fg  hi windows\\path\\here  `,
			[]string{"a bc", "cd$fg", "hi", `windows\path\here`},
		},
		{
			` "-I/path/contains space"  '-Lanother/path with/space' normal  `,
			[]string{"-I/path/contains space", "-Lanother/path with/space", "normal"},
		},
		{"", nil},
		{"   ", nil},
		{"-O2", []string{"-O2"}},
	}
	for _, tt := range tests {
		got := ParseEnvFlags(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseEnvFlags(%q) = %#v, want %#v", tt.input, got, tt.want)
		}
	}
}

func TestToMacroName(t *testing.T) {
	tests := map[string]string{
		"hello_world": "HELLO_WORLD",
		"my-pkg":      "MY_PKG",
		"pkg2":        "PKG2",
	}
	for in, want := range tests {
		if got := ToMacroName(in); got != want {
			t.Errorf("ToMacroName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFromDebugFlag(t *testing.T) {
	if FromDebugFlag(true) != Dev || FromDebugFlag(false) != Release {
		t.Error("FromDebugFlag mapping wrong")
	}
	if Dev.OutDirName() != "debug" || Release.OutDirName() != "release" {
		t.Error("OutDirName mapping wrong")
	}
}
