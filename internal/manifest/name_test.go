package manifest

import (
	"strings"
	"testing"
)

func TestValidateDepName(t *testing.T) {
	fails := []struct {
		name string
		want string
	}{
		{"", "dependency name is empty"},
		{"-", "dependency name must start with an alphanumeric character"},
		{"1-", "dependency name must end with an alphanumeric character or `+`"},
		{"1--1", "dependency name must not contain consecutive non-alphanumeric characters"},
		{"a.a", "dependency name must contain `.` wrapped by digits"},
		{"a/b/c", "dependency name must not contain more than one `/`"},
		{"a+", "dependency name must contain zero or two `+`"},
		{"a+++", "dependency name must contain zero or two `+`"},
		{"a+b+c", "`+` in the dependency name must be consecutive"},
	}
	for _, tt := range fails {
		err := ValidateDepName(tt.name)
		if err == nil {
			t.Errorf("ValidateDepName(%q) = nil, want error", tt.name)
			continue
		}
		if err.Error() != tt.want {
			t.Errorf("ValidateDepName(%q) = %q, want %q", tt.name, err, tt.want)
		}
	}

	// Every disallowed character anywhere in the middle is rejected.
	for c := byte(1); c < 127; c++ {
		if isAlnum(c) || depNameAllowed(c) {
			continue
		}
		name := "1" + string(c) + "1"
		if err := ValidateDepName(name); err == nil {
			t.Errorf("ValidateDepName(%q) = nil, want error", name)
		}
	}

	oks := []string{"1-1-1", "1.1", "1.1.1", "a/b", "gtkmm-4.0", "ncurses++", "fmt", "tbb"}
	for _, name := range oks {
		if err := ValidateDepName(name); err != nil {
			t.Errorf("ValidateDepName(%q) = %v, want nil", name, err)
		}
	}
}

func TestValidatePackageName(t *testing.T) {
	fails := []struct {
		name string
		want string
	}{
		{"", "must not be empty"},
		{"a", "must be more than one character"},
		{"myProj", "must only contain lowercase letters, numbers, dashes, and underscores"},
		{"my proj", "must only contain lowercase letters, numbers, dashes, and underscores"},
		{"1abc", "must start with a letter"},
		{"ab-", "must end with a letter or digit"},
		{"class", "must not be a C++ keyword"},
		{"float", "must not be a C++ keyword"},
	}
	for _, tt := range fails {
		err := ValidatePackageName(tt.name)
		if err == nil {
			t.Errorf("ValidatePackageName(%q) = nil, want error", tt.name)
			continue
		}
		if !strings.HasSuffix(err.Error(), tt.want) {
			t.Errorf("ValidatePackageName(%q) = %q, want suffix %q", tt.name, err, tt.want)
		}
	}

	for _, name := range []string{"hello_world", "my-pkg", "pkg2", "ab"} {
		if err := ValidatePackageName(name); err != nil {
			t.Errorf("ValidatePackageName(%q) = %v, want nil", name, err)
		}
	}
}

func TestEditionFromString(t *testing.T) {
	aliases := map[string]int{
		"98": 1998, "03": 2003,
		"0x": 2011, "11": 2011,
		"1y": 2014, "14": 2014,
		"1z": 2017, "17": 2017,
		"2a": 2020, "20": 2020,
		"2b": 2023, "23": 2023,
		"2c": 2026,
	}
	for code, year := range aliases {
		e, err := EditionFromString(code)
		if err != nil {
			t.Errorf("EditionFromString(%q): %v", code, err)
			continue
		}
		if e.Year != year {
			t.Errorf("EditionFromString(%q).Year = %d, want %d", code, e.Year, year)
		}
		if e.Str != code {
			t.Errorf("EditionFromString(%q).Str = %q", code, e.Str)
		}
	}
	for _, bad := range []string{"", "99", "c++20", "26"} {
		if _, err := EditionFromString(bad); err == nil {
			t.Errorf("EditionFromString(%q) = nil, want error", bad)
		}
	}
}
