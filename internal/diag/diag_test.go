package diag

import "testing"

func TestParseColorMode(t *testing.T) {
	tests := map[string]ColorMode{
		"auto":   ColorAuto,
		"always": ColorAlways,
		"never":  ColorNever,
	}
	for in, want := range tests {
		got, err := ParseColorMode(in)
		if err != nil {
			t.Errorf("ParseColorMode(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseColorMode(%q) = %v, want %v", in, got, want)
		}
	}

	for _, bad := range []string{"", "on", "ALWAYS", "yes"} {
		if _, err := ParseColorMode(bad); err == nil {
			t.Errorf("ParseColorMode(%q) = nil, want error", bad)
		}
	}
}

func TestVerbosityFlags(t *testing.T) {
	Setup(Config{Color: ColorNever, Verbosity: 0})
	if IsVerbose() || IsQuiet() {
		t.Error("default config is verbose or quiet")
	}

	Setup(Config{Color: ColorNever, Verbosity: 2, Quiet: false})
	if !IsVerbose() {
		t.Error("IsVerbose() = false with -vv")
	}

	Setup(Config{Color: ColorNever, Quiet: true})
	if !IsQuiet() {
		t.Error("IsQuiet() = false with -q")
	}
}

func TestShouldColorStderrForcedModes(t *testing.T) {
	Setup(Config{Color: ColorAlways})
	if !ShouldColorStderr() {
		t.Error("ShouldColorStderr() = false with --color always")
	}
	Setup(Config{Color: ColorNever})
	if ShouldColorStderr() {
		t.Error("ShouldColorStderr() = true with --color never")
	}
}
