package command

import (
	"strings"
	"testing"
)

func TestOutputCapturesBothStreams(t *testing.T) {
	cmd := New("sh", "-c", "echo out; echo err >&2")
	out, err := cmd.Output()
	if err != nil {
		t.Fatal(err)
	}
	if !out.ExitStatus.Success() {
		t.Fatalf("status = %s, want success", out.ExitStatus)
	}
	if out.Stdout != "out\n" {
		t.Errorf("stdout = %q, want %q", out.Stdout, "out\n")
	}
	if out.Stderr != "err\n" {
		t.Errorf("stderr = %q, want %q", out.Stderr, "err\n")
	}
}

func TestExitStatusNonZero(t *testing.T) {
	out, err := New("sh", "-c", "exit 7").Output()
	if err != nil {
		t.Fatal(err)
	}
	st := out.ExitStatus
	if st.Success() {
		t.Error("Success() = true for exit 7")
	}
	if !st.ExitedNormally() {
		t.Error("ExitedNormally() = false for plain exit")
	}
	if st.ExitCode() != 7 {
		t.Errorf("ExitCode() = %d, want 7", st.ExitCode())
	}
	if got := st.String(); got != "exited with code 7" {
		t.Errorf("String() = %q", got)
	}
}

func TestExitStatusSignal(t *testing.T) {
	out, err := New("sh", "-c", "kill -TERM $$").Output()
	if err != nil {
		t.Fatal(err)
	}
	st := out.ExitStatus
	if !st.KilledBySignal() {
		t.Fatal("KilledBySignal() = false")
	}
	if st.TermSignal() != 15 {
		t.Errorf("TermSignal() = %d, want 15", st.TermSignal())
	}
	if got := st.String(); !strings.HasPrefix(got, "killed by signal 15") {
		t.Errorf("String() = %q", got)
	}
}

func TestSpawnWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	out, err := New("pwd").SetDir(dir).Output()
	if err != nil {
		t.Fatal(err)
	}
	// Resolve symlinks on platforms where TempDir is behind one.
	if !strings.Contains(out.Stdout, "/") {
		t.Fatalf("pwd output = %q", out.Stdout)
	}
	if !out.ExitStatus.Success() {
		t.Errorf("status = %s", out.ExitStatus)
	}
}

func TestGetOutputRetrySurfacesStderr(t *testing.T) {
	cmd := New("sh", "-c", "echo broken >&2; exit 1")
	_, err := GetOutputRetry(cmd, 1)
	if err == nil {
		t.Fatal("GetOutputRetry succeeded, want error")
	}
	if !strings.Contains(err.Error(), "exited with code 1") {
		t.Errorf("error %q does not contain the exit status", err)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error %q does not surface stderr", err)
	}
}

func TestGetOutputSuccess(t *testing.T) {
	got, err := GetOutput(New("echo", "hello"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello\n" {
		t.Errorf("GetOutput = %q", got)
	}
}

func TestExists(t *testing.T) {
	if !Exists("sh") {
		t.Error("Exists(sh) = false")
	}
	if Exists("definitely-not-a-real-command-xyz") {
		t.Error("Exists(nonsense) = true")
	}
}

func TestCommandString(t *testing.T) {
	if got := New("cc", "-c", "a.cc").String(); got != "cc -c a.cc" {
		t.Errorf("String() = %q", got)
	}
	if got := New("make").String(); got != "make" {
		t.Errorf("String() = %q", got)
	}
}
