package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cabinpkg/cabin/internal/manifest"
)

func TestCreateTemplateFilesBin(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hello_world")
	if err := createTemplateFiles(true, dir, "hello_world"); err != nil {
		t.Fatal(err)
	}

	for _, rel := range []string{"cabin.toml", ".gitignore", "src/main.cc"} {
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}

	m, err := manifest.Parse(filepath.Join(dir, "cabin.toml"), false)
	if err != nil {
		t.Fatalf("generated manifest does not validate: %v", err)
	}
	if m.Package.Name != "hello_world" {
		t.Errorf("name = %q", m.Package.Name)
	}
	if got := m.Package.Version.String(); got != "0.1.0" {
		t.Errorf("version = %q", got)
	}
	if m.Package.Edition.Year != 2020 {
		t.Errorf("edition year = %d", m.Package.Edition.Year)
	}

	mainSrc, err := os.ReadFile(filepath.Join(dir, "src", "main.cc"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(mainSrc), `"Hello, world!"`) {
		t.Errorf("main.cc:\n%s", mainSrc)
	}

	gitignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(gitignore), "/cabin-out") {
		t.Errorf(".gitignore:\n%s", gitignore)
	}
}

func TestCreateTemplateFilesLib(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mylib")
	if err := createTemplateFiles(false, dir, "mylib"); err != nil {
		t.Fatal(err)
	}

	header := filepath.Join(dir, "include", "mylib", "mylib.hpp")
	data, err := os.ReadFile(header)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{"#ifndef MYLIB_HPP", "#define MYLIB_HPP", "namespace mylib"} {
		if !strings.Contains(text, want) {
			t.Errorf("header missing %q:\n%s", want, text)
		}
	}

	gitignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(gitignore), "cabin.lock") {
		t.Errorf(".gitignore:\n%s", gitignore)
	}
	if _, err := os.Stat(filepath.Join(dir, "src")); err == nil {
		t.Error("library template should not create src/")
	}
}

func TestRunNewRejectsEmptyAndExisting(t *testing.T) {
	chdirT(t, t.TempDir())

	err := runNew(newCmd, nil)
	if err == nil || err.Error() != "package name must not be empty" {
		t.Errorf("runNew() error = %v", err)
	}

	if err := os.Mkdir("taken", 0o755); err != nil {
		t.Fatal(err)
	}
	err = runNew(newCmd, []string{"taken"})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("runNew(taken) error = %v", err)
	}
}

func TestRunNewCreatesGitRepo(t *testing.T) {
	chdirT(t, t.TempDir())
	newLib = false

	if err := runNew(newCmd, []string{"proj"}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join("proj", ".git")); err != nil {
		t.Errorf("missing .git: %v", err)
	}
}
