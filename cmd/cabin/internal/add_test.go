package internal

import (
	"os"
	"strings"
	"testing"

	toml "github.com/pelletier/go-toml/v2"
)

func TestDependencyGitURL(t *testing.T) {
	got, err := dependencyGitURL("fmtlib/fmt")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://github.com/fmtlib/fmt.git" {
		t.Errorf("dependencyGitURL = %q", got)
	}

	full := "https://gitlab.com/me/repo.git"
	if got, err := dependencyGitURL(full); err != nil || got != full {
		t.Errorf("dependencyGitURL(%q) = %q, %v", full, got, err)
	}

	if _, err := dependencyGitURL("nonsense"); err == nil {
		t.Error("bare name accepted as git dependency")
	}
}

func TestDependencyName(t *testing.T) {
	tests := map[string]string{
		"fmtlib/fmt":                        "fmt",
		"https://github.com/fmtlib/fmt.git": "fmt",
		"https://gitlab.com/group/thing":    "thing",
		"https://github.com/o/r.git":        "r",
	}
	for in, want := range tests {
		if got := dependencyName(in); got != want {
			t.Errorf("dependencyName(%q) = %q, want %q", in, got, want)
		}
	}
}

const addTestManifest = `[package]
name = "mypkg"
edition = "20"
version = "1.0.0"

[dependencies]
tbb = { git = "https://github.com/oneapi-src/oneTBB.git" }
toml11 = { git = "https://github.com/ToruNiina/toml11.git" }
`

func writeManifest(t *testing.T, content string) {
	t.Helper()
	chdirT(t, t.TempDir())
	if err := os.WriteFile("cabin.toml", []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readDeps(t *testing.T) map[string]any {
	t.Helper()
	data, err := os.ReadFile("cabin.toml")
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	deps, _ := doc["dependencies"].(map[string]any)
	return deps
}

func TestRunAddGitDependency(t *testing.T) {
	writeManifest(t, addTestManifest)
	addSystem, addVersion, addTag, addRev, addBranch = false, "", "v11.0.0", "", ""
	defer func() { addTag = "" }()

	if err := runAdd(addCmd, []string{"fmtlib/fmt"}); err != nil {
		t.Fatal(err)
	}

	deps := readDeps(t)
	entry, found := deps["fmt"].(map[string]any)
	if !found {
		t.Fatalf("fmt not added: %v", deps)
	}
	if entry["git"] != "https://github.com/fmtlib/fmt.git" {
		t.Errorf("git = %v", entry["git"])
	}
	if entry["tag"] != "v11.0.0" {
		t.Errorf("tag = %v", entry["tag"])
	}
	// Existing dependencies survive the rewrite.
	if _, kept := deps["tbb"]; !kept {
		t.Error("tbb was dropped")
	}
}

func TestRunAddSystemDependencyRequiresVersion(t *testing.T) {
	writeManifest(t, addTestManifest)
	addSystem, addVersion, addTag, addRev, addBranch = true, "", "", "", ""
	defer func() { addSystem = false }()

	err := runAdd(addCmd, []string{"openssl"})
	if err == nil || !strings.Contains(err.Error(), "`--version` option is required") {
		t.Fatalf("error = %v", err)
	}

	addVersion = "^3.0"
	defer func() { addVersion = "" }()
	if err := runAdd(addCmd, []string{"openssl"}); err != nil {
		t.Fatal(err)
	}
	entry := readDeps(t)["openssl"].(map[string]any)
	if entry["version"] != "^3.0" || entry["system"] != true {
		t.Errorf("openssl entry = %v", entry)
	}
}

func TestRunRemove(t *testing.T) {
	writeManifest(t, addTestManifest)

	if err := runRemove(removeCmd, []string{"tbb", "mydep", "toml11"}); err != nil {
		t.Fatal(err)
	}
	deps := readDeps(t)
	if len(deps) != 0 {
		t.Errorf("dependencies left: %v", deps)
	}

	// The package table is untouched.
	data, err := os.ReadFile("cabin.toml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `name = 'mypkg'`) &&
		!strings.Contains(string(data), `name = "mypkg"`) {
		t.Errorf("package table damaged:\n%s", data)
	}
}

func TestRunRemoveNoDependencies(t *testing.T) {
	writeManifest(t, `[package]
name = "mypkg"
edition = "20"
version = "1.0.0"
`)
	err := runRemove(removeCmd, []string{"tbb"})
	if err == nil || !strings.Contains(err.Error(), "No dependencies to remove") {
		t.Errorf("error = %v", err)
	}
}
