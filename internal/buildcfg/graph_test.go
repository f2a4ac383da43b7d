package buildcfg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseMMOutput(t *testing.T) {
	out := "main.o: /proj/src/main.cc /proj/src/util.hpp \\\n /proj/src/math.hpp\n"
	obj, deps := parseMMOutput(out)
	if obj != "main.o" {
		t.Errorf("obj = %q", obj)
	}
	if len(deps) != 2 {
		t.Fatalf("deps = %v", deps)
	}
	for _, want := range []string{"/proj/src/util.hpp", "/proj/src/math.hpp"} {
		if !deps[want] {
			t.Errorf("deps missing %s: %v", want, deps)
		}
	}
}

func TestParseMMOutputNoHeaders(t *testing.T) {
	obj, deps := parseMMOutput("main.o: /proj/src/main.cc\n")
	if obj != "main.o" {
		t.Errorf("obj = %q", obj)
	}
	if len(deps) != 0 {
		t.Errorf("deps = %v, want empty", deps)
	}
}

func TestMapHeaderToObj(t *testing.T) {
	root := t.TempDir()
	config := testConfig(t, root)

	got := config.mapHeaderToObj(filepath.Join(root, "src", "util.hpp"))
	want := filepath.Join(config.Project.BuildOutPath, "util.o")
	if got != want {
		t.Errorf("mapHeaderToObj = %q, want %q", got, want)
	}

	got = config.mapHeaderToObj(filepath.Join(root, "src", "path", "to", "foo.hpp"))
	want = filepath.Join(config.Project.BuildOutPath, "path", "to", "foo.o")
	if got != want {
		t.Errorf("mapHeaderToObj = %q, want %q", got, want)
	}
}

func TestCollectBinDepObjs(t *testing.T) {
	root := t.TempDir()
	config := testConfig(t, root)
	src := func(name string) string { return filepath.Join(root, "src", name) }
	obj := func(name string) string {
		return filepath.Join(config.Project.BuildOutPath, name)
	}

	// main.cc includes a.hpp; a.cc includes b.hpp; b.cc standalone.
	buildObjTargets := map[string]bool{
		obj("main.o"): true, obj("a.o"): true, obj("b.o"): true,
	}
	config.defineCompileTarget(obj("main.o"), src("main.cc"),
		map[string]bool{src("a.hpp"): true}, false)
	config.defineCompileTarget(obj("a.o"), src("a.cc"),
		map[string]bool{src("a.hpp"): true, src("b.hpp"): true}, false)
	config.defineCompileTarget(obj("b.o"), src("b.cc"),
		map[string]bool{src("b.hpp"): true}, false)

	deps := map[string]bool{obj("main.o"): true}
	config.collectBinDepObjs(deps, "", config.targets[obj("main.o")].RemDeps, buildObjTargets)

	for _, want := range []string{obj("main.o"), obj("a.o"), obj("b.o")} {
		if !deps[want] {
			t.Errorf("deps missing %s: %v", want, deps)
		}
	}
	if len(deps) != 3 {
		t.Errorf("deps = %v", deps)
	}
}

func TestCollectBinDepObjsSkipsOwnStem(t *testing.T) {
	root := t.TempDir()
	config := testConfig(t, root)
	src := func(name string) string { return filepath.Join(root, "src", name) }
	obj := func(name string) string {
		return filepath.Join(config.Project.BuildOutPath, name)
	}

	buildObjTargets := map[string]bool{obj("a.o"): true}
	config.defineCompileTarget(obj("a.o"), src("a.cc"),
		map[string]bool{src("a.hpp"): true}, false)

	// A test binary for a.cc must not link the production a.o.
	deps := map[string]bool{}
	config.collectBinDepObjs(deps, "a", config.targets[obj("a.o")].RemDeps, buildObjTargets)
	if len(deps) != 0 {
		t.Errorf("deps = %v, want empty", deps)
	}
}

func TestCollectBinDepObjsIgnoresCycles(t *testing.T) {
	root := t.TempDir()
	config := testConfig(t, root)
	src := func(name string) string { return filepath.Join(root, "src", name) }
	obj := func(name string) string {
		return filepath.Join(config.Project.BuildOutPath, name)
	}

	// a includes b.hpp, b includes a.hpp: mutual recursion must stop.
	buildObjTargets := map[string]bool{obj("a.o"): true, obj("b.o"): true}
	config.defineCompileTarget(obj("a.o"), src("a.cc"),
		map[string]bool{src("b.hpp"): true}, false)
	config.defineCompileTarget(obj("b.o"), src("b.cc"),
		map[string]bool{src("a.hpp"): true}, false)

	deps := map[string]bool{obj("a.o"): true}
	config.collectBinDepObjs(deps, "", config.targets[obj("a.o")].RemDeps, buildObjTargets)
	if !deps[obj("b.o")] || len(deps) != 2 {
		t.Errorf("deps = %v", deps)
	}
}

func TestFindEntryPoint(t *testing.T) {
	srcDir := filepath.Join(t.TempDir(), "src")
	if err := os.MkdirAll(filepath.Join(srcDir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	write := func(name string) {
		if err := os.WriteFile(filepath.Join(srcDir, name), []byte("int x;\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("main.cc")
	write("util.cpp")
	write("main.txt") // not a source file
	write(filepath.Join("sub", "main.cc"))

	got, err := findEntryPoint(srcDir, "main")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(srcDir, "main.cc") {
		t.Errorf("findEntryPoint = %q", got)
	}

	lib, err := findEntryPoint(srcDir, "lib")
	if err != nil {
		t.Fatal(err)
	}
	if lib != "" {
		t.Errorf("findEntryPoint(lib) = %q, want none", lib)
	}

	write("main.cpp")
	if _, err := findEntryPoint(srcDir, "main"); err == nil {
		t.Fatal("two main sources accepted")
	} else if err.Error() != "multiple main sources were found" {
		t.Errorf("error = %q", err)
	}
}

func TestConfigureBuildRequiresEntryPoint(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "src", "helper.cc"), []byte("int x;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	config := testConfig(t, root)
	err := config.ConfigureBuild()
	if err == nil {
		t.Fatal("ConfigureBuild succeeded without main or lib")
	}
	if !strings.Contains(err.Error(), "src/(main|lib)") {
		t.Errorf("error = %q", err)
	}
}

func TestConfigureBuildMissingSrcDir(t *testing.T) {
	config := testConfig(t, t.TempDir())
	err := config.ConfigureBuild()
	if err == nil {
		t.Fatal("ConfigureBuild succeeded without src/")
	}
	if !strings.Contains(err.Error(), "required but not found") {
		t.Errorf("error = %q", err)
	}
}
