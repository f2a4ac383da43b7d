package buildcfg

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/cabinpkg/cabin/internal/command"
	"github.com/cabinpkg/cabin/internal/diag"
)

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// listSourceFiles returns every source file under dir, sorted.
func listSourceFiles(dir string) ([]string, error) {
	var sources []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && sourceFileExts[filepath.Ext(path)] {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(sources)
	return sources, nil
}

// findEntryPoint looks for exactly one source directly in src/ with
// the given stem.
func findEntryPoint(srcDir, stemName string) (string, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return "", err
	}
	var found string
	for _, entry := range entries {
		if entry.IsDir() || !sourceFileExts[filepath.Ext(entry.Name())] {
			continue
		}
		if stem(entry.Name()) != stemName {
			continue
		}
		if found != "" {
			return "", fmt.Errorf("multiple %s sources were found", stemName)
		}
		found = filepath.Join(srcDir, entry.Name())
	}
	return found, nil
}

func (c *BuildConfig) srcDir() string {
	return filepath.Join(c.Project.Manifest.ProjectRoot(), "src")
}

// setVariables defines the standard Makefile variables from the
// resolved compiler options.
func (c *BuildConfig) setVariables() {
	opts := &c.Project.Compiler.Opts
	c.defineSimpleVar("CXX", c.Project.Compiler.Cxx)
	c.defineSimpleVar("CXXFLAGS", opts.RenderCxxflags())
	c.defineSimpleVar("DEFINES", opts.RenderDefines())
	c.defineSimpleVar("INCLUDES", opts.RenderIncludes())
	c.defineSimpleVar("LDFLAGS", opts.RenderLdflags())
	c.defineSimpleVar("LIBS", opts.RenderLibs())
}

// defineCompileTarget registers an object rule. Test objects get
// -DCABIN_TEST appended to the compile command.
func (c *BuildConfig) defineCompileTarget(objTarget, sourceFile string, remDeps map[string]bool, isTest bool) {
	compile := "$(CXX) $(CXXFLAGS) $(DEFINES) $(INCLUDES)"
	if isTest {
		compile += " -DCABIN_TEST"
	}
	compile += " -c $< -o $@"
	commands := []string{"@mkdir -p $(@D)", compile}
	c.defineTarget(objTarget, commands, remDeps, sourceFile)
}

// mapHeaderToObj maps src/path/to/foo.hpp to
// <buildOutPath>/path/to/foo.o.
func (c *BuildConfig) mapHeaderToObj(headerPath string) string {
	rel, err := filepath.Rel(c.srcDir(), filepath.Dir(headerPath))
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = "."
	}
	objBaseDir := c.Project.BuildOutPath
	if rel != "." {
		objBaseDir = filepath.Join(objBaseDir, rel)
	}
	return filepath.Join(objBaseDir, stem(headerPath)+".o")
}

// collectBinDepObjs recursively collects the objects a binary needs:
// every header with a paired known object pulls that object in, then
// its headers are chased in turn. The already-added check breaks
// cycles.
func (c *BuildConfig) collectBinDepObjs(deps map[string]bool, sourceStem string, objTargetDeps, buildObjTargets map[string]bool) {
	for header := range objTargetDeps {
		if stem(header) == sourceStem {
			// A test binary must not link the production object of its
			// own source.
			continue
		}
		if !headerFileExts[filepath.Ext(header)] {
			continue
		}

		objTarget := c.mapHeaderToObj(header)
		if deps[objTarget] {
			continue
		}
		if !buildObjTargets[objTarget] {
			// Headers without a paired object contribute nothing to the
			// link.
			continue
		}

		deps[objTarget] = true
		c.collectBinDepObjs(deps, sourceStem, c.targets[objTarget].RemDeps, buildObjTargets)
	}
}

// defineOutputTarget registers the final binary or archive rule with
// the transitively expanded object set.
func (c *BuildConfig) defineOutputTarget(buildObjTargets map[string]bool, targetInputPath string, commands []string, targetOutputPath string) {
	projTargetDeps := map[string]bool{targetInputPath: true}
	c.collectBinDepObjs(projTargetDeps, "", c.targets[targetInputPath].RemDeps, buildObjTargets)
	c.defineTarget(targetOutputPath, commands, projTargetDeps, "")
}

// processSrc extracts one source's header dependencies and registers
// its compile target. The mutex covers the shared map insertions.
func (c *BuildConfig) processSrc(sourceFile string, buildObjTargets map[string]bool) error {
	mmOutput, err := c.runMM(sourceFile, false)
	if err != nil {
		return err
	}
	objTarget, objTargetDeps := parseMMOutput(mmOutput)

	rel, err := filepath.Rel(c.srcDir(), filepath.Dir(sourceFile))
	if err != nil {
		return err
	}
	buildTargetBaseDir := c.Project.BuildOutPath
	if rel != "." {
		buildTargetBaseDir = filepath.Join(buildTargetBaseDir, rel)
	}
	buildObjTarget := filepath.Join(buildTargetBaseDir, objTarget)

	c.mu.Lock()
	defer c.mu.Unlock()
	buildObjTargets[buildObjTarget] = true
	c.defineCompileTarget(buildObjTarget, sourceFile, objTargetDeps, false)
	return nil
}

// forEachSource runs fn over the sources, fanning out across c.jobs
// workers. Errors are collected and joined.
func (c *BuildConfig) forEachSource(sources []string, fn func(string) error) error {
	if c.jobs <= 1 || len(sources) <= 1 {
		for _, src := range sources {
			if err := fn(src); err != nil {
				return err
			}
		}
		return nil
	}

	work := make(chan string)
	errs := make([]string, 0)
	var errMu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < c.jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range work {
				if err := fn(src); err != nil {
					errMu.Lock()
					errs = append(errs, err.Error())
					errMu.Unlock()
				}
			}
		}()
	}
	for _, src := range sources {
		work <- src
	}
	close(work)
	wg.Wait()

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("%s", strings.Join(errs, "\n"))
	}
	return nil
}

// containsTestCode checks a source for a semantically meaningful
// CABIN_TEST: a literal scan first, then preprocessing with and
// without the macro and comparing the outputs.
func (c *BuildConfig) containsTestCode(sourceFile string) (bool, error) {
	data, err := os.ReadFile(sourceFile)
	if err != nil {
		return false, err
	}
	if !strings.Contains(string(data), "CABIN_TEST") {
		return false, nil
	}

	plainCmd := c.Project.Compiler.PreprocessCmd(sourceFile)
	plain, err := command.GetOutput(plainCmd)
	if err != nil {
		return false, err
	}
	testCmd := c.Project.Compiler.PreprocessCmd(sourceFile)
	testCmd.AddArg("-DCABIN_TEST")
	test, err := command.GetOutput(testCmd)
	if err != nil {
		return false, err
	}

	containsTest := plain != test
	if containsTest {
		log.Trace().Msgf("Found test code: %s", sourceFile)
	}
	return containsTest, nil
}

// processUnittestSrc registers the test object and test binary targets
// for a source confirmed to contain test code.
func (c *BuildConfig) processUnittestSrc(sourceFile string, buildObjTargets, testTargets map[string]bool) error {
	hasTest, err := c.containsTestCode(sourceFile)
	if err != nil {
		return err
	}
	if !hasTest {
		return nil
	}

	mmOutput, err := c.runMM(sourceFile, true)
	if err != nil {
		return err
	}
	objTarget, objTargetDeps := parseMMOutput(mmOutput)

	rel, err := filepath.Rel(c.srcDir(), filepath.Dir(sourceFile))
	if err != nil {
		return err
	}
	testTargetBaseDir := c.Project.UnittestOutPath
	if rel != "." {
		testTargetBaseDir = filepath.Join(testTargetBaseDir, rel)
	}

	testObjTarget := filepath.Join(testTargetBaseDir, objTarget)
	testTarget := filepath.Join(testTargetBaseDir, filepath.Base(sourceFile)) + ".test"

	testTargetDeps := map[string]bool{testObjTarget: true}
	c.collectBinDepObjsLocked(testTargetDeps, stem(sourceFile), objTargetDeps, buildObjTargets)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.defineCompileTarget(testObjTarget, sourceFile, objTargetDeps, true)
	c.defineTarget(testTarget, []string{linkBinCommand}, testTargetDeps, "")
	testTargets[testTarget] = true
	return nil
}

// collectBinDepObjsLocked guards the read of the shared target map
// during the parallel unit-test pass.
func (c *BuildConfig) collectBinDepObjsLocked(deps map[string]bool, sourceStem string, objTargetDeps, buildObjTargets map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collectBinDepObjs(deps, sourceStem, objTargetDeps, buildObjTargets)
}

// detectTargets discovers just the entry points, setting the
// binary/library flags. Used when the Makefile is fresh and only make
// needs to run.
func (c *BuildConfig) detectTargets() error {
	srcDir := c.srcDir()
	if _, err := os.Stat(srcDir); err != nil {
		return fmt.Errorf("%s is required but not found", srcDir)
	}

	mainSource, err := findEntryPoint(srcDir, "main")
	if err != nil {
		return err
	}
	c.hasBinaryTarget = mainSource != ""

	libSource, err := findEntryPoint(srcDir, "lib")
	if err != nil {
		return err
	}
	c.hasLibraryTarget = libSource != ""

	if !c.hasBinaryTarget && !c.hasLibraryTarget {
		return fmt.Errorf("src/(main|lib).(c|c++|cc|cpp|cxx) was not found")
	}
	return nil
}

// ConfigureBuild discovers the entry points and sources and assembles
// the whole graph: compile targets, output targets, unit tests, and
// the tidy rules.
func (c *BuildConfig) ConfigureBuild() error {
	if err := c.detectTargets(); err != nil {
		return err
	}
	srcDir := c.srcDir()
	mainSource, err := findEntryPoint(srcDir, "main")
	if err != nil {
		return err
	}
	libSource, err := findEntryPoint(srcDir, "lib")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.Project.OutBasePath, 0o755); err != nil {
		return err
	}

	c.setVariables()

	all := make(map[string]bool)
	if c.hasBinaryTarget {
		all[c.Project.Manifest.Package.Name] = true
	}
	if c.hasLibraryTarget {
		all[c.Project.LibName] = true
	}
	c.setAll(all)
	c.addPhony("all")

	sources, err := listSourceFiles(srcDir)
	if err != nil {
		return err
	}
	var srcs strings.Builder
	for _, src := range sources {
		if src != mainSource && stem(src) == "main" {
			diag.Warn("source file `%s` is named `main` but is not located directly in the `src/` directory. "+
				"This file will not be treated as the program's entry point. "+
				"Move it directly to 'src/' if intended as such.", src)
		} else if src != libSource && stem(src) == "lib" {
			diag.Warn("source file `%s` is named `lib` but is not located directly in the `src/` directory. "+
				"This file will not be treated as a library target. "+
				"Move it directly to 'src/' if intended as such.", src)
		}
		srcs.WriteByte(' ')
		srcs.WriteString(src)
	}
	c.defineSimpleVar("SRCS", strings.TrimPrefix(srcs.String(), " "))

	// Source pass.
	buildObjTargets := make(map[string]bool)
	if err := c.forEachSource(sources, func(src string) error {
		return c.processSrc(src, buildObjTargets)
	}); err != nil {
		return err
	}

	if c.hasBinaryTarget {
		c.defineOutputTarget(buildObjTargets,
			filepath.Join(c.Project.BuildOutPath, "main.o"),
			[]string{linkBinCommand},
			filepath.Join(c.Project.OutBasePath, c.Project.Manifest.Package.Name))
	}
	if c.hasLibraryTarget {
		c.defineOutputTarget(buildObjTargets,
			filepath.Join(c.Project.BuildOutPath, "lib.o"),
			[]string{archiveLibCommand},
			filepath.Join(c.Project.OutBasePath, c.Project.LibName))
	}

	// Test pass.
	testTargets := make(map[string]bool)
	if err := c.forEachSource(sources, func(src string) error {
		return c.processUnittestSrc(src, buildObjTargets, testTargets)
	}); err != nil {
		return err
	}

	// Tidy pass.
	c.defineCondVar("CABIN_TIDY", "clang-tidy")
	c.defineSimpleVar("TIDY_TARGETS", "$(patsubst %,tidy_%,$(SRCS))", "SRCS")
	c.defineTarget("tidy", nil, map[string]bool{"$(TIDY_TARGETS)": true}, "")
	c.defineTarget("$(TIDY_TARGETS)",
		[]string{"$(CABIN_TIDY) $(CABIN_TIDY_FLAGS) $< -- $(CXXFLAGS) $(DEFINES) -DCABIN_TEST $(INCLUDES)"},
		map[string]bool{"tidy_%: %": true}, "")
	c.addPhony("tidy")
	c.addPhony("$(TIDY_TARGETS)")
	return nil
}
