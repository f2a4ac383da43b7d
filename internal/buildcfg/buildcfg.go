// Package buildcfg constructs the build graph for a project, emits the
// Makefile and compilation database, and discovers unit tests.
package buildcfg

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/cabinpkg/cabin/internal/project"
)

var sourceFileExts = map[string]bool{
	".c": true, ".c++": true, ".cc": true, ".cpp": true, ".cxx": true,
}

var headerFileExts = map[string]bool{
	".h": true, ".h++": true, ".hh": true, ".hpp": true, ".hxx": true,
}

const (
	linkBinCommand    = "$(CXX) $(LDFLAGS) $^ $(LIBS) -o $@"
	archiveLibCommand = "ar rcs $@ $^"
)

// VarType is the Makefile assignment operator of a variable.
type VarType int

const (
	Recursive VarType = iota // =
	Simple                   // :=
	Cond                     // ?=
	Append                   // +=
	Shell                    // !=
)

func (t VarType) String() string {
	switch t {
	case Recursive:
		return "="
	case Simple:
		return ":="
	case Cond:
		return "?="
	case Append:
		return "+="
	case Shell:
		return "!="
	}
	return "?"
}

// Variable is one Makefile variable assignment.
type Variable struct {
	Value string
	Type  VarType
}

// Target is one Makefile rule. When SourceFile is set it is emitted as
// the first prerequisite.
type Target struct {
	Commands   []string
	SourceFile string
	RemDeps    map[string]bool
}

// BuildConfig accumulates the graph during configuration and is frozen
// once emitted.
type BuildConfig struct {
	Project *project.Project

	hasBinaryTarget  bool
	hasLibraryTarget bool

	variables  map[string]Variable
	varDeps    map[string][]string // dependency -> dependents
	targets    map[string]*Target
	targetDeps map[string][]string // dependency -> dependents
	phony      map[string]bool
	all        map[string]bool

	jobs int
	mu   sync.Mutex
}

// New returns an empty build configuration. jobs <= 0 selects the
// hardware thread count.
func New(proj *project.Project, jobs int) *BuildConfig {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	return &BuildConfig{
		Project:    proj,
		variables:  make(map[string]Variable),
		varDeps:    make(map[string][]string),
		targets:    make(map[string]*Target),
		targetDeps: make(map[string][]string),
		jobs:       jobs,
	}
}

func (c *BuildConfig) HasBinTarget() bool { return c.hasBinaryTarget }
func (c *BuildConfig) HasLibTarget() bool { return c.hasLibraryTarget }

// Jobs is the configured parallelism, used for the make -j flag too.
func (c *BuildConfig) Jobs() int { return c.jobs }

func (c *BuildConfig) defineVar(name string, v Variable, dependsOn ...string) {
	c.variables[name] = v
	for _, dep := range dependsOn {
		// Reverse edge: the dependency must be emitted first.
		c.varDeps[dep] = append(c.varDeps[dep], name)
	}
}

func (c *BuildConfig) defineSimpleVar(name, value string, dependsOn ...string) {
	c.defineVar(name, Variable{Value: value, Type: Simple}, dependsOn...)
}

func (c *BuildConfig) defineCondVar(name, value string, dependsOn ...string) {
	c.defineVar(name, Variable{Value: value, Type: Cond}, dependsOn...)
}

func (c *BuildConfig) defineTarget(name string, commands []string, remDeps map[string]bool, sourceFile string) {
	c.targets[name] = &Target{
		Commands:   commands,
		SourceFile: sourceFile,
		RemDeps:    remDeps,
	}
	if sourceFile != "" {
		c.targetDeps[sourceFile] = append(c.targetDeps[sourceFile], name)
	}
	for dep := range remDeps {
		c.targetDeps[dep] = append(c.targetDeps[dep], name)
	}
}

func (c *BuildConfig) addPhony(target string) {
	if c.phony == nil {
		c.phony = make(map[string]bool)
	}
	c.phony[target] = true
}

func (c *BuildConfig) setAll(dependsOn map[string]bool) {
	c.all = dependsOn
}

// topoSort orders the given node set so every node appears after the
// nodes it depends on. Ties break lexically, making the order
// deterministic. A cycle is the fatal "too complex build graph".
func topoSort[T any](list map[string]T, adj map[string][]string) ([]string, error) {
	inDegree := make(map[string]int, len(list))
	for name := range list {
		inDegree[name] = 0
	}
	for from, neighbors := range adj {
		if _, known := list[from]; !known {
			// Edges from nodes outside the set (plain files, unregistered
			// prerequisites) do not constrain the order.
			continue
		}
		for _, to := range neighbors {
			if _, known := list[to]; known {
				inDegree[to]++
			}
		}
	}

	var ready []string
	for name, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	res := make([]string, 0, len(list))
	for len(ready) > 0 {
		node := ready[0]
		ready = ready[1:]
		res = append(res, node)

		changed := false
		for _, to := range adj[node] {
			if _, known := list[to]; !known {
				continue
			}
			inDegree[to]--
			if inDegree[to] == 0 {
				ready = append(ready, to)
				changed = true
			}
		}
		if changed {
			sort.Strings(ready)
		}
	}

	if len(res) != len(list) {
		return nil, fmt.Errorf("too complex build graph")
	}
	return res, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
