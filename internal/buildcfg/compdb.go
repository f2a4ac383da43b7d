package buildcfg

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
)

// compdbRecord is one clangd-compatible compile-command entry.
type compdbRecord struct {
	Directory string `json:"directory"`
	File      string `json:"file"`
	Output    string `json:"output"`
	Command   string `json:"command"`
}

// EmitCompdb writes compile_commands.json: one record per non-phony
// compile target, with -DCABIN_TEST appended so tooling sees the test
// code too.
func (c *BuildConfig) EmitCompdb(w io.Writer) error {
	directory := c.Project.Manifest.ProjectRoot()

	var records []compdbRecord
	for _, name := range c.sortedTargetNames() {
		if c.phony[name] {
			continue
		}
		t := c.targets[name]

		isCompileTarget := false
		for _, cmd := range t.Commands {
			if !strings.HasPrefix(cmd, "$(CXX)") && !strings.HasPrefix(cmd, "@$(CXX)") {
				continue
			}
			if !strings.Contains(cmd, "-c") {
				// A link command.
				continue
			}
			isCompileTarget = true
		}
		if !isCompileTarget {
			continue
		}

		// Compile targets always carry their source as the first
		// prerequisite.
		sourceFile := relTo(t.SourceFile, directory)
		objFile := relTo(name, directory)
		records = append(records, compdbRecord{
			Directory: directory,
			File:      sourceFile,
			Output:    objFile,
			Command: c.Project.Compiler.CompileCommandString(
				sourceFile, objFile, "-DCABIN_TEST"),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

func relTo(path, base string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}
