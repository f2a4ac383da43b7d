package buildcfg

import (
	"strings"

	"github.com/cabinpkg/cabin/internal/command"
)

// runMM invokes the compiler's -MM mode for a source file, from the
// output directory so relative paths in the rule stay stable.
func (c *BuildConfig) runMM(sourceFile string, isTest bool) (string, error) {
	cmd := c.Project.Compiler.MMCmd(sourceFile)
	if isTest {
		cmd.AddArg("-DCABIN_TEST")
	}
	cmd.SetDir(c.Project.OutBasePath)
	return command.GetOutput(cmd)
}

// parseMMOutput splits a `obj.o: src hdr1 hdr2 \` Make rule into the
// object name and the header set. The first prerequisite (the source
// itself) is dropped.
func parseMMOutput(mmOutput string) (objTarget string, deps map[string]bool) {
	target, rest, found := strings.Cut(mmOutput, ":")
	if !found {
		return strings.TrimSpace(mmOutput), map[string]bool{}
	}

	deps = make(map[string]bool)
	first := true
	for _, field := range strings.Fields(rest) {
		if field == "\\" {
			continue
		}
		if first {
			// The source file itself; already known.
			first = false
			continue
		}
		deps[field] = true
	}
	return target, deps
}
