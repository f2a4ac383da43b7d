package buildcfg

import (
	"io"
	"sort"
	"strings"
)

const maxLineLen = 80

// emitDep writes one prerequisite, wrapping with a backslash
// continuation and two-space indent when the line would pass column 80.
func emitDep(sb *strings.Builder, offset *int, dep string) {
	if *offset+len(dep)+2 > maxLineLen { // 2 for the space and the backslash
		sb.WriteString(strings.Repeat(" ", max(0, maxLineLen-1-*offset)))
		sb.WriteString(" \\\n ")
		*offset = 2
	}
	sb.WriteByte(' ')
	sb.WriteString(dep)
	*offset += len(dep) + 1
}

// emitTarget writes one rule. Commands not starting with `@` get the
// $(Q) prefix so quiet mode can silence them.
func emitTarget(w io.Writer, name string, deps []string, sourceFile string, commands []string) error {
	var sb strings.Builder
	offset := 0

	sb.WriteString(name)
	sb.WriteByte(':')
	offset += len(name) + 2 // the colon and the following space

	if sourceFile != "" {
		emitDep(&sb, &offset, sourceFile)
	}
	for _, dep := range deps {
		emitDep(&sb, &offset, dep)
	}
	sb.WriteByte('\n')

	for _, cmd := range commands {
		sb.WriteByte('\t')
		if !strings.HasPrefix(cmd, "@") {
			sb.WriteString("$(Q)")
		}
		sb.WriteString(cmd)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())
	return err
}

// emitVariable writes one assignment, wrapping the value the same way
// prerequisites wrap.
func (c *BuildConfig) emitVariable(w io.Writer, name string) error {
	var sb strings.Builder
	v := c.variables[name]

	left := name + " " + v.Type.String()
	sb.WriteString(left)
	sb.WriteByte(' ')
	offset := len(left) + 1

	write := func(word string) {
		if offset+len(word)+2 > maxLineLen {
			sb.WriteString(strings.Repeat(" ", max(0, maxLineLen-1-offset)))
			sb.WriteString("\\\n  ")
			offset = 2
		}
		sb.WriteString(word)
	}

	words := strings.Split(v.Value, " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		if i+1 < len(words) {
			write(word + " ")
			offset += len(word) + 1
		} else {
			write(word)
		}
	}
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())
	return err
}

// EmitMakefile writes the whole Makefile: variables in forward
// topological order, then .PHONY and all, then targets in reverse
// topological order.
func (c *BuildConfig) EmitMakefile(w io.Writer) error {
	sortedVars, err := topoSort(c.variables, c.varDeps)
	if err != nil {
		return err
	}
	for _, name := range sortedVars {
		if err := c.emitVariable(w, name); err != nil {
			return err
		}
	}
	if len(sortedVars) > 0 && len(c.targets) > 0 {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}

	if c.phony != nil {
		if err := emitTarget(w, ".PHONY", sortedKeys(c.phony), "", nil); err != nil {
			return err
		}
	}
	if c.all != nil {
		if err := emitTarget(w, "all", sortedKeys(c.all), "", nil); err != nil {
			return err
		}
	}

	sortedTargets, err := topoSort(c.targets, c.targetDeps)
	if err != nil {
		return err
	}
	for i := len(sortedTargets) - 1; i >= 0; i-- {
		name := sortedTargets[i]
		t := c.targets[name]

		deps := sortedKeys(t.RemDeps)
		if err := emitTarget(w, name, deps, t.SourceFile, t.Commands); err != nil {
			return err
		}
	}
	return nil
}

// sortedTargetNames lists the defined targets lexically, for the
// compilation database walk.
func (c *BuildConfig) sortedTargetNames() []string {
	names := make([]string, 0, len(c.targets))
	for name := range c.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
