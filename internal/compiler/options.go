// Package compiler models compiler invocations: typed flag bundles and
// the detection of the C++ compiler itself.
package compiler

import (
	"strings"

	"github.com/cabinpkg/cabin/internal/command"
	"github.com/cabinpkg/cabin/internal/semver"
)

// Macro is a -D<name>[=<value>] definition.
type Macro struct {
	Name  string
	Value string
}

func (m Macro) String() string {
	if m.Value == "" {
		return "-D" + m.Name
	}
	return "-D" + m.Name + "=" + m.Value
}

// IncludeDir is a -I or -isystem include directory.
type IncludeDir struct {
	Dir      string
	IsSystem bool
}

func (d IncludeDir) String() string {
	if d.IsSystem {
		return "-isystem" + d.Dir
	}
	return "-I" + d.Dir
}

// LibDir is a -L library search directory.
type LibDir struct {
	Dir string
}

func (d LibDir) String() string { return "-L" + d.Dir }

// Lib is a -l library reference.
type Lib struct {
	Name string
}

func (l Lib) String() string { return "-l" + l.Name }

// CFlags groups compile-phase flags by kind, preserving order within
// each kind.
type CFlags struct {
	Macros      []Macro
	IncludeDirs []IncludeDir
	Others      []string
}

// Merge appends other's flags after the receiver's.
func (f *CFlags) Merge(other CFlags) {
	f.Macros = append(f.Macros, other.Macros...)
	f.IncludeDirs = append(f.IncludeDirs, other.IncludeDirs...)
	f.Others = append(f.Others, other.Others...)
}

// LdFlags groups link-phase flags by kind.
type LdFlags struct {
	LibDirs []LibDir
	Libs    []Lib
	Others  []string
}

func (f *LdFlags) Merge(other LdFlags) {
	f.LibDirs = append(f.LibDirs, other.LibDirs...)
	f.Libs = append(f.Libs, other.Libs...)
	f.Others = append(f.Others, other.Others...)
}

// CompilerOptions is the full flag set a dependency or profile
// contributes to a build.
type CompilerOptions struct {
	CFlags  CFlags
	LdFlags LdFlags
}

func (o *CompilerOptions) Merge(other CompilerOptions) {
	o.CFlags.Merge(other.CFlags)
	o.LdFlags.Merge(other.LdFlags)
}

// splitFlags breaks pkg-config output into whitespace-separated tokens
// after trimming the trailing newline.
func splitFlags(output string) []string {
	return strings.Fields(strings.TrimRight(output, "\n"))
}

// parseCFlagTokens classifies --cflags tokens into macros, include
// dirs, and the rest.
func parseCFlagTokens(tokens []string) CFlags {
	var flags CFlags
	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(tok, "-D"):
			macro := tok[2:]
			name, value, _ := strings.Cut(macro, "=")
			flags.Macros = append(flags.Macros, Macro{Name: name, Value: value})
		case strings.HasPrefix(tok, "-I"):
			flags.IncludeDirs = append(flags.IncludeDirs, IncludeDir{Dir: tok[2:]})
		default:
			flags.Others = append(flags.Others, tok)
		}
	}
	return flags
}

// parseLdFlagTokens classifies --libs tokens into lib dirs, libs, and
// the rest.
func parseLdFlagTokens(tokens []string) LdFlags {
	var flags LdFlags
	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(tok, "-L"):
			flags.LibDirs = append(flags.LibDirs, LibDir{Dir: tok[2:]})
		case strings.HasPrefix(tok, "-l"):
			flags.Libs = append(flags.Libs, Lib{Name: tok[2:]})
		default:
			flags.Others = append(flags.Others, tok)
		}
	}
	return flags
}

// ParsePkgConfig queries pkg-config for a versioned package and parses
// the answers into typed options.
//
// The split is naive about quoting; pkg-config output with embedded
// quotes would need a shell-style tokenizer.
func ParsePkgConfig(req semver.VersionReq, pkgName string) (CompilerOptions, error) {
	spec := req.ToPkgConfigString(pkgName)

	cflagsOut, err := command.GetOutput(command.New("pkg-config", "--cflags", spec))
	if err != nil {
		return CompilerOptions{}, err
	}
	libsOut, err := command.GetOutput(command.New("pkg-config", "--libs", spec))
	if err != nil {
		return CompilerOptions{}, err
	}

	return CompilerOptions{
		CFlags:  parseCFlagTokens(splitFlags(cflagsOut)),
		LdFlags: parseLdFlagTokens(splitFlags(libsOut)),
	}, nil
}

func joinStringers[T interface{ String() string }](xs []T) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = x.String()
	}
	return strings.Join(parts, " ")
}

// RenderDefines renders the DEFINES Makefile variable value.
func (o *CompilerOptions) RenderDefines() string { return joinStringers(o.CFlags.Macros) }

// RenderIncludes renders the INCLUDES Makefile variable value.
func (o *CompilerOptions) RenderIncludes() string { return joinStringers(o.CFlags.IncludeDirs) }

// RenderCxxflags renders the CXXFLAGS Makefile variable value.
func (o *CompilerOptions) RenderCxxflags() string { return strings.Join(o.CFlags.Others, " ") }

// RenderLdflags renders the LDFLAGS Makefile variable value: other
// linker flags first, then the library search dirs.
func (o *CompilerOptions) RenderLdflags() string {
	others := strings.Join(o.LdFlags.Others, " ")
	dirs := joinStringers(o.LdFlags.LibDirs)
	switch {
	case others == "":
		return dirs
	case dirs == "":
		return others
	}
	return others + " " + dirs
}

// RenderLibs renders the LIBS Makefile variable value.
func (o *CompilerOptions) RenderLibs() string { return joinStringers(o.LdFlags.Libs) }
