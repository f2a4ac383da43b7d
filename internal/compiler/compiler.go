package compiler

import (
	"fmt"
	"os"
	"strings"

	"github.com/cabinpkg/cabin/internal/command"
)

// Compiler is the detected C++ compiler plus the options accumulated
// from profile, dependencies, and environment.
type Compiler struct {
	Cxx  string
	Opts CompilerOptions
}

// Detect finds the C++ compiler: $CXX wins, otherwise the default CXX
// from make's builtin database.
func Detect() (*Compiler, error) {
	if cxx := os.Getenv("CXX"); cxx != "" {
		return &Compiler{Cxx: cxx}, nil
	}

	cxx, err := cxxFromMake()
	if err != nil {
		return nil, fmt.Errorf("detect C++ compiler: %w", err)
	}
	return &Compiler{Cxx: cxx}, nil
}

// cxxFromMake probes `make --print-data-base` for its CXX default.
func cxxFromMake() (string, error) {
	cmd := command.New("make", "--print-data-base", "--question", "-f", "/dev/null")
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	// --question exits non-zero by design; only the database matters.
	for _, line := range strings.Split(out.Stdout, "\n") {
		if value, found := strings.CutPrefix(line, "CXX = "); found && value != "" {
			return value, nil
		}
	}
	return "", fmt.Errorf("could not find the CXX command; set the CXX environment variable")
}

// CompileArgs returns the argument list of the command that compiles
// sourceFile into objFile, matching the Makefile's compile recipe.
func (c *Compiler) CompileArgs(sourceFile, objFile string) []string {
	var args []string
	args = append(args, strings.Fields(c.Opts.RenderCxxflags())...)
	for _, m := range c.Opts.CFlags.Macros {
		args = append(args, m.String())
	}
	for _, d := range c.Opts.CFlags.IncludeDirs {
		args = append(args, d.String())
	}
	args = append(args, "-c", sourceFile, "-o", objFile)
	return args
}

// CompileCommandString renders the full compile invocation for the
// compilation database.
func (c *Compiler) CompileCommandString(sourceFile, objFile string, extra ...string) string {
	parts := append([]string{c.Cxx}, c.CompileArgs(sourceFile, objFile)...)
	parts = append(parts, extra...)
	return strings.Join(parts, " ")
}

// MMCmd builds the dependency-extraction (-MM) invocation for a
// source file.
func (c *Compiler) MMCmd(sourceFile string) *command.Command {
	cmd := command.New(c.Cxx)
	cmd.Args = append(cmd.Args, strings.Fields(c.Opts.RenderCxxflags())...)
	for _, m := range c.Opts.CFlags.Macros {
		cmd.AddArg(m.String())
	}
	for _, d := range c.Opts.CFlags.IncludeDirs {
		cmd.AddArg(d.String())
	}
	cmd.AddArg("-MM")
	cmd.AddArg(sourceFile)
	return cmd
}

// PreprocessCmd builds the preprocess-only (-E) invocation used by
// unit-test discovery.
func (c *Compiler) PreprocessCmd(sourceFile string) *command.Command {
	cmd := command.New(c.Cxx)
	cmd.Args = append(cmd.Args, strings.Fields(c.Opts.RenderCxxflags())...)
	for _, m := range c.Opts.CFlags.Macros {
		cmd.AddArg(m.String())
	}
	for _, d := range c.Opts.CFlags.IncludeDirs {
		cmd.AddArg(d.String())
	}
	cmd.AddArg("-E")
	cmd.AddArg(sourceFile)
	return cmd
}
