package internal

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cabinpkg/cabin/internal/command"
	"github.com/cabinpkg/cabin/internal/diag"
	"github.com/cabinpkg/cabin/internal/manifest"
)

var lintExcludes []string

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Lint codes using cpplint",
	Args:  cobra.NoArgs,
	RunE:  runLint,
}

func init() {
	lintCmd.Flags().StringArrayVar(&lintExcludes, "exclude", nil, "Exclude files from linting")
	rootCmd.AddCommand(lintCmd)
}

// lint runs cpplint recursively over the project, excluding whatever
// .gitignore lists.
func lint(name string, cpplintArgs []string) error {
	diag.Info("Linting", "%s", name)

	cmd := command.New("cpplint", cpplintArgs...)
	if !diag.IsVerbose() {
		cmd.AddArg("--quiet")
	}

	if f, err := os.Open(".gitignore"); err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			cmd.AddArg("--exclude=" + line)
		}
		f.Close()
	}
	// --recursive must come after the --exclude options.
	cmd.AddArg("--recursive")
	cmd.AddArg(".")

	status, err := command.Exec(cmd)
	if err != nil {
		return err
	}
	if !status.Success() {
		return fmt.Errorf("cpplint %s", status)
	}
	return nil
}

func runLint(cmd *cobra.Command, args []string) error {
	if !command.Exists("cpplint") {
		return fmt.Errorf("lint command requires cpplint; try installing it by:\n  pip install cpplint")
	}

	manifestPath, err := manifest.Find(".")
	if err != nil {
		return err
	}
	m, err := manifest.Parse(manifestPath, false)
	if err != nil {
		return err
	}

	cpplintArgs := make([]string, 0, len(lintExcludes)+2)
	for _, exclude := range lintExcludes {
		cpplintArgs = append(cpplintArgs, "--exclude="+exclude)
	}

	if _, err := os.Stat("CPPLINT.cfg"); err == nil {
		log.Debug().Msg("Using CPPLINT.cfg for lint ...")
		return lint(m.Package.Name, cpplintArgs)
	}

	if _, err := os.Stat("include"); err == nil {
		cpplintArgs = append(cpplintArgs, "--root=include")
	} else if _, err := os.Stat("src"); err == nil {
		cpplintArgs = append(cpplintArgs, "--root=src")
	}

	if filters := m.Lint.Cpplint.Filters; len(filters) > 0 {
		log.Debug().Msg("Using cabin manifest file for lint ...")
		cpplintArgs = append(cpplintArgs, "--filter="+strings.Join(filters, ","))
		return lint(m.Package.Name, cpplintArgs)
	}

	log.Debug().Msg("Using default arguments for lint ...")
	if m.Package.Edition.Year > 2011 {
		// The C++11-era checks don't apply to newer editions.
		cpplintArgs = append(cpplintArgs, "--filter=-build/c++11")
	}
	return lint(m.Package.Name, cpplintArgs)
}
