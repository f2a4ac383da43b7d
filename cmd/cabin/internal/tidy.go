package internal

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cabinpkg/cabin/internal/buildcfg"
	"github.com/cabinpkg/cabin/internal/command"
	"github.com/cabinpkg/cabin/internal/diag"
)

var (
	tidyFix  bool
	tidyJobs int
)

var tidyCmd = &cobra.Command{
	Use:   "tidy",
	Short: "Run clang-tidy",
	Args:  cobra.NoArgs,
	RunE:  runTidy,
}

func init() {
	tidyCmd.Flags().BoolVar(&tidyFix, "fix", false, "Automatically apply lint suggestions")
	tidyCmd.Flags().IntVarP(&tidyJobs, "jobs", "j", 0, "Number of parallel jobs (defaults to the hardware thread count)")
	rootCmd.AddCommand(tidyCmd)
}

func runTidy(cmd *cobra.Command, args []string) error {
	if !command.Exists("clang-tidy") {
		return fmt.Errorf("clang-tidy is required")
	}
	jobs := tidyJobs
	if tidyFix && jobs != 1 {
		diag.Warn("`--fix` implies `--jobs 1` to avoid race conditions")
		jobs = 1
	}

	proj, err := loadProject(true)
	if err != nil {
		return err
	}
	config, err := buildcfg.GenerateMakefile(proj, false, jobs)
	if err != nil {
		return err
	}

	tidyFlags := "CABIN_TIDY_FLAGS="
	if !diag.IsVerbose() {
		tidyFlags += "-quiet"
	}
	if _, err := os.Stat(".clang-tidy"); err == nil {
		// clang-tidy runs inside cabin-out/<profile>.
		tidyFlags += " --config-file=../../.clang-tidy"
	}
	if tidyFix {
		tidyFlags += " -fix"
	}

	makeCmd := buildcfg.MakeCommand(config.Jobs()).
		AddArg("-C").AddArg(proj.OutBasePath).
		AddArg(tidyFlags).
		AddArg("tidy")
	if tidyFix {
		// Keep going to apply fixes to as many files as possible.
		makeCmd.AddArg("--keep-going")
	}

	diag.Info("Running", "clang-tidy")
	start := time.Now()
	status, err := command.Exec(makeCmd)
	if err != nil {
		return err
	}
	if !status.Success() {
		return fmt.Errorf("clang-tidy %s", status)
	}
	diag.Info("Finished", "clang-tidy in %.2fs", time.Since(start).Seconds())
	return nil
}
