package internal

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cabinpkg/cabin/internal/command"
	"github.com/cabinpkg/cabin/internal/diag"
)

var (
	runRelease bool
	runJobs    int
)

var runCmd = &cobra.Command{
	Use:     "run [args...]",
	Aliases: []string{"r"},
	Short:   "Build and execute src/main.cc",
	RunE:    runRun,
}

func init() {
	runCmd.Flags().BoolVarP(&runRelease, "release", "r", false, "Build with the release profile")
	runCmd.Flags().IntVarP(&runJobs, "jobs", "j", 0, "Number of parallel jobs (defaults to the hardware thread count)")
	runCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	proj, err := loadProject(!runRelease)
	if err != nil {
		return err
	}
	if _, err := buildImpl(proj, runJobs); err != nil {
		return err
	}

	binPath := filepath.Join(proj.OutBasePath, proj.Manifest.Package.Name)
	relOut, err := filepath.Rel(proj.Manifest.ProjectRoot(), proj.OutBasePath)
	if err != nil {
		relOut = proj.OutBasePath
	}
	diag.Info("Running", "`%s/%s`", relOut, proj.Manifest.Package.Name)

	status, err := command.Exec(command.New(binPath, args...))
	if err != nil {
		return err
	}
	if !status.Success() {
		return fmt.Errorf("run failed with exit code `%d`", status.ExitCode())
	}
	return nil
}
