package internal

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cabinpkg/cabin/internal/buildcfg"
	"github.com/cabinpkg/cabin/internal/command"
	"github.com/cabinpkg/cabin/internal/diag"
	"github.com/cabinpkg/cabin/internal/manifest"
	"github.com/cabinpkg/cabin/internal/project"
)

var (
	buildDebug   bool
	buildRelease bool
	buildCompdb  bool
	buildJobs    int
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Compile a local package and all of its dependencies",
	Args:    cobra.NoArgs,
	RunE:    runBuild,
}

func init() {
	buildCmd.Flags().BoolVarP(&buildDebug, "debug", "d", false, "Build with the dev profile (default)")
	buildCmd.Flags().BoolVarP(&buildRelease, "release", "r", false, "Build with the release profile")
	buildCmd.Flags().BoolVar(&buildCompdb, "compdb", false, "Generate compilation database instead of building")
	buildCmd.Flags().IntVarP(&buildJobs, "jobs", "j", 0, "Number of parallel jobs (defaults to the hardware thread count)")
	rootCmd.AddCommand(buildCmd)
}

// loadProject finds the manifest from the working directory and
// resolves the project against the selected profile.
func loadProject(isDebug bool) (*project.Project, error) {
	path, err := manifest.Find(".")
	if err != nil {
		return nil, err
	}
	m, err := manifest.Parse(path, false)
	if err != nil {
		return nil, err
	}
	return project.Init(m, project.FromDebugFlag(isDebug))
}

// runBuildCommand delegates one output target to make, asking
// --question first so the Compiling heading only appears when work is
// actually needed.
func runBuildCommand(proj *project.Project, config *buildcfg.BuildConfig, targetName string) (command.ExitStatus, error) {
	makeCmd := buildcfg.MakeCommand(config.Jobs()).
		AddArg("-C").AddArg(proj.OutBasePath).
		AddArg(filepath.Join(proj.OutBasePath, targetName))

	checkCmd := *makeCmd
	checkCmd.Args = append(append([]string{}, makeCmd.Args...), "--question")
	checkCmd.Stdout = command.IONull
	checkCmd.Stderr = command.IONull

	status, err := command.Exec(&checkCmd)
	if err != nil {
		return command.ExitStatus{}, err
	}
	if !status.Success() {
		diag.Info("Compiling", "%s v%s (%s)", targetName,
			proj.Manifest.Package.Version, proj.Manifest.ProjectRoot())
		return command.Exec(makeCmd)
	}
	return status, nil
}

// buildImpl generates the Makefile and builds every output target,
// then reports the elapsed time.
func buildImpl(proj *project.Project, jobs int) (*buildcfg.BuildConfig, error) {
	start := time.Now()

	config, err := buildcfg.GenerateMakefile(proj, false, jobs)
	if err != nil {
		return nil, err
	}

	status := command.SuccessStatus()
	if config.HasBinTarget() {
		status, err = runBuildCommand(proj, config, proj.Manifest.Package.Name)
		if err != nil {
			return nil, err
		}
	}
	if config.HasLibTarget() && status.Success() {
		status, err = runBuildCommand(proj, config, proj.LibName)
		if err != nil {
			return nil, err
		}
	}
	if !status.Success() {
		return nil, fmt.Errorf("build failed: make %s", status)
	}

	profile := proj.Manifest.Profiles[string(proj.Profile)]
	diag.Info("Finished", "`%s` profile [%s] target(s) in %.2fs",
		proj.Profile, profile, time.Since(start).Seconds())
	return config, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	proj, err := loadProject(!buildRelease)
	if err != nil {
		return err
	}

	if buildCompdb {
		outDir, err := buildcfg.GenerateCompdb(proj, false, buildJobs)
		if err != nil {
			return err
		}
		diag.Info("Generated", "%s/compile_commands.json", outDir)
		return nil
	}

	_, err = buildImpl(proj, buildJobs)
	return err
}
