package internal

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cabinpkg/cabin/internal/buildcfg"
	"github.com/cabinpkg/cabin/internal/command"
	"github.com/cabinpkg/cabin/internal/diag"
	"github.com/cabinpkg/cabin/internal/project"
)

var (
	testDebug   bool
	testRelease bool
	testJobs    int
)

var testCmd = &cobra.Command{
	Use:     "test",
	Aliases: []string{"t"},
	Short:   "Run the tests of a local package",
	Args:    cobra.NoArgs,
	RunE:    runTest,
}

func init() {
	testCmd.Flags().BoolVarP(&testDebug, "debug", "d", false, "Test with the dev profile (default)")
	testCmd.Flags().BoolVarP(&testRelease, "release", "r", false, "Test with the release profile")
	testCmd.Flags().IntVarP(&testJobs, "jobs", "j", 0, "Number of parallel jobs (defaults to the hardware thread count)")
	rootCmd.AddCommand(testCmd)
}

// collectTestTargets scrapes the generated Makefile for
// unittests/**.test rules.
func collectTestTargets(config *buildcfg.BuildConfig) ([]string, error) {
	prefix := config.Project.UnittestOutPath + "/"

	f, err := os.Open(filepath.Join(config.Project.OutBasePath, "Makefile"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var targets []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		name, _, found := strings.Cut(line, ":")
		if !found || !strings.HasSuffix(name, ".test") {
			continue
		}
		targets = append(targets, name)
	}
	return targets, scanner.Err()
}

// compileTestTargets builds every out-of-date test binary, printing
// the Compiling heading at most once.
func compileTestTargets(proj *project.Project, config *buildcfg.BuildConfig, targets []string) error {
	start := time.Now()

	baseMakeCmd := buildcfg.MakeCommand(config.Jobs()).
		AddArg("-C").AddArg(proj.OutBasePath)

	status := command.SuccessStatus()
	alreadyEmitted := false
	for _, target := range targets {
		checkCmd := *baseMakeCmd
		checkCmd.Args = append(append([]string{}, baseMakeCmd.Args...), "--question", target)
		checkCmd.Stdout = command.IONull
		checkCmd.Stderr = command.IONull
		upToDate, err := command.Exec(&checkCmd)
		if err != nil {
			return err
		}
		if upToDate.Success() {
			continue
		}

		if !alreadyEmitted {
			diag.Info("Compiling", "%s v%s (%s)", proj.Manifest.Package.Name,
				proj.Manifest.Package.Version, proj.Manifest.ProjectRoot())
			alreadyEmitted = true
		}

		makeCmd := *baseMakeCmd
		makeCmd.Args = append(append([]string{}, baseMakeCmd.Args...), target)
		cur, err := command.Exec(&makeCmd)
		if err != nil {
			return err
		}
		if !cur.Success() {
			status = cur
		}
	}
	if !status.Success() {
		return fmt.Errorf("compilation failed")
	}

	profile := proj.Manifest.Profiles[string(proj.Profile)]
	diag.Info("Finished", "`%s` profile [%s] target(s) in %.2fs",
		proj.Profile, profile, time.Since(start).Seconds())
	return nil
}

// runTestTargets executes the test binaries and reports the summary.
func runTestTargets(proj *project.Project, config *buildcfg.BuildConfig, targets []string) error {
	start := time.Now()
	prefix := config.Project.UnittestOutPath + "/"

	numPassed, numFailed := 0, 0
	for _, target := range targets {
		// unittests/<path>.test maps back to src/<path>.
		sourcePath := "src/" + strings.TrimSuffix(strings.TrimPrefix(target, prefix), ".test")
		binPath, err := filepath.Rel(proj.Manifest.ProjectRoot(), target)
		if err != nil {
			binPath = target
		}
		diag.Info("Running", "unittests %s (%s)", sourcePath, binPath)

		status, err := command.Exec(command.New(target))
		if err != nil {
			return err
		}
		if status.Success() {
			numPassed++
		} else {
			numFailed++
		}
	}

	summary := fmt.Sprintf("%d passed; %d failed; finished in %.2fs",
		numPassed, numFailed, time.Since(start).Seconds())
	if numFailed > 0 {
		return fmt.Errorf("%s", summary)
	}
	diag.Info("Ok", "%s", summary)
	return nil
}

func runTest(cmd *cobra.Command, args []string) error {
	if testRelease {
		diag.Warn("Tests in release mode possibly disables assert macros.")
	}
	proj, err := loadProject(!testRelease)
	if err != nil {
		return err
	}

	config, err := buildcfg.GenerateMakefile(proj, true, testJobs)
	if err != nil {
		return err
	}

	targets, err := collectTestTargets(config)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		diag.Warn("No test targets found")
		return nil
	}

	if err := compileTestTargets(proj, config, targets); err != nil {
		return err
	}
	return runTestTargets(proj, config, targets)
}
