package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cabinpkg/cabin/internal/command"
	"github.com/cabinpkg/cabin/internal/diag"
	"github.com/cabinpkg/cabin/internal/gitutil"
	"github.com/cabinpkg/cabin/internal/manifest"
)

var (
	fmtCheck    bool
	fmtExcludes []string
)

var fmtCmd = &cobra.Command{
	Use:   "fmt",
	Short: "Format codes using clang-format",
	Args:  cobra.NoArgs,
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "Run clang-format in check mode")
	fmtCmd.Flags().StringArrayVar(&fmtExcludes, "exclude", nil, "Exclude files from formatting")
	rootCmd.AddCommand(fmtCmd)
}

var cxxFileExts = map[string]bool{
	".c": true, ".c++": true, ".cc": true, ".cpp": true, ".cxx": true,
	".h": true, ".h++": true, ".hh": true, ".hpp": true, ".hxx": true,
}

// collectFormatTargets walks the project collecting C++ sources and
// headers, honoring .gitignore and the --exclude globs.
func collectFormatTargets(root string, excludes []string) ([]string, error) {
	ignore, err := gitutil.NewIgnoreMatcher(root)
	if err != nil {
		return nil, err
	}

	excluded := func(rel string) bool {
		for _, pattern := range excludes {
			if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
				return true
			}
			if pattern == rel {
				return true
			}
		}
		return false
	}

	var sources []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if ignore.Ignored(rel, true) || excluded(rel) {
				log.Debug().Msgf("Ignore: %s", rel)
				return filepath.SkipDir
			}
			return nil
		}
		if ignore.Ignored(rel, false) || excluded(rel) {
			log.Debug().Msgf("Ignore: %s", rel)
			return nil
		}
		if cxxFileExts[filepath.Ext(rel)] {
			sources = append(sources, rel)
		}
		return nil
	})
	return sources, err
}

func runFmt(cmd *cobra.Command, args []string) error {
	clangFormat := os.Getenv("CABIN_FMT")
	if clangFormat == "" {
		clangFormat = "clang-format"
	}
	if !command.Exists(clangFormat) {
		return fmt.Errorf("fmt command requires clang-format; try installing it by:\n  apt/brew install clang-format")
	}

	manifestPath, err := manifest.Find(".")
	if err != nil {
		return err
	}
	m, err := manifest.Parse(manifestPath, false)
	if err != nil {
		return err
	}
	root := m.ProjectRoot()

	sources, err := collectFormatTargets(root, fmtExcludes)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		diag.Warn("no files to format")
		return nil
	}

	clangFormatArgs := []string{"--style=file", "--fallback-style=LLVM", "-Werror"}
	if diag.IsVerbose() {
		clangFormatArgs = append(clangFormatArgs, "--verbose")
	}
	if fmtCheck {
		clangFormatArgs = append(clangFormatArgs, "--dry-run")
	} else {
		clangFormatArgs = append(clangFormatArgs, "-i")
		diag.Info("Formatting", "%s", m.Package.Name)
	}
	clangFormatArgs = append(clangFormatArgs, sources...)

	status, err := command.Exec(
		command.New(clangFormat, clangFormatArgs...).SetDir(root))
	if err != nil {
		return err
	}
	if !status.Success() {
		return fmt.Errorf("clang-format failed with exit code `%d`", status.ExitCode())
	}
	return nil
}
