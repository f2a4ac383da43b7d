package internal

import (
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/cabinpkg/cabin/internal/diag"
	"github.com/cabinpkg/cabin/internal/manifest"
)

var (
	addSystem  bool
	addVersion string
	addTag     string
	addRev     string
	addBranch  string
)

var addCmd = &cobra.Command{
	Use:   "add <deps>...",
	Short: "Add dependencies to cabin.toml",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().BoolVar(&addSystem, "sys", false, "Use system dependency")
	addCmd.Flags().StringVar(&addVersion, "version", "", "Dependency version (only used with system dependencies)")
	addCmd.Flags().StringVar(&addTag, "tag", "", "Specify a git tag")
	addCmd.Flags().StringVar(&addRev, "rev", "", "Specify a git revision")
	addCmd.Flags().StringVar(&addBranch, "branch", "", "Specify a branch of the git repository")
	rootCmd.AddCommand(addCmd)
}

// dependencyGitURL expands a "user/repo" shorthand into a GitHub URL
// and passes full URLs through.
func dependencyGitURL(dep string) (string, error) {
	if !strings.Contains(dep, "://") {
		if !strings.Contains(dep, "/") {
			return "", fmt.Errorf("invalid dependency: %s", dep)
		}
		return "https://github.com/" + dep + ".git", nil
	}
	return dep, nil
}

// dependencyName is the repository name: the last path segment with
// any trailing .git removed.
func dependencyName(dep string) string {
	name := dep[strings.LastIndex(dep, "/")+1:]
	return strings.TrimSuffix(name, ".git")
}

func runAdd(cmd *cobra.Command, args []string) error {
	if addSystem && addVersion == "" {
		return fmt.Errorf("the `--version` option is required for system dependencies")
	}

	manifestPath, err := manifest.Find(".")
	if err != nil {
		return err
	}
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return err
	}

	deps, hasDeps := doc["dependencies"].(map[string]any)
	if !hasDeps {
		deps = map[string]any{}
		doc["dependencies"] = deps
	}

	seen := map[string]bool{}
	for _, dep := range args {
		if seen[dep] {
			diag.Warn("The dependency `%s` is already in the cabin.toml", dep)
			continue
		}
		seen[dep] = true

		if addSystem {
			deps[dep] = map[string]any{
				"version": addVersion,
				"system":  true,
			}
			continue
		}

		gitURL, err := dependencyGitURL(dep)
		if err != nil {
			return err
		}
		name := dependencyName(dep)
		if name == "" {
			return fmt.Errorf("git URL or dependency name must not be empty: %s", dep)
		}

		entry := map[string]any{"git": gitURL}
		// rev wins over tag wins over branch, matching install.
		switch {
		case addRev != "":
			entry["rev"] = addRev
		case addTag != "":
			entry["tag"] = addTag
		case addBranch != "":
			entry["branch"] = addBranch
		}
		deps[name] = entry
	}

	out, err := toml.Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(manifestPath, out, 0o644); err != nil {
		return err
	}

	diag.Info("Added", "to the cabin.toml")
	return nil
}
