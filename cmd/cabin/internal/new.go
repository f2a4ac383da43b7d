package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cabinpkg/cabin/internal/diag"
	"github.com/cabinpkg/cabin/internal/gitutil"
	"github.com/cabinpkg/cabin/internal/manifest"
	"github.com/cabinpkg/cabin/internal/project"
)

var (
	newBin bool
	newLib bool
)

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a new cabin project",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNew,
}

func init() {
	newCmd.Flags().BoolVarP(&newBin, "bin", "b", false, "Create a binary (application) template (default)")
	newCmd.Flags().BoolVarP(&newLib, "lib", "l", false, "Create a library template")
	rootCmd.AddCommand(newCmd)
}

const mainCC = `#include <iostream>

int main() {
  std::cout << "Hello, world!" << std::endl;
  return 0;
}
`

// createCabinToml renders the manifest template, picking up the author
// from the user's git configuration.
func createCabinToml(projectName string) string {
	return fmt.Sprintf(`[package]
name = "%s"
version = "0.1.0"
authors = ["%s"]
edition = "20"
`, projectName, gitutil.DefaultAuthor())
}

// headerTemplate is the include-guard header a library template starts
// from.
func headerTemplate(projectName string) string {
	guard := project.ToMacroName(projectName) + "_HPP"
	return fmt.Sprintf(`#ifndef %s
#define %s

namespace %s {
}

#endif  // !%s
`, guard, guard, projectName, guard)
}

// createTemplateFiles writes the project skeleton rooted at dir.
func createTemplateFiles(isBin bool, dir, projectName string) error {
	write := func(path, text string) error {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing `%s` failed: %w", path, err)
		}
		return nil
	}

	if isBin {
		if err := write(filepath.Join(dir, "cabin.toml"), createCabinToml(projectName)); err != nil {
			return err
		}
		if err := write(filepath.Join(dir, ".gitignore"), "/cabin-out\n"); err != nil {
			return err
		}
		if err := write(filepath.Join(dir, "src", "main.cc"), mainCC); err != nil {
			return err
		}
		diag.Info("Created", "binary (application) `%s` package", projectName)
		return nil
	}

	if err := write(filepath.Join(dir, "cabin.toml"), createCabinToml(projectName)); err != nil {
		return err
	}
	if err := write(filepath.Join(dir, ".gitignore"), "/cabin-out\ncabin.lock\n"); err != nil {
		return err
	}
	header := filepath.Join(dir, "include", projectName, projectName+".hpp")
	if err := write(header, headerTemplate(projectName)); err != nil {
		return err
	}
	diag.Info("Created", "library `%s` package", projectName)
	return nil
}

func runNew(cmd *cobra.Command, args []string) error {
	packageName := ""
	if len(args) == 1 {
		packageName = args[0]
	}
	if err := manifest.ValidatePackageName(packageName); err != nil {
		return err
	}
	if _, err := os.Stat(packageName); err == nil {
		return fmt.Errorf("directory `%s` already exists", packageName)
	}

	if err := createTemplateFiles(!newLib, packageName, packageName); err != nil {
		return err
	}
	return gitutil.Init(packageName)
}
