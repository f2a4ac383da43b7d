package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cabinpkg/cabin/internal/diag"
	"github.com/cabinpkg/cabin/internal/manifest"
)

var (
	initBin bool
	initLib bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new cabin package in an existing directory",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initBin, "bin", "b", false, "Create a binary (application) template (default)")
	initCmd.Flags().BoolVarP(&initLib, "lib", "l", false, "Create a library template")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(manifest.FileName); err == nil {
		return fmt.Errorf("cannot initialize an existing cabin package")
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	packageName := filepath.Base(cwd)
	if err := manifest.ValidatePackageName(packageName); err != nil {
		return err
	}

	if err := os.WriteFile(manifest.FileName, []byte(createCabinToml(packageName)), 0o644); err != nil {
		return err
	}

	kind := "binary (application)"
	if initLib {
		kind = "library"
	}
	diag.Info("Created", "%s `%s` package", kind, packageName)
	return nil
}
