package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cabinpkg/cabin/internal/diag"
	"github.com/cabinpkg/cabin/internal/manifest"
)

var cleanProfile string

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the built directory",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().StringVarP(&cleanProfile, "profile", "p", "", "Clean only the given profile (debug or release)")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	manifestPath, err := manifest.Find(".")
	if err != nil {
		return err
	}
	outDir := filepath.Join(filepath.Dir(manifestPath), "cabin-out")

	if cleanProfile != "" {
		if cleanProfile != "debug" && cleanProfile != "release" {
			return fmt.Errorf("invalid argument for --profile: %s", cleanProfile)
		}
		outDir = filepath.Join(outDir, cleanProfile)
	}

	if _, err := os.Stat(outDir); err == nil {
		canonical, err := filepath.EvalSymlinks(outDir)
		if err != nil {
			canonical = outDir
		}
		diag.Info("Removing", "%s", canonical)
		return os.RemoveAll(outDir)
	}
	return nil
}
