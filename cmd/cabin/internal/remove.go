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

var removeCmd = &cobra.Command{
	Use:   "remove <deps>...",
	Short: "Remove dependencies from cabin.toml",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
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
	if !hasDeps || len(deps) == 0 {
		return fmt.Errorf("No dependencies to remove")
	}

	var removed []string
	for _, dep := range args {
		if _, present := deps[dep]; present {
			delete(deps, dep)
			removed = append(removed, dep)
		} else {
			diag.Warn("Dependency `%s` not found in %s", dep, manifestPath)
		}
	}

	if len(removed) > 0 {
		out, err := toml.Marshal(doc)
		if err != nil {
			return err
		}
		if err := os.WriteFile(manifestPath, out, 0o644); err != nil {
			return err
		}
		diag.Info("Removed", "%s from %s", strings.Join(removed, ", "), manifestPath)
	}
	return nil
}
