package internal

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/cabinpkg/cabin/internal/diag"
)

// Build information, injected with -ldflags "-X ..." at release time.
var (
	version         = "0.1.0"
	commitHash      = ""
	commitShortHash = ""
	commitDate      = ""
)

var showVersion bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// commitInfo renders the parenthesized "(<short-hash> <date>)" segment,
// degrading gracefully when either part is unknown.
func commitInfo() string {
	switch {
	case commitShortHash == "" && commitDate == "":
		return ""
	case commitShortHash == "":
		return fmt.Sprintf(" (%s)", commitDate)
	case commitDate == "":
		return fmt.Sprintf(" (%s)", commitShortHash)
	}
	return fmt.Sprintf(" (%s %s)", commitShortHash, commitDate)
}

func printVersion() error {
	fmt.Printf("cabin %s%s\n", version, commitInfo())
	if diag.IsVerbose() {
		fmt.Printf("release: %s\n", version)
		fmt.Printf("commit-hash: %s\n", commitHash)
		fmt.Printf("commit-date: %s\n", commitDate)
		fmt.Printf("compiler: %s\n", runtime.Version())
		fmt.Printf("host: %s-%s\n", runtime.GOOS, runtime.GOARCH)
	}
	return nil
}
