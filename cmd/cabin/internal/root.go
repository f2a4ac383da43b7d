// Package internal wires the cabin subcommands onto the cobra root.
package internal

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cabinpkg/cabin/internal/diag"
)

var (
	verbosity int
	quiet     bool
	colorWhen string
	listCmds  bool
)

var rootCmd = &cobra.Command{
	Use:   "cabin",
	Short: "A package manager and build system for C++",
	Long:  `cabin is a package manager and build system for C++ modeled on Cargo.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if env := os.Getenv("CABIN_TERM_COLOR"); env != "" &&
			!cmd.Flags().Changed("color") {
			colorWhen = env
		}
		mode, err := diag.ParseColorMode(colorWhen)
		if err != nil {
			return err
		}
		diag.Setup(diag.Config{
			Color:     mode,
			Verbosity: verbosity,
			Quiet:     quiet,
		})
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if listCmds {
			for _, sub := range cmd.Commands() {
				fmt.Println(sub.Name())
			}
			return nil
		}
		if showVersion {
			return printVersion()
		}
		return cmd.Help()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&verbosity, "verbose", "v", "Use verbose output (-vv very verbose)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Do not print cabin log messages")
	flags.StringVar(&colorWhen, "color", "auto", "Coloring: auto, always, never")
	rootCmd.Flags().BoolVar(&listCmds, "list", false, "List all subcommands")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "V", false, "Show version information")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.SuggestionsMinimumDistance = 2
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// Execute runs the CLI. Errors are reported by main as a single
// Error: line with its Caused by: chain.
func Execute() error {
	return rootCmd.Execute()
}
