// Wave-cfg reads and edits the parameters of a networked LED painter.
//
// Running without a command opens the terminal editor. The editor either
// writes every edit straight to the painter (live mode) or collects edits
// until they are saved (manual mode). The one-shot commands read, change
// and write a single field, which makes them usable from scripts.
//
// Usage:
//
//	wave-cfg [command] [flags]
//
// See 'wave-cfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/wave/internal/logging"
	"github.com/muurk/wave/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wave-cfg",
	Short: "Wave painter parameter editor",
	Long: `Read and edit the parameters of a networked LED painter.

The painter exposes its parameters (painter, brightness, speed, colors,
fade, bidirectional) as JSON at /api. wave-cfg reads that object, lets
you change it, and posts the whole object back.

If no command is specified, the interactive editor launches.`,
	Version:      version.Version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(cmd, args)
	},
}

func init() {
	// assigned here rather than in the literal to break the
	// rootCmd -> setup -> isEditor -> rootCmd initialization cycle
	rootCmd.PersistentPreRunE = setup
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("wave-cfg " + version.Full())
	},
}
