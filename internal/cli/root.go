// Package cli is the cobra command tree. Player commands share one
// bootstrap that wires config, state store, catalog client, pipeline and
// engine together; api commands run headless against the catalog only.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagUsername     string
	flagPassword     string
	flagQuitWhenDone bool
	flagDisableTUI   bool
	flagWeb          bool
	flagInterface    string
)

var rootCmd = &cobra.Command{
	Use:   "quartz",
	Short: "Quartz is a terminal player for the Qobuz streaming service.",
	Long: `Quartz streams lossless audio from Qobuz with gapless playback,
a terminal interface, MPRIS integration and an optional web remote.`,
	SilenceUsage: true,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagUsername, "username", "", "Qobuz account email, overrides the stored one")
	rootCmd.PersistentFlags().StringVar(&flagPassword, "password", "", "Qobuz account password, overrides the stored hash")
	rootCmd.PersistentFlags().BoolVar(&flagQuitWhenDone, "quit-when-done", false, "exit when the queue finishes instead of pausing")
	rootCmd.PersistentFlags().BoolVar(&flagDisableTUI, "disable-tui", false, "run without the terminal interface")
	rootCmd.PersistentFlags().BoolVar(&flagWeb, "web", false, "serve the web remote")
	rootCmd.PersistentFlags().StringVar(&flagInterface, "interface", "", "web remote binding (host:port)")
}
