// Command toolboard serves the AI tools leaderboard and canonical
// comparison routing, and exposes the same operations on the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "toolboard",
		Short:         "Score AI tools per category and canonicalize comparison slugs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $TOOLBOARD_CONFIG)")

	root.AddCommand(serveCmd())
	root.AddCommand(snapshotCmd())
	root.AddCommand(resolveCmd())
	root.AddCommand(scoresCmd())
	root.AddCommand(smokeCmd())

	return root
}
