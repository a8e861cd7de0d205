// Command buscactl searches, summarizes and exports a dataset file without a server.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/buscadoc/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "buscactl",
		Short:        "Offline tools for buscadoc datasets",
		SilenceUsage: true,
	}
	root.AddCommand(
		newSearchCmd(),
		newStatsCmd(),
		newExportCmd(),
		newHashPasswordCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("buscactl version %s (%s, %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
