package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/buscadoc/internal/domain/analytics"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file>",
		Short: "Print per-column statistics of a dataset file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := loadRecords(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(analytics.DatasetStats(recs))
		},
	}
}
