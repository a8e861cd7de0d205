package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/buscadoc/internal/domain/search/engine"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/mode"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/request"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/result"
)

type searchOptions struct {
	mode          string
	field         string
	caseSensitive bool
	limit         int
	asJSON        bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions
	cmd := &cobra.Command{
		Use:   "search <file> <query>",
		Short: "Search a dataset file",
		Long: `Runs a simple, exact, field or advanced search over a JSON, CSV or XLSX file.
Advanced queries combine field:value atoms with AND, OR and NOT.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], args[1], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", string(mode.Simple), "search mode: simple, exact, field, advanced")
	cmd.Flags().StringVarP(&opts.field, "field", "f", "", "field name for field mode")
	cmd.Flags().BoolVarP(&opts.caseSensitive, "case-sensitive", "c", false, "keep case when matching")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "maximum number of results to print (0 = all)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "output results as JSON")
	return cmd
}

func runSearch(cmd *cobra.Command, path, query string, opts searchOptions) error {
	if err := request.NewValidator(0, nil).Validate(query); err != nil {
		return err
	}
	req, err := request.New(query, mode.Mode(strings.ToLower(opts.mode)), opts.field, opts.caseSensitive)
	if err != nil {
		return err
	}
	recs, err := loadRecords(path)
	if err != nil {
		return err
	}

	results := engine.New().Run(req, recs)
	total := len(results)
	if opts.limit > 0 && len(results) > opts.limit {
		results = results[:opts.limit]
	}

	if opts.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(results)
	}
	printResults(cmd, results, total, len(recs))
	return nil
}

func printResults(cmd *cobra.Command, results []result.Result, total, scanned int) {
	if total == 0 {
		cmd.Printf("No results found (%d records scanned).\n", scanned)
		return
	}
	cmd.Printf("%d of %d records matched:\n\n", total, scanned)
	for i := range results {
		rec := results[i].Record()
		cmd.Printf("  [%d] relevance %.2f, matched %s\n", i+1, results[i].Relevance(),
			strings.Join(results[i].MatchFields(), ", "))
		for _, f := range rec.Strip().Fields() {
			cmd.Printf("      %s: %s\n", f.Name, f.Value)
		}
		cmd.Println()
	}
	if len(results) < total {
		cmd.Printf("... %d more\n", total-len(results))
	}
}
