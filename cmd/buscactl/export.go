package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/buscadoc/internal/domain/record"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/engine"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/mode"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/request"
	"github.com/kailas-cloud/buscadoc/internal/export"
	"github.com/kailas-cloud/buscadoc/internal/ingest"
)

type exportOptions struct {
	query         string
	mode          string
	field         string
	caseSensitive bool
	format        string
	out           string
}

func newExportCmd() *cobra.Command {
	var opts exportOptions
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export matching records as CSV, XLSX or JSON",
		Long: `Writes the records matching --query (all records when empty) to --out or stdout.
The format defaults to the extension of --out, then to CSV.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "search query")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", string(mode.Simple), "search mode: simple, exact, field, advanced")
	cmd.Flags().StringVarP(&opts.field, "field", "f", "", "field name for field mode")
	cmd.Flags().BoolVarP(&opts.caseSensitive, "case-sensitive", "c", false, "keep case when matching")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format: csv, xlsx, json")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func runExport(cmd *cobra.Command, path string, opts exportOptions) error {
	formatName := opts.format
	if formatName == "" && opts.out != "" {
		formatName = ingest.Extension(opts.out)
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	recs, err := loadRecords(path)
	if err != nil {
		return err
	}
	matched, err := matching(recs, opts)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create %s: %w", opts.out, err)
		}
		defer f.Close()
		w = f
	}
	if err := export.Write(w, format, matched); err != nil {
		return err
	}
	if opts.out != "" {
		cmd.PrintErrf("exported %d records to %s\n", len(matched), opts.out)
	}
	return nil
}

func matching(recs []record.Record, opts exportOptions) ([]record.Record, error) {
	if strings.TrimSpace(opts.query) == "" {
		return recs, nil
	}
	if err := request.NewValidator(0, nil).Validate(opts.query); err != nil {
		return nil, err
	}
	req, err := request.New(opts.query, mode.Mode(strings.ToLower(opts.mode)), opts.field, opts.caseSensitive)
	if err != nil {
		return nil, err
	}
	results := engine.New().Run(req, recs)
	out := make([]record.Record, len(results))
	for i := range results {
		out[i] = results[i].Record()
	}
	return out, nil
}
