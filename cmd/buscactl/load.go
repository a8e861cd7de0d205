package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kailas-cloud/buscadoc/internal/domain/record"
	"github.com/kailas-cloud/buscadoc/internal/ingest"
)

// loadRecords reads a JSON array of objects, or a CSV/XLSX sheet by extension.
func loadRecords(path string) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	if ingest.Extension(path) == "json" {
		var recs []record.Record
		if err := json.NewDecoder(f).Decode(&recs); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return recs, nil
	}
	recs, err := ingest.Read(path, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return recs, nil
}
