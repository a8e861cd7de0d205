// Package analytics summarizes record sets and search history.
package analytics

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/buscadoc/internal/domain/history"
	"github.com/kailas-cloud/buscadoc/internal/domain/record"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/mode"
)

// Column data types.
const (
	TypeNumber = "number"
	TypeText   = "text"
	TypeEmpty  = "empty"
)

const (
	sampleSize = 3
	topQueries = 10
	recentSize = 10
)

// Dataset describes the shape of a record set.
type Dataset struct {
	TotalRecords int               `json:"total_records"`
	TotalColumns int               `json:"total_columns"`
	Columns      []string          `json:"columns"`
	DataTypes    map[string]string `json:"data_types"`
	NullCounts   map[string]int    `json:"null_counts"`
	UniqueCounts map[string]int    `json:"unique_counts"`
	SampleData   []record.Record   `json:"sample_data"`
}

// DatasetStats computes per-column statistics. Reserved fields are ignored.
// A value is null when the field is missing or empty; unique counts skip nulls.
func DatasetStats(records []record.Record) Dataset {
	columns := record.Columns(records)
	stats := Dataset{
		TotalRecords: len(records),
		TotalColumns: len(columns),
		Columns:      columns,
		DataTypes:    make(map[string]string, len(columns)),
		NullCounts:   make(map[string]int, len(columns)),
		UniqueCounts: make(map[string]int, len(columns)),
		SampleData:   make([]record.Record, 0, sampleSize),
	}

	for _, col := range columns {
		seen := make(map[string]struct{})
		numeric, present := true, false
		for _, rec := range records {
			v, ok := rec.Get(col)
			if !ok || strings.TrimSpace(v) == "" {
				stats.NullCounts[col]++
				continue
			}
			present = true
			seen[v] = struct{}{}
			if numeric && !isNumber(v) {
				numeric = false
			}
		}
		stats.UniqueCounts[col] = len(seen)
		switch {
		case !present:
			stats.DataTypes[col] = TypeEmpty
		case numeric:
			stats.DataTypes[col] = TypeNumber
		default:
			stats.DataTypes[col] = TypeText
		}
	}

	for i := 0; i < len(records) && i < sampleSize; i++ {
		stats.SampleData = append(stats.SampleData, records[i].Strip())
	}
	return stats
}

func isNumber(v string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return err == nil
}

// QueryCount is how often a query text was searched.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// Searches aggregates the search history.
type Searches struct {
	TotalSearches  int                   `json:"total_searches"`
	UniqueQueries  int                   `json:"unique_queries"`
	TopQueries     []QueryCount          `json:"most_common_queries"`
	SearchesByMode map[mode.Mode]int     `json:"searches_by_type"`
	RecentSearches []history.SearchEntry `json:"recent_searches"`
	SearchesByHour map[int]int           `json:"searches_by_hour"`
}

// SearchStats aggregates a search log, oldest entry first.
// Top queries are ordered by count, ties by first appearance.
func SearchStats(entries []history.SearchEntry) Searches {
	stats := Searches{
		TotalSearches:  len(entries),
		TopQueries:     []QueryCount{},
		SearchesByMode: make(map[mode.Mode]int),
		SearchesByHour: make(map[int]int),
	}

	counts := make(map[string]int)
	var order []string
	for _, e := range entries {
		if _, ok := counts[e.Query]; !ok {
			order = append(order, e.Query)
		}
		counts[e.Query]++

		m := e.Mode
		if m == "" {
			m = mode.Simple
		}
		stats.SearchesByMode[m]++
		if !e.Timestamp.IsZero() {
			stats.SearchesByHour[e.Timestamp.Hour()]++
		}
	}
	stats.UniqueQueries = len(order)

	slices.SortStableFunc(order, func(a, b string) int {
		return cmp.Compare(counts[b], counts[a])
	})
	for i := 0; i < len(order) && i < topQueries; i++ {
		stats.TopQueries = append(stats.TopQueries, QueryCount{Query: order[i], Count: counts[order[i]]})
	}

	start := max(0, len(entries)-recentSize)
	stats.RecentSearches = slices.Clone(entries[start:])
	if stats.RecentSearches == nil {
		stats.RecentSearches = []history.SearchEntry{}
	}
	return stats
}
