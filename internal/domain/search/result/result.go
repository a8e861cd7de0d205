package result

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/buscadoc/internal/domain/record"
)

// Reserved metadata field names attached to every result.
const (
	MatchFieldsKey = "_match_fields"
	RelevanceKey   = "_relevance"
)

// Result is a matched record annotated with the fields that matched and its relevance.
type Result struct {
	rec         record.Record
	matchFields []string
	relevance   float64
}

// New creates a search result. The record is copied.
func New(rec record.Record, matchFields []string, relevance float64) Result {
	var mf []string
	if matchFields != nil {
		mf = make([]string, len(matchFields))
		copy(mf, matchFields)
	}
	return Result{rec: rec.Clone(), matchFields: mf, relevance: relevance}
}

// Record returns the matched record without metadata.
func (r *Result) Record() record.Record { return r.rec }

// MatchFields returns the names of the fields that matched, in scan order.
func (r *Result) MatchFields() []string { return r.matchFields }

// Relevance returns the relevance score.
func (r *Result) Relevance() float64 { return r.relevance }

// MarshalJSON flattens the result into the record object plus the reserved metadata fields.
func (r Result) MarshalJSON() ([]byte, error) {
	mf := r.matchFields
	if mf == nil {
		mf = []string{}
	}
	mfJSON, err := json.Marshal(mf)
	if err != nil {
		return nil, fmt.Errorf("encode match fields: %w", err)
	}
	relJSON, err := json.Marshal(r.relevance)
	if err != nil {
		return nil, fmt.Errorf("encode relevance: %w", err)
	}
	return r.rec.Strip().AppendJSON([]record.RawMember{
		{Name: MatchFieldsKey, Value: mfJSON},
		{Name: RelevanceKey, Value: relJSON},
	})
}

// Records returns the plain records of a result list, in order.
func Records(results []Result) []record.Record {
	out := make([]record.Record, len(results))
	for i := range results {
		out[i] = results[i].rec
	}
	return out
}
