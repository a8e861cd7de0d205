// Package engine runs the four search modes over a caller-supplied record list.
//
// The engine is stateless: it never mutates its input and keeps nothing between
// calls, so one Engine may serve concurrent searches over shared read-only data.
package engine

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/buscadoc/internal/domain/record"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/mode"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/query"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/relevance"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/request"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/result"
)

// Engine ranks records against a query.
type Engine struct {
	logger     *zap.Logger
	onFallback func()
}

// New creates an engine with a no-op logger.
func New() *Engine {
	return &Engine{logger: zap.NewNop()}
}

// WithLogger sets the logger used to report advanced-search fallbacks.
func (e *Engine) WithLogger(logger *zap.Logger) *Engine {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// WithFallbackHook registers fn to be called each time an advanced query
// degrades to a simple search.
func (e *Engine) WithFallbackHook(fn func()) *Engine {
	e.onFallback = fn
	return e
}

// Run dispatches the request to its mode.
func (e *Engine) Run(req request.Request, data []record.Record) []result.Result {
	switch req.Mode() {
	case mode.Exact:
		return e.Exact(req.Query(), data, req.CaseSensitive())
	case mode.Field:
		return e.Field(req.Field(), req.Query(), data, req.CaseSensitive())
	case mode.Advanced:
		return e.Advanced(req.Query(), data)
	default:
		return e.Simple(req.Query(), data, req.CaseSensitive())
	}
}

// Simple returns records where the query occurs in any non-reserved field,
// every matching field listed, ranked by word relevance.
func (e *Engine) Simple(q string, data []record.Record, caseSensitive bool) []result.Result {
	if isBlank(q) {
		return nil
	}
	needle := fold(q, caseSensitive)

	var out []result.Result
	for _, rec := range data {
		var matched []string
		for _, f := range rec.Fields() {
			if record.IsReserved(f.Name) {
				continue
			}
			if strings.Contains(fold(f.Value, caseSensitive), needle) {
				matched = append(matched, f.Name)
			}
		}
		if len(matched) == 0 {
			continue
		}
		out = append(out, result.New(rec, matched, relevance.Record(q, rec, caseSensitive)))
	}
	sortByRelevance(out)
	return out
}

// Exact returns records having a non-reserved field equal to the query. The
// first equal field in record order is reported. Every result scores 100 and
// results keep collection order.
func (e *Engine) Exact(q string, data []record.Record, caseSensitive bool) []result.Result {
	if isBlank(q) {
		return nil
	}
	needle := fold(q, caseSensitive)

	var out []result.Result
	for _, rec := range data {
		for _, f := range rec.Fields() {
			if record.IsReserved(f.Name) {
				continue
			}
			if fold(f.Value, caseSensitive) == needle {
				out = append(out, result.New(rec, []string{f.Name}, relevance.ExactMatch))
				break
			}
		}
	}
	return out
}

// Field returns records whose named field contains the query, ranked by
// field-scoped relevance. Records lacking the field are skipped.
func (e *Engine) Field(field, q string, data []record.Record, caseSensitive bool) []result.Result {
	if isBlank(q) || field == "" || record.IsReserved(field) {
		return nil
	}
	needle := fold(q, caseSensitive)

	var out []result.Result
	for _, rec := range data {
		value, ok := rec.Get(field)
		if !ok {
			continue
		}
		if !strings.Contains(fold(value, caseSensitive), needle) {
			continue
		}
		out = append(out, result.New(rec, []string{field}, relevance.Field(q, value)))
	}
	sortByRelevance(out)
	return out
}

// Advanced evaluates a boolean field:value expression against each record.
// A query that does not parse, or names no atom, is run as a simple search instead.
func (e *Engine) Advanced(q string, data []record.Record) []result.Result {
	if isBlank(q) {
		return nil
	}
	normalized := query.Normalize(q)

	expr, err := query.Parse(normalized)
	if err == nil && len(expr.Atoms()) == 0 {
		err = errNoAtoms
	}
	if err != nil {
		e.logger.Warn("advanced query rejected, falling back to simple search",
			zap.String("query", q),
			zap.Error(err),
		)
		if e.onFallback != nil {
			e.onFallback()
		}
		return e.Simple(q, data, false)
	}

	atoms := expr.Atoms()
	var out []result.Result
	for _, rec := range data {
		if !expr.Match(rec) {
			continue
		}
		out = append(out, result.New(rec, matchedAtomFields(atoms, rec), relevance.Advanced(normalized, rec)))
	}
	sortByRelevance(out)
	return out
}

// matchedAtomFields lists the fields of atoms that hold on rec, each once, in atom order.
func matchedAtomFields(atoms []query.Atom, rec record.Record) []string {
	var fields []string
	for _, a := range atoms {
		if slices.Contains(fields, a.Field) || !a.Matches(rec) {
			continue
		}
		fields = append(fields, a.Field)
	}
	if fields == nil {
		fields = []string{}
	}
	return fields
}

func sortByRelevance(results []result.Result) {
	slices.SortStableFunc(results, func(a, b result.Result) int {
		ra, rb := a.Relevance(), b.Relevance()
		switch {
		case ra > rb:
			return -1
		case ra < rb:
			return 1
		default:
			return 0
		}
	})
}

func fold(s string, caseSensitive bool) string {
	if caseSensitive {
		return s
	}
	return strings.ToLower(s)
}

func isBlank(q string) bool {
	return strings.TrimSpace(q) == ""
}
