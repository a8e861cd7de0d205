package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/buscadoc/internal/domain"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/mode"
)

// DefaultMaxQueryLength is the query length limit applied when none is configured.
const DefaultMaxQueryLength = 1000

// Request is a structurally valid search request.
type Request struct {
	query         string
	searchMode    mode.Mode
	field         string
	caseSensitive bool
}

// New validates and normalizes search parameters.
// Defaults: mode=simple. The query is trimmed; a blank query is allowed and yields no results.
// Field mode requires a field name.
func New(query string, m mode.Mode, field string, caseSensitive bool) (Request, error) {
	if m == "" {
		m = mode.Simple
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("%w: invalid search mode %q", domain.ErrInvalidQuery, m)
	}
	field = strings.TrimSpace(field)
	if m == mode.Field && field == "" {
		return Request{}, fmt.Errorf("%w: field is required for field search", domain.ErrInvalidQuery)
	}
	if m != mode.Field {
		field = ""
	}
	return Request{
		query:         strings.TrimSpace(query),
		searchMode:    m,
		field:         field,
		caseSensitive: caseSensitive,
	}, nil
}

// Query returns the trimmed search text.
func (r Request) Query() string { return r.query }

// Mode returns the search mode.
func (r Request) Mode() mode.Mode { return r.searchMode }

// Field returns the target field for field mode.
func (r Request) Field() string { return r.field }

// CaseSensitive reports whether matching keeps case.
func (r Request) CaseSensitive() bool { return r.caseSensitive }

// IsBlank reports whether there is nothing to search for.
func (r Request) IsBlank() bool { return r.query == "" }

// Validator applies boundary rules to user-supplied queries before they reach the engine.
type Validator struct {
	maxLength int
	forbidden []string
}

// NewValidator creates a Validator. maxLength <= 0 selects DefaultMaxQueryLength.
// Forbidden terms are matched case-insensitively as substrings.
func NewValidator(maxLength int, forbidden []string) Validator {
	if maxLength <= 0 {
		maxLength = DefaultMaxQueryLength
	}
	terms := make([]string, 0, len(forbidden))
	for _, f := range forbidden {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			terms = append(terms, f)
		}
	}
	return Validator{maxLength: maxLength, forbidden: terms}
}

// Validate checks the query length and forbidden terms.
func (v Validator) Validate(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query must not be empty", domain.ErrInvalidQuery)
	}
	if len([]rune(query)) > v.maxLength {
		return fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, v.maxLength)
	}
	lower := strings.ToLower(query)
	for _, term := range v.forbidden {
		if strings.Contains(lower, term) {
			return fmt.Errorf("%w: forbidden term %q", domain.ErrInvalidQuery, term)
		}
	}
	return nil
}
