// Package relevance scores matched records. Scores are never negative.
package relevance

import (
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/buscadoc/internal/domain/record"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/query"
)

// Whole-record word bonuses.
const (
	WordEqualsField  = 20.0
	WordPrefix       = 10.0
	WordSuffix       = 5.0
	WordInside       = 2.0
	WordLengthFactor = 0.1
)

// Field-scoped scores.
const (
	FieldExact        = 100.0
	FieldPrefix       = 80.0
	FieldSuffix       = 60.0
	FieldInsideBase   = 40.0
	FieldInsideWeight = 20.0
)

// AtomMatch is added per matching field:value atom in advanced scoring.
const AtomMatch = 50.0

// ExactMatch is the fixed score of exact-mode results.
const ExactMatch = 100.0

// Record scores a record against a whitespace-tokenized query.
// For each non-reserved field and each query word contained in it: +20 when the
// word is the whole field; otherwise +10 when it is a prefix and +5 when it is a
// suffix (both can apply), or +2 when it is neither. Every matching pair also
// adds 0.1 per rune of the word. Contributions accumulate without a cap.
func Record(q string, rec record.Record, caseSensitive bool) float64 {
	if !caseSensitive {
		q = strings.ToLower(q)
	}
	words := strings.Fields(q)
	if len(words) == 0 {
		return 0
	}

	score := 0.0
	for _, f := range rec.Fields() {
		if record.IsReserved(f.Name) {
			continue
		}
		value := f.Value
		if !caseSensitive {
			value = strings.ToLower(value)
		}
		for _, word := range words {
			if !strings.Contains(value, word) {
				continue
			}
			score += wordBonus(word, value)
			score += float64(utf8.RuneCountInString(word)) * WordLengthFactor
		}
	}
	return score
}

func wordBonus(word, value string) float64 {
	if word == value {
		return WordEqualsField
	}
	bonus := 0.0
	if strings.HasPrefix(value, word) {
		bonus += WordPrefix
	}
	if strings.HasSuffix(value, word) {
		bonus += WordSuffix
	}
	if bonus == 0 {
		bonus = WordInside
	}
	return bonus
}

// Field scores one field value against the whole query, ignoring case.
// Exact 100, prefix 80, suffix 60, inner match 40 + 20 * (len-index)/len so that
// earlier matches score higher, 0 otherwise.
func Field(q, value string) float64 {
	q = strings.ToLower(q)
	value = strings.ToLower(value)

	switch {
	case q == value:
		return FieldExact
	case strings.HasPrefix(value, q):
		return FieldPrefix
	case strings.HasSuffix(value, q):
		return FieldSuffix
	}

	idx := strings.Index(value, q)
	if idx < 0 {
		return 0
	}
	length := utf8.RuneCountInString(value)
	position := utf8.RuneCountInString(value[:idx])
	positionScore := float64(length-position) / float64(length)
	return FieldInsideBase + positionScore*FieldInsideWeight
}

// Advanced adds 50 for every field:value atom in q (duplicates included) whose
// field exists on the record and contains the value, ignoring case.
func Advanced(q string, rec record.Record) float64 {
	score := 0.0
	for _, a := range query.Atoms(q) {
		if a.Matches(rec) {
			score += AtomMatch
		}
	}
	return score
}
