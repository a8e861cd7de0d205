package mode

// Mode is the search strategy.
type Mode string

// Search mode constants.
const (
	// Simple matches a case-folded substring in any field and ranks by word relevance.
	Simple Mode = "simple"
	// Exact matches records with a field equal to the whole query. Results are not sorted.
	Exact Mode = "exact"
	// Field matches a substring in a single named field.
	Field Mode = "field"
	// Advanced evaluates a boolean expression over field:value atoms.
	Advanced Mode = "advanced"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Simple || m == Exact || m == Field || m == Advanced
}

// Sorted reports whether results of this mode are ranked by relevance.
func (m Mode) Sorted() bool {
	return m != Exact
}
