// Package pageindex provides the shared convention for addressing document
// pages: zero-based positions internally, one-based page numbers at
// user-facing boundaries. The conversion happens exactly once, here.
package pageindex

// ToPageNumber converts a zero-based position to a one-based page number.
func ToPageNumber(index int) int {
	return index + 1
}

// FromPageNumber converts a one-based page number to a zero-based position.
func FromPageNumber(page int) int {
	return page - 1
}

// FromPageNumbers converts a slice of one-based page numbers to zero-based
// positions. The input slice is not modified.
func FromPageNumbers(pages []int) []int {
	indices := make([]int, len(pages))
	for i, page := range pages {
		indices[i] = FromPageNumber(page)
	}
	return indices
}

// Range is a half-open interval [Start, End) of zero-based positions.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Empty reports whether the range covers no positions.
func (r Range) Empty() bool {
	return r.End <= r.Start
}

// Len returns the number of positions covered by the range.
func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return r.End - r.Start
}

// Contains reports whether the zero-based position falls inside the range.
func (r Range) Contains(index int) bool {
	return index >= r.Start && index < r.End
}
