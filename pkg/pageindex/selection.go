package pageindex

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Selection validation errors.
var (
	ErrEmptySelection = errors.New("page selection is empty")
	ErrPageOutOfRange = errors.New("page index out of range")
	ErrInvalidRange   = errors.New("invalid page range")
)

// Normalize validates a selection of zero-based indices against the document
// bounds and returns it deduplicated in ascending order. Results are always
// sorted so downstream processing is stable regardless of input order.
func Normalize(indices []int, pageCount int) ([]int, error) {
	if len(indices) == 0 {
		return nil, ErrEmptySelection
	}

	seen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= pageCount {
			return nil, fmt.Errorf("%w: index %d outside [0-%d)", ErrPageOutOfRange, idx, pageCount)
		}
		seen[idx] = true
	}

	result := make([]int, 0, len(seen))
	for idx := range seen {
		result = append(result, idx)
	}

	sort.Ints(result)

	return result, nil
}

// Descending returns a copy of the selection sorted in descending order,
// the order required for removal so earlier deletions do not shift the
// positions of later ones.
func Descending(indices []int) []int {
	result := slices.Clone(indices)
	sort.Sort(sort.Reverse(sort.IntSlice(result)))
	return result
}

// ExcludeRange filters out every index that falls inside the given range.
// The input slice is not modified.
func ExcludeRange(indices []int, r Range) []int {
	if r.Empty() {
		return slices.Clone(indices)
	}

	result := make([]int, 0, len(indices))
	for _, idx := range indices {
		if !r.Contains(idx) {
			result = append(result, idx)
		}
	}
	return result
}

// ParseRangeExpression parses a one-based page range expression into a sorted
// slice of page numbers. Supports formats: "1", "1-5", "1,3,5", "1-5,10",
// "-3" (start at 1), "5-" (end at maxPage). Results are deduplicated.
func ParseRangeExpression(expr string, maxPage int) ([]int, error) {
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidRange)
	}

	seen := make(map[int]bool)

	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "-") {
			start, end, err := parseSpan(part, maxPage)
			if err != nil {
				return nil, err
			}
			for i := start; i <= end; i++ {
				seen[i] = true
			}
		} else {
			page, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid page %q", ErrInvalidRange, part)
			}
			if page < 1 || page > maxPage {
				return nil, fmt.Errorf("%w: page %d outside [1-%d]", ErrPageOutOfRange, page, maxPage)
			}
			seen[page] = true
		}
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("%w: no valid pages", ErrInvalidRange)
	}

	pages := make([]int, 0, len(seen))
	for page := range seen {
		pages = append(pages, page)
	}

	sort.Ints(pages)

	return pages, nil
}

func parseSpan(part string, maxPage int) (int, int, error) {
	idx := strings.Index(part, "-")
	if idx == -1 {
		return 0, 0, fmt.Errorf("%w: invalid span %q", ErrInvalidRange, part)
	}

	startStr := strings.TrimSpace(part[:idx])
	endStr := strings.TrimSpace(part[idx+1:])

	var start, end int
	var err error

	if startStr == "" {
		start = 1
	} else {
		start, err = strconv.Atoi(startStr)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: invalid start %q", ErrInvalidRange, startStr)
		}
	}

	if endStr == "" {
		end = maxPage
	} else {
		end, err = strconv.Atoi(endStr)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: invalid end %q", ErrInvalidRange, endStr)
		}
	}

	if start < 1 {
		return 0, 0, fmt.Errorf("%w: start page must be >= 1", ErrInvalidRange)
	}
	if end > maxPage {
		return 0, 0, fmt.Errorf("%w: end page %d exceeds document pages (%d)", ErrPageOutOfRange, end, maxPage)
	}
	if start > end {
		return 0, 0, fmt.Errorf("%w: start > end in %q", ErrInvalidRange, part)
	}

	return start, end, nil
}
