package pages_test

import (
	"testing"
	"time"

	"github.com/lh/pagedeck/internal/pages"
)

func pageNumbers(states []pages.ProcessingState) []int {
	numbers := make([]int, len(states))
	for i, s := range states {
		numbers[i] = s.PageNumber
	}
	return numbers
}

func assertContiguous(t *testing.T, states []pages.ProcessingState) {
	t.Helper()
	for i, s := range states {
		if s.PageNumber != i+1 {
			t.Fatalf("states not contiguously numbered: position %d has page number %d (%v)", i, s.PageNumber, pageNumbers(states))
		}
	}
}

func TestNewStates(t *testing.T) {
	states := pages.NewStates(3)

	if len(states) != 3 {
		t.Fatalf("len = %d, want 3", len(states))
	}

	assertContiguous(t, states)

	for _, s := range states {
		if !s.NeedsOCR || !s.NeedsExtraction {
			t.Errorf("page %d does not need processing", s.PageNumber)
		}
		if s.OCRProcessedAt != nil || s.ExtractedAt != nil {
			t.Errorf("page %d has processing timestamps", s.PageNumber)
		}
	}
}

func TestStatesAfterRemove(t *testing.T) {
	processed := time.Now().UTC()
	states := pages.NewStates(5)
	states[4].NeedsOCR = false
	states[4].OCRProcessedAt = &processed

	// Remove pages 2 and 4 (indices 1 and 3) from a 5-page document.
	result := pages.StatesAfterRemove(states, []int{1, 3})

	if len(result) != 3 {
		t.Fatalf("len = %d, want 3", len(result))
	}

	assertContiguous(t, result)

	// The surviving processed page (originally page 5) keeps its state.
	last := result[2]
	if last.NeedsOCR {
		t.Error("surviving page lost its processed flag")
	}
	if last.OCRProcessedAt == nil || !last.OCRProcessedAt.Equal(processed) {
		t.Error("surviving page lost its processing timestamp")
	}
}

func TestStatesAfterRemove_All(t *testing.T) {
	result := pages.StatesAfterRemove(pages.NewStates(2), []int{0, 1})
	if len(result) != 0 {
		t.Errorf("len = %d, want 0", len(result))
	}
}

func TestStatesAfterInsert(t *testing.T) {
	states := pages.NewStates(3)
	states[1].NeedsOCR = false

	result := pages.StatesAfterInsert(states, 1, 2)

	if len(result) != 5 {
		t.Fatalf("len = %d, want 5", len(result))
	}

	assertContiguous(t, result)

	if !result[1].NeedsOCR || !result[2].NeedsOCR {
		t.Error("inserted pages do not need OCR")
	}

	// The processed page shifted from position 1 to position 3.
	if result[3].NeedsOCR {
		t.Error("shifted page lost its processed flag")
	}
}

func TestStatesAfterInsert_Append(t *testing.T) {
	result := pages.StatesAfterInsert(pages.NewStates(2), 2, 1)

	if len(result) != 3 {
		t.Fatalf("len = %d, want 3", len(result))
	}

	assertContiguous(t, result)
}

func TestStatesAfterDuplicate(t *testing.T) {
	states := pages.NewStates(3)
	states[0].NeedsOCR = false

	result := pages.StatesAfterDuplicate(states, []int{0, 2})

	if len(result) != 5 {
		t.Fatalf("len = %d, want 5", len(result))
	}

	assertContiguous(t, result)

	// Source keeps its state; the duplicate right after it is fresh.
	if result[0].NeedsOCR {
		t.Error("duplicated source lost its processed flag")
	}
	if !result[1].NeedsOCR {
		t.Error("duplicate does not need OCR")
	}
	if !result[4].NeedsOCR {
		t.Error("second duplicate does not need OCR")
	}
}
