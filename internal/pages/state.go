package pages

import (
	"time"

	"github.com/lh/pagedeck/pkg/pageindex"
)

// ProcessingState tracks per-page downstream work: whether OCR and text
// extraction still need to run, and when they last completed. The list for a
// document always has exactly one entry per page, numbered contiguously from
// 1, and is fully rebuilt after any structural change so stale numbering
// cannot survive a mutation.
type ProcessingState struct {
	PageNumber      int        `json:"page_number"`
	NeedsOCR        bool       `json:"needs_ocr"`
	NeedsExtraction bool       `json:"needs_extraction"`
	OCRProcessedAt  *time.Time `json:"ocr_processed_at,omitempty"`
	ExtractedAt     *time.Time `json:"extracted_at,omitempty"`
}

// NewStates builds a fresh state list for a document of the given page
// count, with every page needing OCR and extraction.
func NewStates(pageCount int) []ProcessingState {
	states := make([]ProcessingState, pageCount)
	for i := range states {
		states[i] = ProcessingState{
			PageNumber:      pageindex.ToPageNumber(i),
			NeedsOCR:        true,
			NeedsExtraction: true,
		}
	}
	return states
}

// StatesAfterRemove rebuilds the state list after removing the pages at the
// given zero-based indices (ascending, deduplicated). Remaining entries keep
// their flags and timestamps and are renumbered contiguously.
func StatesAfterRemove(states []ProcessingState, removed []int) []ProcessingState {
	drop := make(map[int]bool, len(removed))
	for _, idx := range removed {
		drop[idx] = true
	}

	result := make([]ProcessingState, 0, len(states)-len(drop))
	for i, state := range states {
		if drop[i] {
			continue
		}
		result = append(result, state)
	}

	return renumber(result)
}

// StatesAfterInsert rebuilds the state list after inserting count pages at
// the given zero-based position. Prior entries are preserved, matched by
// pre-insertion index and shifted where necessary; inserted entries are
// fresh and need OCR and extraction.
func StatesAfterInsert(states []ProcessingState, at, count int) []ProcessingState {
	result := make([]ProcessingState, 0, len(states)+count)
	result = append(result, states[:at]...)
	for range count {
		result = append(result, ProcessingState{
			NeedsOCR:        true,
			NeedsExtraction: true,
		})
	}
	result = append(result, states[at:]...)

	return renumber(result)
}

// StatesAfterDuplicate rebuilds the state list after duplicating the pages
// at the given zero-based indices (ascending, deduplicated). Each duplicate
// sits immediately after its source and needs OCR and extraction; sources
// keep their state.
func StatesAfterDuplicate(states []ProcessingState, sources []int) []ProcessingState {
	dup := make(map[int]bool, len(sources))
	for _, idx := range sources {
		dup[idx] = true
	}

	result := make([]ProcessingState, 0, len(states)+len(sources))
	for i, state := range states {
		result = append(result, state)
		if dup[i] {
			result = append(result, ProcessingState{
				NeedsOCR:        true,
				NeedsExtraction: true,
			})
		}
	}

	return renumber(result)
}

func renumber(states []ProcessingState) []ProcessingState {
	for i := range states {
		states[i].PageNumber = pageindex.ToPageNumber(i)
	}
	return states
}
