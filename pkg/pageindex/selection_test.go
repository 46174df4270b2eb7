package pageindex_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/lh/pagedeck/pkg/pageindex"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		indices   []int
		pageCount int
		want      []int
		wantErr   error
	}{
		{
			"single index",
			[]int{3},
			10,
			[]int{3},
			nil,
		},
		{
			"unsorted input sorted",
			[]int{7, 2, 5},
			10,
			[]int{2, 5, 7},
			nil,
		},
		{
			"duplicates collapsed",
			[]int{1, 1, 3, 3},
			10,
			[]int{1, 3},
			nil,
		},
		{
			"full document",
			[]int{0, 1, 2},
			3,
			[]int{0, 1, 2},
			nil,
		},
		{
			"empty selection",
			nil,
			10,
			nil,
			pageindex.ErrEmptySelection,
		},
		{
			"negative index",
			[]int{-1},
			10,
			nil,
			pageindex.ErrPageOutOfRange,
		},
		{
			"index at page count",
			[]int{10},
			10,
			nil,
			pageindex.ErrPageOutOfRange,
		},
		{
			"mixed valid and invalid",
			[]int{1, 15},
			10,
			nil,
			pageindex.ErrPageOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pageindex.Normalize(tt.indices, tt.pageCount)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Normalize() error = %v, want %v", err, tt.wantErr)
				}
			} else {
				if err != nil {
					t.Errorf("Normalize() error = %v, want nil", err)
				}
				if !reflect.DeepEqual(got, tt.want) {
					t.Errorf("Normalize() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestDescending(t *testing.T) {
	input := []int{1, 4, 2}
	got := pageindex.Descending(input)

	want := []int{4, 2, 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Descending() = %v, want %v", got, want)
	}

	if !reflect.DeepEqual(input, []int{1, 4, 2}) {
		t.Errorf("Descending() modified input: %v", input)
	}
}

func TestExcludeRange(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		r       pageindex.Range
		want    []int
	}{
		{
			"no overlap",
			[]int{0, 1, 2},
			pageindex.Range{Start: 5, End: 6},
			[]int{0, 1, 2},
		},
		{
			"partial overlap",
			[]int{0, 3, 5},
			pageindex.Range{Start: 3, End: 5},
			[]int{0, 5},
		},
		{
			"all excluded",
			[]int{3, 4},
			pageindex.Range{Start: 3, End: 5},
			[]int{},
		},
		{
			"empty range excludes nothing",
			[]int{0, 1},
			pageindex.Range{},
			[]int{0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pageindex.ExcludeRange(tt.indices, tt.r)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExcludeRange() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRangeExpression(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		maxPage int
		want    []int
		wantErr error
	}{
		{
			"single page",
			"3",
			10,
			[]int{3},
			nil,
		},
		{
			"simple range",
			"1-5",
			10,
			[]int{1, 2, 3, 4, 5},
			nil,
		},
		{
			"mixed pages and ranges",
			"1,3-5,8",
			10,
			[]int{1, 3, 4, 5, 8},
			nil,
		},
		{
			"with spaces",
			" 1 , 3 - 5 ",
			10,
			[]int{1, 3, 4, 5},
			nil,
		},
		{
			"overlapping ranges collapsed",
			"1-5,3-7",
			10,
			[]int{1, 2, 3, 4, 5, 6, 7},
			nil,
		},
		{
			"open start",
			"-3",
			10,
			[]int{1, 2, 3},
			nil,
		},
		{
			"open end",
			"8-",
			10,
			[]int{8, 9, 10},
			nil,
		},
		{
			"empty string",
			"",
			10,
			nil,
			pageindex.ErrInvalidRange,
		},
		{
			"page zero",
			"0",
			10,
			nil,
			pageindex.ErrPageOutOfRange,
		},
		{
			"page exceeds max",
			"15",
			10,
			nil,
			pageindex.ErrPageOutOfRange,
		},
		{
			"range exceeds max",
			"8-15",
			10,
			nil,
			pageindex.ErrPageOutOfRange,
		},
		{
			"start greater than end",
			"5-3",
			10,
			nil,
			pageindex.ErrInvalidRange,
		},
		{
			"invalid page format",
			"abc",
			10,
			nil,
			pageindex.ErrInvalidRange,
		},
		{
			"only commas",
			",,,",
			10,
			nil,
			pageindex.ErrInvalidRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pageindex.ParseRangeExpression(tt.expr, tt.maxPage)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseRangeExpression() error = %v, want %v", err, tt.wantErr)
				}
			} else {
				if err != nil {
					t.Errorf("ParseRangeExpression() error = %v, want nil", err)
				}
				if !reflect.DeepEqual(got, tt.want) {
					t.Errorf("ParseRangeExpression() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}
