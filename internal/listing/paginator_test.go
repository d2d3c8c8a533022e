package listing_test

import (
	"github.com/google/go-cmp/cmp"
	"it-solutions-hub/internal/listing"
	"testing"
)

func TestPaginator_NumPages(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{count: 0, want: 1},
		{count: 1, want: 1},
		{count: 5, want: 1},
		{count: 6, want: 2},
		{count: 11, want: 3},
	}

	for _, tt := range tests {
		p := listing.Paginator{Count: tt.count, PerPage: 5}
		if got := p.NumPages(); got != tt.want {
			t.Errorf("NumPages(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestNewPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		raw          string
		wantItems    []int
		wantNumber   int
		wantNext     bool
		wantPrevious bool
	}{
		{raw: "1", wantItems: []int{1, 2, 3}, wantNumber: 1, wantNext: true},
		{raw: " 2 ", wantItems: []int{4, 5, 6}, wantNumber: 2, wantNext: true, wantPrevious: true},
		{raw: "3", wantItems: []int{7}, wantNumber: 3, wantPrevious: true},
		{raw: "4", wantItems: []int{7}, wantNumber: 3, wantPrevious: true},
		{raw: "2.0", wantItems: []int{1, 2, 3}, wantNumber: 1, wantNext: true},
		{raw: "99999999999999999999", wantItems: []int{7}, wantNumber: 3, wantPrevious: true},
		{raw: "-99999999999999999999", wantItems: []int{1, 2, 3}, wantNumber: 1, wantNext: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := listing.NewPage(items, 3, tt.raw)

			if diff := cmp.Diff(tt.wantItems, got.Items); diff != "" {
				t.Errorf("items mismatch (-want +got):\n%s", diff)
			}
			if got.Number != tt.wantNumber {
				t.Errorf("want number %d, got %d", tt.wantNumber, got.Number)
			}
			if got.HasNext() != tt.wantNext || got.HasPrevious() != tt.wantPrevious {
				t.Errorf("want next=%v previous=%v, got next=%v previous=%v", tt.wantNext, tt.wantPrevious, got.HasNext(), got.HasPrevious())
			}
		})
	}
}

func TestPage_PageRange(t *testing.T) {
	got := listing.NewPage([]string{"a", "b", "c"}, 1, "2")

	if diff := cmp.Diff([]int{1, 2, 3}, got.PageRange()); diff != "" {
		t.Errorf("range mismatch (-want +got):\n%s", diff)
	}
	if got.NextPageNumber() != 3 || got.PreviousPageNumber() != 1 {
		t.Errorf("unexpected neighbours %d/%d", got.PreviousPageNumber(), got.NextPageNumber())
	}
}
