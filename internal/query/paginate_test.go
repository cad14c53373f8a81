package query

import "testing"

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginateBoundary(t *testing.T) {
	items := ints(37)

	// Page 4 of 37 items at size 10 holds exactly the last 7.
	p := Paginate(items, 4, 10)
	if len(p.Items) != 7 {
		t.Fatalf("page 4 has %d items, want 7", len(p.Items))
	}
	if p.Items[0] != 31 || p.Items[6] != 37 {
		t.Errorf("page 4 = %v..%v, want 31..37", p.Items[0], p.Items[6])
	}
	if p.TotalPages != 4 || p.TotalItems != 37 {
		t.Errorf("totals = %d pages / %d items, want 4 / 37", p.TotalPages, p.TotalItems)
	}
}

func TestPaginateClampsAfterShrink(t *testing.T) {
	// A stale page-5 request against a shrunk 30-item collection lands
	// on page 3, never on an empty page.
	p := Paginate(ints(30), 5, 10)
	if p.Page != 3 {
		t.Fatalf("clamped page = %d, want 3", p.Page)
	}
	if len(p.Items) != 10 || p.Items[0] != 21 {
		t.Errorf("page items = %v, want 21..30", p.Items)
	}
}

func TestPaginateEdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		page      int
		pageSize  int
		wantPage  int
		wantCount int
	}{
		{"empty collection", 0, 1, 10, 1, 0},
		{"empty collection stale page", 0, 9, 10, 1, 0},
		{"page below one", 25, 0, 10, 1, 10},
		{"negative page", 25, -3, 10, 1, 10},
		{"exact multiple last page", 30, 3, 10, 3, 10},
		{"single item", 1, 1, 10, 1, 1},
		{"zero page size falls back to default", 25, 2, 0, 2, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(ints(tt.total), tt.page, tt.pageSize)
			if p.Page != tt.wantPage {
				t.Errorf("page = %d, want %d", p.Page, tt.wantPage)
			}
			if len(p.Items) != tt.wantCount {
				t.Errorf("items = %d, want %d", len(p.Items), tt.wantCount)
			}
		})
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		page, total, size int
		want              int
	}{
		{5, 30, 10, 3},
		{4, 37, 10, 4},
		{1, 0, 10, 1},
		{-1, 100, 10, 1},
		{2, 100, 10, 2},
	}

	for _, tt := range tests {
		if got := ClampPage(tt.page, tt.total, tt.size); got != tt.want {
			t.Errorf("ClampPage(%d, %d, %d) = %d, want %d", tt.page, tt.total, tt.size, got, tt.want)
		}
	}
}
