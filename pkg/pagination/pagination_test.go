package pagination

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       Params
		page     int
		pageSize int
	}{
		{name: "zero values", in: Params{}, page: 1, pageSize: DefaultPageSize},
		{name: "negative page", in: Params{Page: -3, PageSize: 20}, page: 1, pageSize: 20},
		{name: "oversized", in: Params{Page: 2, PageSize: 5000}, page: 2, pageSize: MaxPageSize},
		{name: "in range", in: Params{Page: 4, PageSize: 25}, page: 4, pageSize: 25},
	}
	for _, tt := range tests {
		got := tt.in.Normalize()
		if got.Page != tt.page || got.PageSize != tt.pageSize {
			t.Fatalf("%s: got %+v", tt.name, got)
		}
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 1, PageSize: 10}).Offset(); got != 0 {
		t.Fatalf("first page offset should be 0, got %d", got)
	}
	if got := (Params{Page: 3, PageSize: 10}).Offset(); got != 20 {
		t.Fatalf("expected offset 20, got %d", got)
	}
	if got := (Params{}).Offset(); got != 0 {
		t.Fatalf("zero params offset should be 0, got %d", got)
	}
}
