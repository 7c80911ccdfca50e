package domain

import (
	"testing"
)

func TestQuerySignature_OrderIndependent(t *testing.T) {
	a := Query{Page: 1, PageSize: 20, SortField: "lastName", SortOrder: SortAsc, Filters: Filters{}}
	a.Filters[FilterDepartment] = "Engineering"
	a.Filters[FilterLocation] = "Berlin"

	b := Query{Page: 1, PageSize: 20, SortField: "lastName", SortOrder: SortAsc, Filters: Filters{}}
	b.Filters[FilterLocation] = "Berlin"
	b.Filters[FilterDepartment] = "Engineering"

	if a.Signature() != b.Signature() {
		t.Errorf("expected identical signatures, got %q and %q", a.Signature(), b.Signature())
	}
}

func TestQuerySignature_IgnoresEmptyValues(t *testing.T) {
	a := Query{Page: 2, PageSize: 10, Filters: Filters{FilterStatus: "", FilterDepartment: "  "}, Search: " "}
	b := Query{Page: 2, PageSize: 10}

	if a.Signature() != b.Signature() {
		t.Errorf("expected empty filters to be ignored, got %q and %q", a.Signature(), b.Signature())
	}
}

func TestQuerySignature_DiffersOnPage(t *testing.T) {
	a := Query{Page: 1, PageSize: 20}
	b := Query{Page: 2, PageSize: 20}

	if a.Signature() == b.Signature() {
		t.Error("expected different pages to produce different signatures")
	}
}

func TestQueryFilterValues_DropsPaging(t *testing.T) {
	q := Query{Page: 3, PageSize: 50, Search: "ada", Filters: Filters{FilterDepartment: "R&D"}}
	v := q.FilterValues()

	if v.Has("page") || v.Has("page_size") {
		t.Errorf("expected paging params to be removed, got %v", v)
	}
	if v.Get("search") != "ada" || v.Get(FilterDepartment) != "R&D" {
		t.Errorf("expected search and filters to survive, got %v", v)
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		name      string
		p         Pagination
		wantPages int
		wantNext  bool
		wantPrev  bool
	}{
		{"first of three", Pagination{Page: 1, PageSize: 20, TotalCount: 45}, 3, true, false},
		{"middle", Pagination{Page: 2, PageSize: 20, TotalCount: 45}, 3, true, true},
		{"last", Pagination{Page: 3, PageSize: 20, TotalCount: 45}, 3, false, true},
		{"exact multiple", Pagination{Page: 1, PageSize: 10, TotalCount: 20}, 2, true, false},
		{"empty", Pagination{Page: 1, PageSize: 10, TotalCount: 0}, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.TotalPages(); got != tt.wantPages {
				t.Errorf("TotalPages() = %d, want %d", got, tt.wantPages)
			}
			if got := tt.p.HasNext(); got != tt.wantNext {
				t.Errorf("HasNext() = %v, want %v", got, tt.wantNext)
			}
			if got := tt.p.HasPrevious(); got != tt.wantPrev {
				t.Errorf("HasPrevious() = %v, want %v", got, tt.wantPrev)
			}
		})
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		page, total, want int
	}{
		{0, 3, 1},
		{-5, 3, 1},
		{2, 3, 2},
		{9, 3, 3},
		{4, 0, 1},
	}
	for _, tt := range tests {
		if got := ClampPage(tt.page, tt.total); got != tt.want {
			t.Errorf("ClampPage(%d, %d) = %d, want %d", tt.page, tt.total, got, tt.want)
		}
	}
}

func TestSortOrderToggle(t *testing.T) {
	if SortAsc.Toggle() != SortDesc {
		t.Error("asc should toggle to desc")
	}
	if SortDesc.Toggle() != SortAsc {
		t.Error("desc should toggle to asc")
	}
}
