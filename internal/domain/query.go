package domain

import (
	"maps"
	"net/url"
	"strconv"
	"strings"
)

// SortOrder is the direction of the directory sort
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Toggle flips the order
func (o SortOrder) Toggle() SortOrder {
	if o == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// Known filter keys, named as the backend expects them
const (
	FilterDepartment     = "department"
	FilterLocation       = "location"
	FilterStatus         = "status"
	FilterEmploymentType = "employment_type"
)

// FilterKeys lists the filters the directory exposes, in display order
var FilterKeys = []string{FilterDepartment, FilterLocation, FilterStatus, FilterEmploymentType}

// Filters maps a filter key to its selected value. Empty values mean "any".
type Filters map[string]string

// Clone returns an independent copy without empty values
func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	return out
}

// Equal reports whether both filter sets select the same values
func (f Filters) Equal(other Filters) bool {
	return maps.Equal(f.Clone(), other.Clone())
}

// Query is the full parameter set of one directory listing
type Query struct {
	Page      int
	PageSize  int
	SortField string
	SortOrder SortOrder
	Search    string
	Filters   Filters
}

// Values encodes the query with the backend's parameter names. Empty filters
// and an empty search are omitted so they never change the signature.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("page_size", strconv.Itoa(q.PageSize))
	if q.SortField != "" {
		v.Set("sort_by", q.SortField)
		order := q.SortOrder
		if order == "" {
			order = SortAsc
		}
		v.Set("sort_order", string(order))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	for key, value := range q.Filters.Clone() {
		v.Set(key, value)
	}
	return v
}

// FilterValues encodes only the search and filters, as used by export
func (q Query) FilterValues() url.Values {
	v := q.Values()
	v.Del("page")
	v.Del("page_size")
	return v
}

// Signature is the canonical cache and request key of the query.
// url.Values.Encode sorts by key, which makes it independent of the order
// filters were set in.
func (q Query) Signature() string {
	return q.Values().Encode()
}

// Pagination is the page position over a result set
type Pagination struct {
	Page       int
	PageSize   int
	TotalCount int
}

// TotalPages is ceil(TotalCount / PageSize)
func (p Pagination) TotalPages() int {
	if p.PageSize <= 0 || p.TotalCount <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

// HasNext reports whether a later page exists
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages()
}

// HasPrevious reports whether an earlier page exists
func (p Pagination) HasPrevious() bool {
	return p.Page > 1
}

// ClampPage forces page into [1, totalPages], or 1 when there are no pages
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}
