package models

// ListResult is a page of resources returned by a list operation.
// Page numbers are 1-based; a page or size of 0 means "everything".
type ListResult[T any] struct {
	// Page is the current page number.
	Page int `json:"page"`

	// Size is the requested page size.
	Size int `json:"size"`

	// Total is the total number of matching items across all pages.
	Total int64 `json:"total"`

	// Items are the resources on this page, in server order.
	Items []T `json:"items"`

	First       bool `json:"first"`
	Last        bool `json:"last"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
	TotalPages  int  `json:"totalPages"`
}

// NewListResult computes the pagination flags for a page of items.
// total is the number of matching items before paging.
func NewListResult[T any](page, size int, total int64, items []T) ListResult[T] {
	if items == nil {
		items = []T{}
	}

	result := ListResult[T]{
		Page:  page,
		Size:  size,
		Total: total,
		Items: items,
	}

	if page <= 0 || size <= 0 {
		result.First = true
		result.Last = true
		result.TotalPages = 1
		return result
	}

	pages := total / int64(size)
	if total%int64(size) != 0 {
		pages++
	}
	result.TotalPages = int(pages)
	result.First = page == 1
	result.Last = page >= result.TotalPages
	result.HasPrevious = page > 1
	result.HasNext = page < result.TotalPages
	return result
}
