package sdk

import (
	"net/url"
	"strconv"
)

// ListOptions holds the query parameters of a list call. Only fields that are
// set are encoded; slice fields become repeated query parameters.
type ListOptions struct {
	// Page is the 1-based page number. 0 means all items.
	Page *int

	// Size is the page size. 0 means all items.
	Size *int

	// LabelSelector entries, e.g. "halo.run/role=admin" or "!hidden".
	LabelSelector []string

	// FieldSelector entries, e.g. "metadata.name==admin".
	FieldSelector []string

	// Sort entries in the form "property,asc|desc".
	Sort []string
}

// Values encodes the options as query parameters.
func (o *ListOptions) Values() url.Values {
	values := url.Values{}
	if o == nil {
		return values
	}

	if o.Page != nil {
		values.Set("page", strconv.Itoa(*o.Page))
	}
	if o.Size != nil {
		values.Set("size", strconv.Itoa(*o.Size))
	}
	for _, s := range o.LabelSelector {
		values.Add("labelSelector", s)
	}
	for _, s := range o.FieldSelector {
		values.Add("fieldSelector", s)
	}
	for _, s := range o.Sort {
		values.Add("sort", s)
	}

	return values
}

// Int returns a pointer to v, for ListOptions.Page and Size.
func Int(v int) *int {
	return &v
}
