package store

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/apimachinery/pkg/labels"

	"github.com/yaroslav/haloclient/models"
	"github.com/yaroslav/haloclient/pkg/selector"
)

// Query filters, sorts and pages a list call.
type Query struct {
	Labels labels.Selector
	Fields fields.Selector
	Sort   []selector.SortOrder

	// Page is 1-based; Page or Size of 0 returns every match.
	Page int
	Size int
}

// ParseQuery reads page, size, labelSelector, fieldSelector and sort from
// list query parameters. Invalid values wrap models.ErrInvalidRequest.
func ParseQuery(values url.Values) (Query, error) {
	q := Query{}

	var err error
	if q.Page, err = parseNonNegative(values, "page"); err != nil {
		return q, err
	}
	if q.Size, err = parseNonNegative(values, "size"); err != nil {
		return q, err
	}

	if q.Labels, err = selector.ParseLabels(values["labelSelector"]); err != nil {
		return q, fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
	}
	if q.Fields, err = selector.ParseFields(values["fieldSelector"]); err != nil {
		return q, fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
	}

	for _, expr := range values["sort"] {
		order, err := selector.ParseSort(expr)
		if err != nil {
			return q, fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
		}
		q.Sort = append(q.Sort, order)
	}

	return q, nil
}

func parseNonNegative(values url.Values, key string) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", models.ErrInvalidRequest, key)
	}
	return n, nil
}

// Matches reports whether obj passes the label and field selectors.
func (q Query) Matches(obj *unstructured.Unstructured) bool {
	if q.Labels != nil && !q.Labels.Matches(labels.Set(obj.GetLabels())) {
		return false
	}
	if q.Fields != nil && !q.Fields.Matches(fieldSet(obj)) {
		return false
	}
	return true
}

// SortItems orders items by the sort expressions, first expression first.
// Items that tie keep their current order.
func (q Query) SortItems(items []unstructured.Unstructured) {
	for i := len(q.Sort) - 1; i >= 0; i-- {
		order := q.Sort[i]
		path := strings.Split(order.Property, ".")

		sort.SliceStable(items, func(a, b int) bool {
			c := compareValues(nestedValue(items[a], path), nestedValue(items[b], path))
			if order.Order == selector.Desc {
				return c > 0
			}
			return c < 0
		})
	}
}

// PageItems returns the requested page of items.
func (q Query) PageItems(items []unstructured.Unstructured) []unstructured.Unstructured {
	if q.Page <= 0 || q.Size <= 0 {
		return items
	}

	// Compare by division so huge page or size values cannot overflow.
	if len(items) == 0 || q.Page-1 > (len(items)-1)/q.Size {
		return []unstructured.Unstructured{}
	}
	start := (q.Page - 1) * q.Size
	end := len(items)
	if q.Size < end-start {
		end = start + q.Size
	}
	return items[start:end]
}

// fieldSet exposes metadata.name, metadata.generateName and every scalar
// spec field to field selectors.
func fieldSet(obj *unstructured.Unstructured) fields.Set {
	set := fields.Set{
		"metadata.name":         obj.GetName(),
		"metadata.generateName": obj.GetGenerateName(),
		"kind":                  obj.GetKind(),
		"apiVersion":            obj.GetAPIVersion(),
	}

	spec, _, _ := unstructured.NestedMap(obj.Object, "spec")
	for key, value := range spec {
		switch v := value.(type) {
		case string:
			set["spec."+key] = v
		case bool, int64, float64:
			set["spec."+key] = fmt.Sprint(v)
		}
	}

	return set
}

func nestedValue(obj unstructured.Unstructured, path []string) interface{} {
	value, found, err := unstructured.NestedFieldNoCopy(obj.Object, path...)
	if err != nil || !found {
		return nil
	}
	return value
}

// compareValues puts nil first. Numbers compare numerically, RFC 3339
// timestamps as times and everything else as strings.
func compareValues(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return compareOrdered(fa, fb)
		}
	}

	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	if ta, err := time.Parse(time.RFC3339Nano, sa); err == nil {
		if tb, err := time.Parse(time.RFC3339Nano, sb); err == nil {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(sa, sb)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func compareOrdered(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
