// Package selector builds and parses the label selector, field selector and
// sort expressions accepted by list operations.
//
// Each expression is sent as its own repeated query parameter, so builders
// return slices rather than a single comma-joined string:
//
//	labels, err := selector.Labels().
//		Equals("halo.run/role", "admin").
//		NotExists("hidden").
//		Build()
//
//	opts := &sdk.ListOptions{LabelSelector: labels}
package selector

import (
	"errors"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/selection"
)

// ErrInvalidSort indicates a sort expression is not "property[,asc|desc]".
var ErrInvalidSort = errors.New("invalid sort expression")

// LabelBuilder accumulates label requirements. The first invalid key or
// value is reported by Build.
type LabelBuilder struct {
	exprs []string
	err   error
}

// Labels starts a label selector.
func Labels() *LabelBuilder {
	return &LabelBuilder{}
}

// Equals requires label key to equal value.
func (b *LabelBuilder) Equals(key, value string) *LabelBuilder {
	return b.add(key, selection.Equals, value)
}

// NotEquals requires label key to be absent or differ from value.
func (b *LabelBuilder) NotEquals(key, value string) *LabelBuilder {
	return b.add(key, selection.NotEquals, value)
}

// Exists requires label key to be present.
func (b *LabelBuilder) Exists(key string) *LabelBuilder {
	return b.add(key, selection.Exists)
}

// NotExists requires label key to be absent.
func (b *LabelBuilder) NotExists(key string) *LabelBuilder {
	return b.add(key, selection.DoesNotExist)
}

func (b *LabelBuilder) add(key string, op selection.Operator, values ...string) *LabelBuilder {
	if b.err != nil {
		return b
	}

	req, err := labels.NewRequirement(key, op, values)
	if err != nil {
		b.err = fmt.Errorf("label %q: %w", key, err)
		return b
	}

	b.exprs = append(b.exprs, req.String())
	return b
}

// Build returns one expression per requirement, in the order they were added.
func (b *LabelBuilder) Build() ([]string, error) {
	if b.err != nil {
		return nil, b.err
	}
	return append([]string(nil), b.exprs...), nil
}

// ParseLabels combines repeated labelSelector values into one selector.
// No values selects everything.
func ParseLabels(exprs []string) (labels.Selector, error) {
	selector := labels.NewSelector()

	for _, expr := range exprs {
		parsed, err := labels.Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("label selector %q: %w", expr, err)
		}

		reqs, _ := parsed.Requirements()
		selector = selector.Add(reqs...)
	}

	return selector, nil
}

// FieldEquals returns a field selector requiring field to equal value.
func FieldEquals(field, value string) string {
	return field + "==" + value
}

// FieldNotEquals returns a field selector requiring field to differ from value.
func FieldNotEquals(field, value string) string {
	return field + "!=" + value
}

// ParseFields combines repeated fieldSelector values into one selector.
func ParseFields(exprs []string) (fields.Selector, error) {
	selectors := make([]fields.Selector, 0, len(exprs))

	for _, expr := range exprs {
		parsed, err := fields.ParseSelector(expr)
		if err != nil {
			return nil, fmt.Errorf("field selector %q: %w", expr, err)
		}
		selectors = append(selectors, parsed)
	}

	return fields.AndSelectors(selectors...), nil
}

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// SortOrder is one parsed sort expression.
type SortOrder struct {
	Property string
	Order    Order
}

// String formats the order as "property,direction".
func (s SortOrder) String() string {
	return s.Property + "," + string(s.Order)
}

// Sort returns the sort expression for property in the given direction.
func Sort(property string, order Order) string {
	return SortOrder{Property: property, Order: order}.String()
}

// ParseSort parses "property" or "property,asc|desc". A missing direction
// means ascending.
func ParseSort(expr string) (SortOrder, error) {
	property, direction, hasDirection := strings.Cut(strings.TrimSpace(expr), ",")
	property = strings.TrimSpace(property)
	if property == "" {
		return SortOrder{}, fmt.Errorf("%w: %q", ErrInvalidSort, expr)
	}

	order := Asc
	if hasDirection {
		switch Order(strings.ToLower(strings.TrimSpace(direction))) {
		case Asc:
		case Desc:
			order = Desc
		default:
			return SortOrder{}, fmt.Errorf("%w: %q", ErrInvalidSort, expr)
		}
	}

	return SortOrder{Property: property, Order: order}, nil
}
