package selector

import (
	"errors"
	"reflect"
	"testing"

	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/apimachinery/pkg/labels"
)

func TestLabelBuilder(t *testing.T) {
	got, err := Labels().
		Equals("halo.run/role", "admin").
		NotEquals("tier", "free").
		Exists("verified").
		NotExists("hidden").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := []string{"halo.run/role=admin", "tier!=free", "verified", "!hidden"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build() = %v, want %v", got, want)
	}
}

func TestLabelBuilder_InvalidKey(t *testing.T) {
	_, err := Labels().Equals("bad key", "x").Exists("ok").Build()
	if err == nil {
		t.Error("Build() expected error for invalid key")
	}
}

func TestParseLabels(t *testing.T) {
	tests := []struct {
		name    string
		exprs   []string
		set     labels.Set
		want    bool
		wantErr bool
	}{
		{name: "no selectors", exprs: nil, set: labels.Set{"a": "1"}, want: true},
		{name: "equals match", exprs: []string{"a=1"}, set: labels.Set{"a": "1"}, want: true},
		{name: "equals mismatch", exprs: []string{"a=1"}, set: labels.Set{"a": "2"}, want: false},
		{name: "not equals on missing key", exprs: []string{"a!=1"}, set: labels.Set{}, want: true},
		{name: "exists", exprs: []string{"a"}, set: labels.Set{"a": ""}, want: true},
		{name: "not exists", exprs: []string{"!a"}, set: labels.Set{"a": "1"}, want: false},
		{name: "combined", exprs: []string{"a=1", "!b"}, set: labels.Set{"a": "1"}, want: true},
		{name: "combined fails", exprs: []string{"a=1", "!b"}, set: labels.Set{"a": "1", "b": "x"}, want: false},
		{name: "invalid", exprs: []string{"a b"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := ParseLabels(tt.exprs)
			if tt.wantErr {
				if err == nil {
					t.Error("ParseLabels() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLabels() error = %v", err)
			}
			if got := sel.Matches(tt.set); got != tt.want {
				t.Errorf("Matches(%v) = %v, want %v", tt.set, got, tt.want)
			}
		})
	}
}

func TestParseFields(t *testing.T) {
	sel, err := ParseFields([]string{FieldEquals("metadata.name", "admin"), FieldNotEquals("spec.disabled", "true")})
	if err != nil {
		t.Fatalf("ParseFields() error = %v", err)
	}

	if !sel.Matches(fields.Set{"metadata.name": "admin", "spec.disabled": "false"}) {
		t.Error("expected match")
	}
	if sel.Matches(fields.Set{"metadata.name": "guest"}) {
		t.Error("expected no match")
	}

	all, err := ParseFields(nil)
	if err != nil {
		t.Fatalf("ParseFields(nil) error = %v", err)
	}
	if !all.Matches(fields.Set{}) {
		t.Error("empty selector should match everything")
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		expr    string
		want    SortOrder
		wantErr bool
	}{
		{expr: "metadata.name", want: SortOrder{Property: "metadata.name", Order: Asc}},
		{expr: "metadata.name,asc", want: SortOrder{Property: "metadata.name", Order: Asc}},
		{expr: "metadata.creationTimestamp,DESC", want: SortOrder{Property: "metadata.creationTimestamp", Order: Desc}},
		{expr: ",desc", wantErr: true},
		{expr: "name,sideways", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ParseSort(tt.expr)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSort) {
					t.Errorf("ParseSort() error = %v, want ErrInvalidSort", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSort() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseSort() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if got := Sort("metadata.name", Desc); got != "metadata.name,desc" {
		t.Errorf("Sort() = %q", got)
	}
}
