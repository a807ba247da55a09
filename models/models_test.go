package models

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
	"time"
)

func TestUser_RoundTrip(t *testing.T) {
	version := int64(7)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	verified := true
	limit := int32(10)

	user := User{
		APIVersion: UserAPIVersion,
		Kind:       UserKind,
		Metadata: Metadata{
			Name:              "admin",
			Labels:            map[string]string{"halo.run/role": "super-role"},
			Annotations:       map[string]string{"note": "x"},
			Version:           &version,
			CreationTimestamp: &created,
			Finalizers:        []string{"user-protection"},
		},
		Spec: UserSpec{
			DisplayName:       "Administrator",
			Email:             "admin@example.com",
			EmailVerified:     &verified,
			Bio:               "hello",
			RegisteredAt:      &created,
			LoginHistoryLimit: &limit,
		},
		Status: &UserStatus{Permalink: "/authors/admin"},
	}

	data, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got User
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !reflect.DeepEqual(user, got) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, user)
	}
}

func TestAttachment_RoundTrip(t *testing.T) {
	size := int64(2048)
	attachment := Attachment{
		APIVersion: AttachmentAPIVersion,
		Kind:       AttachmentKind,
		Metadata:   Metadata{Name: "logo", GenerateName: "logo-"},
		Spec: AttachmentSpec{
			DisplayName: "logo.png",
			PolicyName:  "default-policy",
			OwnerName:   "admin",
			MediaType:   "image/png",
			Size:        &size,
			Tags:        []string{"brand"},
		},
		Status: &AttachmentStatus{
			Permalink:  "/upload/logo.png",
			Thumbnails: map[string]string{"S": "/upload/logo-s.png"},
		},
	}

	data, err := json.Marshal(attachment)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got Attachment
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !reflect.DeepEqual(attachment, got) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, attachment)
	}
}

func TestUser_OptionalFieldsOmitted(t *testing.T) {
	data, err := json.Marshal(User{APIVersion: UserAPIVersion, Kind: UserKind, Metadata: Metadata{Name: "a"}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"apiVersion":"v1alpha1","kind":"User","metadata":{"name":"a"},"spec":{"displayName":"","email":""}}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestNewListResult(t *testing.T) {
	tests := []struct {
		name         string
		page, size   int
		total        int64
		wantPages    int
		wantFirst    bool
		wantLast     bool
		wantNext     bool
		wantPrevious bool
	}{
		{name: "unpaged", page: 0, size: 0, total: 5, wantPages: 1, wantFirst: true, wantLast: true},
		{name: "first of three", page: 1, size: 2, total: 5, wantPages: 3, wantFirst: true, wantNext: true},
		{name: "middle", page: 2, size: 2, total: 5, wantPages: 3, wantNext: true, wantPrevious: true},
		{name: "last", page: 3, size: 2, total: 5, wantPages: 3, wantLast: true, wantPrevious: true},
		{name: "empty", page: 1, size: 10, total: 0, wantPages: 0, wantFirst: true, wantLast: true},
		{name: "max size", page: 1, size: math.MaxInt, total: 5, wantPages: 1, wantFirst: true, wantLast: true},
		{name: "max size past end", page: 2, size: math.MaxInt, total: 5, wantPages: 1, wantLast: true, wantPrevious: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewListResult[User](tt.page, tt.size, tt.total, nil)

			if got.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", got.TotalPages, tt.wantPages)
			}
			if got.First != tt.wantFirst || got.Last != tt.wantLast {
				t.Errorf("First/Last = %v/%v, want %v/%v", got.First, got.Last, tt.wantFirst, tt.wantLast)
			}
			if got.HasNext != tt.wantNext || got.HasPrevious != tt.wantPrevious {
				t.Errorf("HasNext/HasPrevious = %v/%v, want %v/%v", got.HasNext, got.HasPrevious, tt.wantNext, tt.wantPrevious)
			}
			if got.Items == nil {
				t.Error("Items should be an empty slice, not nil")
			}
		})
	}
}

func TestJSONPatchOperation_Encoding(t *testing.T) {
	ops := []JSONPatchOperation{
		PatchReplace("/spec/displayName", "Root"),
		PatchRemove("/spec/bio"),
		PatchMove("/spec/avatar", "/spec/bio"),
		PatchReplace("/spec/bio", nil),
		PatchAdd("/metadata/labels", nil),
		PatchTest("/spec/avatar", nil),
	}

	data, err := json.Marshal(ops)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `[{"op":"replace","path":"/spec/displayName","value":"Root"},{"op":"remove","path":"/spec/bio"},{"op":"move","path":"/spec/bio","from":"/spec/avatar"},` +
		`{"op":"replace","path":"/spec/bio","value":null},{"op":"add","path":"/metadata/labels","value":null},` +
		`{"op":"test","path":"/spec/avatar","value":null}]`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
