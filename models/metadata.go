package models

import "time"

// Metadata identifies a resource and carries its bookkeeping fields.
// Names are unique within the resource's collection.
type Metadata struct {
	// Name is the unique identifier of the resource within its collection.
	Name string `json:"name"`

	// GenerateName asks the server to generate a unique name with this prefix
	// when Name is empty on creation.
	GenerateName string `json:"generateName,omitempty"`

	// Labels are indexed key/value pairs usable in label selectors.
	Labels map[string]string `json:"labels,omitempty"`

	// Annotations are arbitrary non-indexed key/value pairs.
	Annotations map[string]string `json:"annotations,omitempty"`

	// Version is the optimistic-lock version maintained by the server.
	// Updates carrying a stale version are rejected with 409 Conflict.
	Version *int64 `json:"version,omitempty"`

	// CreationTimestamp is set by the server on creation.
	CreationTimestamp *time.Time `json:"creationTimestamp,omitempty"`

	// DeletionTimestamp is set by the server once deletion has been requested.
	DeletionTimestamp *time.Time `json:"deletionTimestamp,omitempty"`

	// Finalizers block physical deletion until they are removed.
	Finalizers []string `json:"finalizers,omitempty"`
}

// Object is implemented by every envelope type in this package.
type Object interface {
	GetMetadata() *Metadata
}
