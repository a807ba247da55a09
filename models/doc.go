// Package models provides the resource shapes exchanged with the Halo extension API.
//
// Every stored resource uses the same envelope:
//   - apiVersion: schema/version tag of the resource kind
//   - kind: resource type discriminator
//   - metadata: identity (name), labels, annotations, timestamps
//   - spec: desired state, specific to the kind
//   - status: observed state populated by the server (optional)
//
// The structs in this package carry no behavior beyond JSON shape. Optional
// fields are pointers or omitempty collections so that an absent value is
// never confused with a zero value.
package models
