package models

// Attachment kind constants.
const (
	// AttachmentGroup is the API group serving attachments.
	AttachmentGroup = "storage.halo.run"

	// AttachmentAPIVersion is the apiVersion of Attachment resources.
	AttachmentAPIVersion = AttachmentGroup + "/v1alpha1"

	// AttachmentKind is the kind discriminator of Attachment resources.
	AttachmentKind = "Attachment"
)

// Attachment is an uploaded file tracked by a storage policy.
type Attachment struct {
	APIVersion string            `json:"apiVersion"`
	Kind       string            `json:"kind"`
	Metadata   Metadata          `json:"metadata"`
	Spec       AttachmentSpec    `json:"spec"`
	Status     *AttachmentStatus `json:"status,omitempty"`
}

// GetMetadata returns the attachment's metadata.
func (a *Attachment) GetMetadata() *Metadata {
	return &a.Metadata
}

// AttachmentSpec is the desired state of an attachment.
type AttachmentSpec struct {
	// DisplayName is the file name shown to users.
	DisplayName string `json:"displayName,omitempty"`

	// GroupName is the attachment group the file belongs to.
	GroupName string `json:"groupName,omitempty"`

	// PolicyName is the storage policy that stores the file.
	PolicyName string `json:"policyName,omitempty"`

	// OwnerName is the name of the user who uploaded the file.
	OwnerName string `json:"ownerName,omitempty"`

	MediaType string `json:"mediaType,omitempty"`

	// Size is the file size in bytes.
	Size *int64 `json:"size,omitempty"`

	Tags []string `json:"tags,omitempty"`
}

// AttachmentStatus is the observed state of an attachment.
type AttachmentStatus struct {
	// Permalink is the public URL of the file.
	Permalink string `json:"permalink,omitempty"`

	// Thumbnails maps a thumbnail size (S, M, L, XL) to its URL.
	Thumbnails map[string]string `json:"thumbnails,omitempty"`
}

// AttachmentList is a page of attachments.
type AttachmentList = ListResult[Attachment]
