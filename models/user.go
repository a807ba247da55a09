package models

import "time"

// User kind constants.
const (
	// UserAPIVersion is the apiVersion of User resources.
	UserAPIVersion = "v1alpha1"

	// UserKind is the kind discriminator of User resources.
	UserKind = "User"
)

// User is a registered account.
type User struct {
	APIVersion string      `json:"apiVersion"`
	Kind       string      `json:"kind"`
	Metadata   Metadata    `json:"metadata"`
	Spec       UserSpec    `json:"spec"`
	Status     *UserStatus `json:"status,omitempty"`
}

// GetMetadata returns the user's metadata.
func (u *User) GetMetadata() *Metadata {
	return &u.Metadata
}

// UserSpec is the desired state of a user.
type UserSpec struct {
	// DisplayName is the human-readable name shown in the console.
	DisplayName string `json:"displayName"`

	// Avatar is the URL of the user's avatar image.
	Avatar string `json:"avatar,omitempty"`

	// Email is the primary email address.
	Email string `json:"email"`

	// EmailVerified reports whether Email has been confirmed.
	EmailVerified *bool `json:"emailVerified,omitempty"`

	Phone string `json:"phone,omitempty"`

	// Password is write-only; servers return it encoded or omit it.
	Password string `json:"password,omitempty"`

	Bio string `json:"bio,omitempty"`

	RegisteredAt *time.Time `json:"registeredAt,omitempty"`

	TwoFactorAuthEnabled *bool `json:"twoFactorAuthEnabled,omitempty"`

	TotpEncryptedSecret string `json:"totpEncryptedSecret,omitempty"`

	// Disabled blocks the user from logging in.
	Disabled *bool `json:"disabled,omitempty"`

	// LoginHistoryLimit bounds the number of retained login records.
	LoginHistoryLimit *int32 `json:"loginHistoryLimit,omitempty"`
}

// UserStatus is the observed state of a user.
type UserStatus struct {
	// Permalink is the public profile URL.
	Permalink string `json:"permalink,omitempty"`
}

// UserList is a page of users.
type UserList = ListResult[User]
