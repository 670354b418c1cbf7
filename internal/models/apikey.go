package models

import "time"

// APIKey holds the server-side record of an issued credential. Only the
// SHA-256 hash of the secret is stored; the plaintext is shown once at
// creation and never persisted. Revocation flips IsActive, the row is never
// deleted.
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	KeyHash    string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	Name       string     `gorm:"size:100;not null" json:"name"`
	CreatedAt  time.Time  `gorm:"not null" json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt"`
	IsActive   bool       `gorm:"not null;default:true" json:"isActive"`
}

// APIKeyResponse is the metadata-only wire representation of a credential.
// It never carries the secret or its hash.
type APIKeyResponse struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	CreatedAt  string  `json:"createdAt"`
	LastUsedAt *string `json:"lastUsedAt"`
	IsActive   bool    `json:"isActive"`
}

// ToResponse converts a credential record to its wire representation.
func (k *APIKey) ToResponse() *APIKeyResponse {
	resp := &APIKeyResponse{
		ID:        k.ID,
		Name:      k.Name,
		CreatedAt: k.CreatedAt.UTC().Format(time.RFC3339),
		IsActive:  k.IsActive,
	}
	if k.LastUsedAt != nil {
		s := k.LastUsedAt.UTC().Format(time.RFC3339)
		resp.LastUsedAt = &s
	}
	return resp
}
