package dto

import (
	"time"

	"github.com/nobita6986/BatchTranscriber/internal/domain"
)

// CredentialResponse never carries the secret; only its presence is exposed.
type CredentialResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

func NewCredentialResponse(c *domain.CredentialConfig, activeID string) CredentialResponse {
	return CredentialResponse{
		ID:        c.ID,
		Name:      c.Name,
		Active:    c.ID == activeID,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

func NewCredentialListResponse(creds []*domain.CredentialConfig, activeID string) []CredentialResponse {
	out := make([]CredentialResponse, 0, len(creds))
	for _, c := range creds {
		out = append(out, NewCredentialResponse(c, activeID))
	}
	return out
}

type AddCredentialRequest struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

type SetActiveCredentialRequest struct {
	ID string `json:"id"`
}

type CaptionKeyRequest struct {
	Key string `json:"key"`
}
