package handler

import (
	"time"

	"ridelink/internal/identity/models"
)

type IdentityResponse struct {
	Handle      string        `json:"handle"`
	DisplayName string        `json:"display_name"`
	Status      models.Status `json:"status"`
	Proofs      []string      `json:"proofs"`
	Reputation  uint64        `json:"reputation"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type ReputationResponse struct {
	Handle     string `json:"handle"`
	Reputation uint64 `json:"reputation"`
}

func toIdentityResponse(rec *models.Record) *IdentityResponse {
	return &IdentityResponse{
		Handle:      rec.Handle.String(),
		DisplayName: rec.DisplayName,
		Status:      rec.Status,
		Proofs:      rec.Proofs,
		Reputation:  rec.Reputation,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}
