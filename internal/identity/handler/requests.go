package handler

import (
	"strings"

	"ridelink/internal/identity/models"
	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
	"ridelink/pkg/validation"
)

type RegisterRequest struct {
	Handle      string `json:"handle" validate:"required,notblank"`
	DisplayName string `json:"display_name" validate:"required,notblank"`
	ProofRef    string `json:"proof_ref"`
}

func (r *RegisterRequest) Normalize() {
	if r == nil {
		return
	}
	r.Handle = strings.TrimSpace(r.Handle)
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	r.ProofRef = strings.TrimSpace(r.ProofRef)
}

func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	if _, err := id.ParseHandle(r.Handle); err != nil {
		return err
	}
	if err := validation.CheckStringLength("display_name", r.DisplayName, validation.MaxDisplayNameLength); err != nil {
		return err
	}
	return validation.CheckStringLength("proof_ref", r.ProofRef, validation.MaxProofRefLength)
}

type AddProofRequest struct {
	ProofRef string `json:"proof_ref" validate:"required,notblank"`
}

func (r *AddProofRequest) Normalize() {
	if r != nil {
		r.ProofRef = strings.TrimSpace(r.ProofRef)
	}
}

func (r *AddProofRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	return validation.CheckStringLength("proof_ref", r.ProofRef, validation.MaxProofRefLength)
}

// UpdateStatusRequest leaves enumeration checks to the service so an unknown
// status surfaces as invalid_status rather than a generic validation error.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (r *UpdateStatusRequest) Normalize() {
	if r != nil {
		r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	}
}

func (r *UpdateStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *UpdateStatusRequest) status() models.Status {
	return models.Status(r.Status)
}

type AdjustReputationRequest struct {
	Delta int64 `json:"delta"`
}
