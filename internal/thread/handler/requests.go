package handler

import (
	"strings"

	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
	"ridelink/pkg/validation"
)

type CreateThreadRequest struct {
	RideID    string `json:"ride_id" validate:"required,notblank"`
	Passenger string `json:"passenger" validate:"required,notblank"`
}

func (r *CreateThreadRequest) Normalize() {
	if r == nil {
		return
	}
	r.RideID = strings.TrimSpace(r.RideID)
	r.Passenger = strings.TrimSpace(r.Passenger)
}

func (r *CreateThreadRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	if err := validation.CheckStringLength("ride_id", r.RideID, validation.MaxRideIDLength); err != nil {
		return err
	}
	_, err := id.ParseHandle(r.Passenger)
	return err
}

// UpdateETARequest uses a pointer so a missing field is distinguishable from zero minutes.
type UpdateETARequest struct {
	MinutesAway *uint32 `json:"minutes_away" validate:"required"`
}

func (r *UpdateETARequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}
