package models

import (
	"fmt"
	"math"
	"slices"
	"time"

	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
)

// Status is the KYC verification state of an identity.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// ParseStatus returns CodeInvalidStatus for anything outside the enumeration.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidStatus, fmt.Sprintf("invalid kyc status %q", raw))
	}
	return s, nil
}

// Record is the per-user identity entry. There is exactly one per handle and
// it is never deleted.
type Record struct {
	Handle      id.Handle
	DisplayName string
	Status      Status
	Proofs      []string
	Reputation  uint64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewRecord starts a record in Pending with zero reputation. An empty proofRef
// yields an empty proof sequence.
func NewRecord(handle id.Handle, displayName, proofRef string, now time.Time) (*Record, error) {
	if handle.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "handle is required")
	}
	if len(handle) > id.MaxHandleLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("handle exceeds %d characters", id.MaxHandleLength))
	}
	proofs := []string{}
	if proofRef != "" {
		proofs = append(proofs, proofRef)
	}
	return &Record{
		Handle:      handle,
		DisplayName: displayName,
		Status:      StatusPending,
		Proofs:      proofs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (r *Record) IsApproved() bool {
	return r != nil && r.Status == StatusApproved
}

func (r *Record) AddProof(proofRef string, now time.Time) {
	r.Proofs = append(r.Proofs, proofRef)
	r.UpdatedAt = now
}

// Transition moves the record to status and returns the previous one.
// Any transition between valid states is allowed, including self-transitions.
func (r *Record) Transition(status Status, now time.Time) Status {
	old := r.Status
	r.Status = status
	r.UpdatedAt = now
	return old
}

// AdjustReputation applies delta, clamping at zero and at the uint64 ceiling.
func (r *Record) AdjustReputation(delta int64, now time.Time) uint64 {
	switch {
	case delta >= 0:
		d := uint64(delta)
		if r.Reputation > math.MaxUint64-d {
			r.Reputation = math.MaxUint64
		} else {
			r.Reputation += d
		}
	default:
		// -(MinInt64) overflows int64; compute the magnitude in uint64.
		d := uint64(-(delta + 1)) + 1
		if d >= r.Reputation {
			r.Reputation = 0
		} else {
			r.Reputation -= d
		}
	}
	r.UpdatedAt = now
	return r.Reputation
}

// Clone returns a deep copy safe to hand across store boundaries.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Proofs = slices.Clone(r.Proofs)
	if c.Proofs == nil {
		c.Proofs = []string{}
	}
	return &c
}

// Registry carries the registry-wide configuration fixed at construction.
type Registry struct {
	Admin id.Handle
}

func (r Registry) IsAdmin(h id.Handle) bool {
	return !r.Admin.IsNil() && r.Admin == h
}
