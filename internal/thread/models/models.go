package models

import (
	"time"

	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
)

// Thread is the two-party conversation attached to one ride. The driver and
// passenger roles are fixed at creation.
type Thread struct {
	ID         id.ThreadID
	RideID     id.RideID
	Driver     id.Handle
	Passenger  id.Handle
	Active     bool
	ETAMinutes uint32
	CreatedAt  time.Time
	ClosedAt   *time.Time
}

// New opens an active thread with no ETA.
func New(rideID id.RideID, driver, passenger id.Handle, now time.Time) (*Thread, error) {
	if rideID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "ride id is required")
	}
	if driver.IsNil() || passenger.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "driver and passenger are required")
	}
	if driver == passenger {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "driver and passenger must differ")
	}
	return &Thread{
		ID:        id.NewThreadID(),
		RideID:    rideID,
		Driver:    driver,
		Passenger: passenger,
		Active:    true,
		CreatedAt: now,
	}, nil
}

func (t *Thread) IsMember(h id.Handle) bool {
	return h != "" && (h == t.Driver || h == t.Passenger)
}

// RequireMember returns CodeNotThreadMember for outsiders.
func (t *Thread) RequireMember(h id.Handle) error {
	if !t.IsMember(h) {
		return dErrors.New(dErrors.CodeNotThreadMember, "caller is not a participant of this thread")
	}
	return nil
}

func (t *Thread) IsDriver(h id.Handle) bool {
	return h == t.Driver
}

func (t *Thread) IsPassenger(h id.Handle) bool {
	return h == t.Passenger
}

// Other returns the counterpart of a member.
func (t *Thread) Other(h id.Handle) id.Handle {
	if h == t.Driver {
		return t.Passenger
	}
	return t.Driver
}

// Participants lists the driver then the passenger.
func (t *Thread) Participants() []id.Handle {
	return []id.Handle{t.Driver, t.Passenger}
}

// RequireActive returns CodeThreadInactive once the thread is closed.
func (t *Thread) RequireActive() error {
	if !t.Active {
		return dErrors.New(dErrors.CodeThreadInactive, "thread is no longer active")
	}
	return nil
}

// Close deactivates the thread and reports whether it was active.
func (t *Thread) Close(now time.Time) bool {
	if !t.Active {
		return false
	}
	t.Active = false
	closedAt := now
	t.ClosedAt = &closedAt
	return true
}

func (t *Thread) Clone() *Thread {
	if t == nil {
		return nil
	}
	c := *t
	if t.ClosedAt != nil {
		closedAt := *t.ClosedAt
		c.ClosedAt = &closedAt
	}
	return &c
}
