// Package domain provides type-safe identifiers shared by the messaging modules.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "ridelink/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a MessageID where a ThreadID is expected.
type (
	ThreadID  uuid.UUID
	MessageID uuid.UUID
	ReceiptID uuid.UUID
)

// Handle is the unique, human-chosen identity key of a registry member.
type Handle string

// RideID references a ride owned by the dispatch system; opaque to messaging.
type RideID string

// MaxHandleLength bounds handles accepted at registration.
const MaxHandleLength = 64

func NewThreadID() ThreadID   { return ThreadID(uuid.New()) }
func NewMessageID() MessageID { return MessageID(uuid.New()) }
func NewReceiptID() ReceiptID { return ReceiptID(uuid.New()) }

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseThreadID(s string) (ThreadID, error) {
	id, err := parseUUID(s, "thread ID")
	return ThreadID(id), err
}

func ParseMessageID(s string) (MessageID, error) {
	id, err := parseUUID(s, "message ID")
	return MessageID(id), err
}

func ParseReceiptID(s string) (ReceiptID, error) {
	id, err := parseUUID(s, "receipt ID")
	return ReceiptID(id), err
}

// ParseHandle trims surrounding whitespace and enforces the length bound.
func ParseHandle(s string) (Handle, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "handle cannot be empty")
	}
	if len(s) > MaxHandleLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "handle exceeds maximum length")
	}
	return Handle(s), nil
}

func ParseRideID(s string) (RideID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "ride ID cannot be empty")
	}
	return RideID(s), nil
}

func (id ThreadID) String() string  { return uuid.UUID(id).String() }
func (id MessageID) String() string { return uuid.UUID(id).String() }
func (id ReceiptID) String() string { return uuid.UUID(id).String() }
func (h Handle) String() string     { return string(h) }
func (r RideID) String() string     { return string(r) }

func (id ThreadID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id MessageID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ReceiptID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (h Handle) IsNil() bool     { return h == "" }

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return id, nil
}
