package models

import (
	"fmt"
	"time"

	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
)

// Status is the delivery state a reader reports for a message.
type Status string

const (
	StatusUnread    Status = "unread"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusUnread, StatusDelivered, StatusRead:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// ParseStatus returns CodeInvalidStatus outside the enumeration.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidStatus, fmt.Sprintf("invalid delivery status %q", raw))
	}
	return s, nil
}

// Receipt records one status report. Receipts are append-only; the most
// recent one per reader is the current status.
type Receipt struct {
	ID         id.ReceiptID
	MessageID  id.MessageID
	Reader     id.Handle
	Recipient  id.Handle // original sender of the message
	Status     Status
	RecordedAt time.Time
}
