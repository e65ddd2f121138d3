package models

import (
	"fmt"
	"time"

	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
)

// Kind classifies a message.
type Kind string

const (
	KindRide            Kind = "ride"
	KindPayment         Kind = "payment"
	KindKYC             Kind = "kyc"
	KindSupportTemplate Kind = "support_template"
	KindQuickReply      Kind = "quick_reply"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindRide, KindPayment, KindKYC, KindSupportTemplate, KindQuickReply:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

func ParseKind(raw string) (Kind, error) {
	k := Kind(raw)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid message kind %q", raw))
	}
	return k, nil
}

// Message is immutable once created. ThreadID is nil for direct messages.
type Message struct {
	ID           id.MessageID
	ThreadID     id.ThreadID
	Sender       id.Handle
	Recipient    id.Handle
	Kind         Kind
	ContentRef   string
	TemplateCode *uint8
	IsTemplate   bool
	CreatedAt    time.Time
}

func (m *Message) IsDirect() bool {
	return m.ThreadID.IsNil()
}

// Age is the time elapsed since creation at now.
func (m *Message) Age(now time.Time) time.Duration {
	return now.Sub(m.CreatedAt)
}

// ExpiredAt reports whether the message is strictly older than threshold.
func (m *Message) ExpiredAt(now time.Time, threshold time.Duration) bool {
	return m.Age(now) > threshold
}

func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	c := *m
	if m.TemplateCode != nil {
		code := *m.TemplateCode
		c.TemplateCode = &code
	}
	return &c
}
