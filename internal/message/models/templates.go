package models

import (
	"fmt"
	"slices"

	dErrors "ridelink/pkg/domain-errors"
)

// DriverTemplate is a system message a driver can broadcast into a thread.
type DriverTemplate uint8

const (
	EnRoute DriverTemplate = iota
	ArrivingSoon
	ArrivingNow
	Delayed
	Cancelled
	PaymentReceived
	RideCompleted
)

var driverTemplateContent = [...]string{
	EnRoute:         "I'm on my way to the pickup point",
	ArrivingSoon:    "I'll be there in a couple of minutes",
	ArrivingNow:     "I've arrived at the pickup point",
	Delayed:         "I'm running a little late",
	Cancelled:       "I've had to cancel this ride",
	PaymentReceived: "Payment received, thank you",
	RideCompleted:   "Ride completed, thanks for riding",
}

var driverTemplateNames = [...]string{
	EnRoute:         "en_route",
	ArrivingSoon:    "arriving_soon",
	ArrivingNow:     "arriving_now",
	Delayed:         "delayed",
	Cancelled:       "cancelled",
	PaymentReceived: "payment_received",
	RideCompleted:   "ride_completed",
}

// ParseDriverTemplate returns CodeInvalidTemplate for codes outside the catalogue.
func ParseDriverTemplate(code uint8) (DriverTemplate, error) {
	if int(code) >= len(driverTemplateContent) {
		return 0, dErrors.New(dErrors.CodeInvalidTemplate, fmt.Sprintf("unknown driver template %d", code))
	}
	return DriverTemplate(code), nil
}

func (t DriverTemplate) Content() string { return driverTemplateContent[t] }
func (t DriverTemplate) String() string  { return driverTemplateNames[t] }
func (t DriverTemplate) Code() uint8     { return uint8(t) }

// ETATemplate maps minutes away to the template announced on an ETA update.
func ETATemplate(minutesAway uint32) DriverTemplate {
	switch {
	case minutesAway == 0:
		return ArrivingNow
	case minutesAway <= 2:
		return ArrivingSoon
	default:
		return Delayed
	}
}

// QuickReply is a canned passenger response.
type QuickReply uint8

const (
	OnMyWay QuickReply = iota
	NeedHelp
	CancelRide
	RateDriver
	PaymentSent
)

var quickReplyContent = [...]string{
	OnMyWay:     "I'm on my way",
	NeedHelp:    "I need help",
	CancelRide:  "I need to cancel this ride",
	RateDriver:  "I'll rate my driver",
	PaymentSent: "Payment sent",
}

var quickReplyNames = [...]string{
	OnMyWay:     "on_my_way",
	NeedHelp:    "need_help",
	CancelRide:  "cancel_ride",
	RateDriver:  "rate_driver",
	PaymentSent: "payment_sent",
}

func (q QuickReply) IsValid() bool   { return int(q) < len(quickReplyContent) }
func (q QuickReply) Content() string { return quickReplyContent[q] }
func (q QuickReply) String() string  { return quickReplyNames[q] }
func (q QuickReply) Code() uint8     { return uint8(q) }

// AllQuickReplies lists the catalogue in code order.
func AllQuickReplies() []QuickReply {
	out := make([]QuickReply, len(quickReplyContent))
	for i := range out {
		out[i] = QuickReply(i)
	}
	return out
}

// ReplySet is the set of quick replies a passenger has enabled.
type ReplySet struct {
	codes []QuickReply
}

// NewReplySet keeps valid codes only, deduplicated and ordered.
func NewReplySet(codes ...QuickReply) ReplySet {
	var out []QuickReply
	for _, c := range codes {
		if c.IsValid() && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return ReplySet{codes: out}
}

// DefaultReplySet enables every reply in the catalogue.
func DefaultReplySet() ReplySet {
	return NewReplySet(AllQuickReplies()...)
}

func (s ReplySet) Contains(q QuickReply) bool {
	return slices.Contains(s.codes, q)
}

func (s ReplySet) Codes() []QuickReply {
	return slices.Clone(s.codes)
}

// CatalogueContent resolves the fixed text behind a template or quick-reply
// message. Free-form messages only carry a content reference.
func (m *Message) CatalogueContent() (string, bool) {
	if m.TemplateCode == nil {
		return "", false
	}
	switch m.Kind {
	case KindSupportTemplate:
		t, err := ParseDriverTemplate(*m.TemplateCode)
		if err != nil {
			return "", false
		}
		return t.Content(), true
	case KindQuickReply:
		q := QuickReply(*m.TemplateCode)
		if !q.IsValid() {
			return "", false
		}
		return q.Content(), true
	}
	return "", false
}
