package events

import "time"

// Type names a domain event. Values are stable and used as topic segments.
type Type string

const (
	TypeUserRegistered   Type = "user_registered"
	TypeKYCStatusUpdated Type = "kyc_status_updated"
	TypeMessageSent      Type = "message_sent"
	TypeNewThreadMessage Type = "new_thread_message"
	TypeThreadCreated    Type = "thread_created"
	TypeThreadClosed     Type = "thread_closed"
	TypeReceiptRecorded  Type = "receipt_recorded"
)

// Event is emitted from domain logic after a successful state change.
// Key identifies the entity the event belongs to; sinks that partition
// (Kafka) use it so events for one entity keep their order.
type Event struct {
	Type       Type      `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type UserRegistered struct {
	Handle      string    `json:"handle"`
	ProofRef    string    `json:"proof_ref"`
	DisplayName string    `json:"display_name"`
	Timestamp   time.Time `json:"timestamp"`
}

type KYCStatusUpdated struct {
	Handle    string    `json:"handle"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Timestamp time.Time `json:"timestamp"`
}

type MessageSent struct {
	Sender     string    `json:"sender"`
	Recipient  string    `json:"recipient"`
	ContentRef string    `json:"content_ref"`
	Kind       string    `json:"kind"`
	MessageID  string    `json:"message_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewThreadMessage is emitted once per in-thread send or broadcast.
type NewThreadMessage struct {
	ThreadID  string    `json:"thread_id"`
	RideID    string    `json:"ride_id"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

type ThreadCreated struct {
	ThreadID  string    `json:"thread_id"`
	RideID    string    `json:"ride_id"`
	Driver    string    `json:"driver"`
	Passenger string    `json:"passenger"`
	Timestamp time.Time `json:"timestamp"`
}

type ThreadClosed struct {
	ThreadID  string    `json:"thread_id"`
	RideID    string    `json:"ride_id"`
	ClosedBy  string    `json:"closed_by"`
	Timestamp time.Time `json:"timestamp"`
}

type ReceiptRecorded struct {
	MessageID string    `json:"message_id"`
	Reader    string    `json:"reader"`
	Recipient string    `json:"recipient"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func NewUserRegistered(p UserRegistered) Event {
	return Event{Type: TypeUserRegistered, Key: p.Handle, OccurredAt: p.Timestamp, Payload: p}
}

func NewKYCStatusUpdated(p KYCStatusUpdated) Event {
	return Event{Type: TypeKYCStatusUpdated, Key: p.Handle, OccurredAt: p.Timestamp, Payload: p}
}

// NewMessageSent keys by recipient so push sinks can route to the addressee.
func NewMessageSent(p MessageSent) Event {
	return Event{Type: TypeMessageSent, Key: p.Recipient, OccurredAt: p.Timestamp, Payload: p}
}

func NewNewThreadMessage(p NewThreadMessage) Event {
	return Event{Type: TypeNewThreadMessage, Key: p.ThreadID, OccurredAt: p.Timestamp, Payload: p}
}

func NewThreadCreated(p ThreadCreated) Event {
	return Event{Type: TypeThreadCreated, Key: p.ThreadID, OccurredAt: p.Timestamp, Payload: p}
}

func NewThreadClosed(p ThreadClosed) Event {
	return Event{Type: TypeThreadClosed, Key: p.ThreadID, OccurredAt: p.Timestamp, Payload: p}
}

func NewReceiptRecorded(p ReceiptRecorded) Event {
	return Event{Type: TypeReceiptRecorded, Key: p.MessageID, OccurredAt: p.Timestamp, Payload: p}
}
