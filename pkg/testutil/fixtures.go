package testutil

import (
	"time"

	"github.com/google/uuid"

	identitymodels "ridelink/internal/identity/models"
	msgmodels "ridelink/internal/message/models"
	threadmodels "ridelink/internal/thread/models"
	id "ridelink/pkg/domain"
)

// Fixed is the reference timestamp used by builders unless overridden.
var Fixed = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

// TestIDs provides convenient pre-generated IDs for tests.
// Use these for deterministic test data.
var TestIDs = struct {
	Driver     id.Handle
	Passenger  id.Handle
	Stranger   id.Handle
	Ride1      id.RideID
	Ride2      id.RideID
	ThreadID1  id.ThreadID
	MessageID1 id.MessageID
}{
	Driver:     "driver",
	Passenger:  "rider",
	Stranger:   "stranger",
	Ride1:      "ride-1",
	Ride2:      "ride-2",
	ThreadID1:  id.ThreadID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	MessageID1: id.MessageID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
}

// IdentityBuilder provides a fluent interface for building identity records.
type IdentityBuilder struct {
	rec *identitymodels.Record
}

// NewIdentityBuilder starts from a pending record for handle.
func NewIdentityBuilder(handle id.Handle) *IdentityBuilder {
	return &IdentityBuilder{
		rec: &identitymodels.Record{
			Handle:      handle,
			DisplayName: string(handle),
			Status:      identitymodels.StatusPending,
			Proofs:      []string{},
			CreatedAt:   Fixed,
			UpdatedAt:   Fixed,
		},
	}
}

func (b *IdentityBuilder) Approved() *IdentityBuilder {
	b.rec.Status = identitymodels.StatusApproved
	return b
}

func (b *IdentityBuilder) WithStatus(status identitymodels.Status) *IdentityBuilder {
	b.rec.Status = status
	return b
}

func (b *IdentityBuilder) WithProofs(proofs ...string) *IdentityBuilder {
	b.rec.Proofs = proofs
	return b
}

func (b *IdentityBuilder) WithReputation(r uint64) *IdentityBuilder {
	b.rec.Reputation = r
	return b
}

func (b *IdentityBuilder) Build() *identitymodels.Record {
	return b.rec
}

// ThreadBuilder builds an active thread between TestIDs.Driver and TestIDs.Passenger.
type ThreadBuilder struct {
	thread *threadmodels.Thread
}

func NewThreadBuilder() *ThreadBuilder {
	return &ThreadBuilder{
		thread: &threadmodels.Thread{
			ID:        id.NewThreadID(),
			RideID:    TestIDs.Ride1,
			Driver:    TestIDs.Driver,
			Passenger: TestIDs.Passenger,
			Active:    true,
			CreatedAt: Fixed,
		},
	}
}

func (b *ThreadBuilder) WithID(threadID id.ThreadID) *ThreadBuilder {
	b.thread.ID = threadID
	return b
}

func (b *ThreadBuilder) WithRide(rideID id.RideID) *ThreadBuilder {
	b.thread.RideID = rideID
	return b
}

func (b *ThreadBuilder) WithParticipants(driver, passenger id.Handle) *ThreadBuilder {
	b.thread.Driver = driver
	b.thread.Passenger = passenger
	return b
}

func (b *ThreadBuilder) Closed(at time.Time) *ThreadBuilder {
	b.thread.Active = false
	b.thread.ClosedAt = &at
	return b
}

func (b *ThreadBuilder) Build() *threadmodels.Thread {
	return b.thread
}

// MessageBuilder builds a direct ride message from TestIDs.Driver to TestIDs.Passenger.
type MessageBuilder struct {
	msg *msgmodels.Message
}

func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{
		msg: &msgmodels.Message{
			ID:         id.NewMessageID(),
			Sender:     TestIDs.Driver,
			Recipient:  TestIDs.Passenger,
			Kind:       msgmodels.KindRide,
			ContentRef: "ref",
			CreatedAt:  Fixed,
		},
	}
}

func (b *MessageBuilder) WithID(messageID id.MessageID) *MessageBuilder {
	b.msg.ID = messageID
	return b
}

func (b *MessageBuilder) InThread(threadID id.ThreadID) *MessageBuilder {
	b.msg.ThreadID = threadID
	return b
}

func (b *MessageBuilder) From(sender id.Handle) *MessageBuilder {
	b.msg.Sender = sender
	return b
}

func (b *MessageBuilder) To(recipient id.Handle) *MessageBuilder {
	b.msg.Recipient = recipient
	return b
}

func (b *MessageBuilder) WithKind(kind msgmodels.Kind) *MessageBuilder {
	b.msg.Kind = kind
	return b
}

func (b *MessageBuilder) WithTemplate(code uint8) *MessageBuilder {
	b.msg.TemplateCode = &code
	b.msg.IsTemplate = true
	return b
}

func (b *MessageBuilder) At(t time.Time) *MessageBuilder {
	b.msg.CreatedAt = t
	return b
}

func (b *MessageBuilder) Build() *msgmodels.Message {
	return b.msg
}
