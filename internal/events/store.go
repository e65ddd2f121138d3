package events

import "context"

// Sink receives published events. Implementations must be safe for concurrent use.
type Sink interface {
	Name() string
	Append(ctx context.Context, event Event) error
}
