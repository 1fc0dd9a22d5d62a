package room

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_collaborators.go -package=mocks . Authorizer,StateResolver,Federation,Notifier

import (
	"context"
)

// Authorizer decides whether operations are permitted under current room
// state. Policy internals are external to the engine.
type Authorizer interface {
	// CheckJoined fails with ErrForbidden unless the user is currently a
	// joined member of the room.
	CheckJoined(ctx context.Context, roomID, userID string) error
	// CheckEvent fails with ErrForbidden if the event is not permitted.
	CheckEvent(ctx context.Context, event *Event) error
}

// StateResolver merges an event into authoritative room state per the room's
// conflict-resolution policy.
type StateResolver interface {
	ApplyEvent(ctx context.Context, event *Event) error
}

// Federation forwards events to remote homeservers and fetches room state
// during the invite-join handshake. Delivery is best-effort; retry and
// backoff belong to the transport.
type Federation interface {
	// Send forwards the event to every host in event.Destinations.
	Send(ctx context.Context, event *Event) error
	// RoomState fetches a snapshot of the room's current state from host.
	RoomState(ctx context.Context, host, roomID string) (map[string]any, error)
}

// Notifier fans a committed event out to local real-time subscribers.
// Fire-and-forget from the engine's perspective.
type Notifier interface {
	OnNewEvent(event *Event, sequenceID int64)
}
