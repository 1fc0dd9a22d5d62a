package room

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_storage.go -package=mocks . Storage

import (
	"context"
)

// Storage defines persistence for rooms, members, events, and room path data.
// Reads return (nil, nil) when the record is absent.
type Storage interface {
	// PersistEvent stores an event in the room timeline and returns the
	// store-assigned sequence id.
	PersistEvent(ctx context.Context, event *Event) (int64, error)

	// StoreRoom reserves a room id. Returns ErrRoomIDTaken on collision.
	StoreRoom(ctx context.Context, roomID, creatorUserID string, isPublic bool) error
	Room(ctx context.Context, roomID string) (*Room, error)

	// StoreMember overwrites the membership row for (room, user) and returns
	// the sequence id of the committed mutation.
	StoreMember(ctx context.Context, member *Member) (int64, error)
	Member(ctx context.Context, roomID, userID string) (*Member, error)
	Members(ctx context.Context, roomID string) ([]*Member, error)

	// JoinedHosts returns the distinct homeserver names with at least one
	// joined member in the room.
	JoinedHosts(ctx context.Context, roomID string) ([]string, error)

	StorePathData(ctx context.Context, roomID, path string, content map[string]any) error
	PathData(ctx context.Context, path string) (map[string]any, error)

	Message(ctx context.Context, roomID, senderID, messageID string) (*Event, error)
	Feedback(ctx context.Context, roomID, msgSenderID, messageID, fbSenderID, fbType string) (*Event, error)
	Messages(ctx context.Context, roomID string, page Pagination) ([]*Event, error)
}
