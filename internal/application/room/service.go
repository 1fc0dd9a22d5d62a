package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fedroom/fedroom/internal/application/member"
	domain "github.com/fedroom/fedroom/internal/domain/room"
)

// maxAllocAttempts bounds generated room-id allocation.
const maxAllocAttempts = 5

// Service allocates rooms and bootstraps the creator's membership.
type Service struct {
	store      domain.Storage
	members    *member.Service
	serverName string
	newRoomID  func() string
	logger     zerolog.Logger
}

// NewService creates a room creation service.
func NewService(store domain.Storage, members *member.Service, serverName string, logger zerolog.Logger) *Service {
	return &Service{
		store:      store,
		members:    members,
		serverName: serverName,
		newRoomID:  func() string { return domain.NewRoomID(serverName) },
		logger:     logger.With().Str("service", "room").Logger(),
	}
}

// Config holds room creation options.
type Config struct {
	Visibility string `json:"visibility"`
}

// Create reserves a room and drives the creator's join through the
// membership state machine. When roomID is empty a generated id is allocated
// with a bounded retry on collision; an explicit roomID is attempted exactly
// once and a collision propagates as-is. Returns the final room id.
func (s *Service) Create(ctx context.Context, userID, roomID string, cfg Config) (string, error) {
	isPublic := cfg.Visibility == "public"

	if roomID != "" {
		if err := s.store.StoreRoom(ctx, roomID, userID, isPublic); err != nil {
			return "", err
		}
	} else {
		allocated, err := retryAlloc(maxAllocAttempts, func() (string, error) {
			id := s.newRoomID()
			if err := s.store.StoreRoom(ctx, id, userID, isPublic); err != nil {
				return "", err
			}
			return id, nil
		})
		if err != nil {
			return "", err
		}
		roomID = allocated
	}

	joinEvent := domain.NewMemberEvent(roomID, userID, userID, domain.MembershipJoin, nil)
	if _, err := s.members.ChangeMembership(ctx, joinEvent, member.ChangeOpts{
		BroadcastNotice: true,
		DoAuth:          false, // the creator's join is implicitly authorized
	}); err != nil {
		return "", fmt.Errorf("creator join: %w", err)
	}

	s.logger.Info().Str("room_id", roomID).Str("creator", userID).Bool("public", isPublic).Msg("room created")
	return roomID, nil
}

// retryAlloc runs alloc up to attempts times, retrying only on id
// collisions. Exhausting the budget yields ErrRoomIDExhausted; any other
// failure propagates immediately.
func retryAlloc(attempts int, alloc func() (string, error)) (string, error) {
	for i := 0; i < attempts; i++ {
		id, err := alloc()
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, domain.ErrRoomIDTaken) {
			return "", err
		}
	}
	return "", domain.ErrRoomIDExhausted
}
