// Package authz provides the default authorization collaborator: membership
// checks answered from storage. Richer permission policy (power levels,
// bans) plugs in behind the same interface.
package authz

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fedroom/fedroom/internal/domain/room"
)

// Service implements room.Authorizer against stored membership rows.
type Service struct {
	store  room.Storage
	logger zerolog.Logger
}

func NewService(store room.Storage, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("service", "authz").Logger(),
	}
}

// CheckJoined fails with ErrForbidden unless userID is a joined member.
func (s *Service) CheckJoined(ctx context.Context, roomID, userID string) error {
	member, err := s.store.Member(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if member == nil || member.Membership != room.MembershipJoin {
		return fmt.Errorf("user %s is not in room %s: %w", userID, roomID, room.ErrForbidden)
	}
	return nil
}

// CheckEvent authorizes an event under current room state. Non-member
// events require a joined sender; member events additionally validate the
// transition table.
func (s *Service) CheckEvent(ctx context.Context, event *room.Event) error {
	if event.Type != room.EventTypeMember {
		return s.CheckJoined(ctx, event.RoomID, event.UserID)
	}

	target := event.Membership()
	if !target.Valid() || target == room.MembershipNone {
		return fmt.Errorf("cannot set membership %q: %w", target, room.ErrForbidden)
	}

	prev := room.MembershipNone
	if member, err := s.store.Member(ctx, event.RoomID, event.TargetUserID); err != nil {
		return err
	} else if member != nil {
		prev = member.Membership
	}
	if !prev.CanTransitionTo(target) {
		return fmt.Errorf("membership %s -> %s not allowed: %w", prev, target, room.ErrForbidden)
	}

	switch target {
	case room.MembershipInvite:
		// Only joined members may invite.
		return s.CheckJoined(ctx, event.RoomID, event.UserID)
	case room.MembershipJoin:
		return s.checkJoinAllowed(ctx, event, prev)
	case room.MembershipLeave:
		if event.UserID == event.TargetUserID {
			return nil
		}
		// Kicks require a joined sender.
		return s.CheckJoined(ctx, event.RoomID, event.UserID)
	}
	return nil
}

func (s *Service) checkJoinAllowed(ctx context.Context, event *room.Event, prev room.Membership) error {
	if event.UserID != event.TargetUserID {
		return fmt.Errorf("users can only join on their own behalf: %w", room.ErrForbidden)
	}
	if prev == room.MembershipInvite {
		return nil
	}
	r, err := s.store.Room(ctx, event.RoomID)
	if err != nil {
		return err
	}
	if r == nil || !r.IsPublic {
		return fmt.Errorf("room is not public and user was not invited: %w", room.ErrForbidden)
	}
	return nil
}
