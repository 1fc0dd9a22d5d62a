package message

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fedroom/fedroom/internal/domain/room"
	"github.com/fedroom/fedroom/internal/roomlock"
)

// Service persists and fans out room messages, feedback, and room path data.
type Service struct {
	store      room.Storage
	auth       room.Authorizer
	federation room.Federation
	notifier   room.Notifier
	locks      *roomlock.Lock
	logger     zerolog.Logger
}

// NewService creates a message service.
func NewService(
	store room.Storage,
	auth room.Authorizer,
	federation room.Federation,
	notifier room.Notifier,
	locks *roomlock.Lock,
	logger zerolog.Logger,
) *Service {
	return &Service{
		store:      store,
		auth:       auth,
		federation: federation,
		notifier:   notifier,
		locks:      locks,
		logger:     logger.With().Str("service", "message").Logger(),
	}
}

// SendOpts controls a SendMessage call.
type SendOpts struct {
	// SuppressAuth skips event authorization. Used for server-injected
	// messages such as membership notices.
	SuppressAuth bool
	// StampEvent overwrites the event's server timestamp before persisting.
	StampEvent bool
	// LocalOnly skips federation forwarding. Set for events received over
	// federation, which must not bounce back out.
	LocalOnly bool
}

// commit is the outcome of a room-locked critical section: the persisted
// event's sequence id, with destinations already written onto the event.
type commit struct {
	sequenceID int64
}

// SendMessage persists a message under the room lock and forwards it after
// release. The lock guards only persist + destination computation; federation
// and local notification run outside it.
func (s *Service) SendMessage(ctx context.Context, event *room.Event, opts SendOpts) error {
	if opts.StampEvent {
		room.Stamp(event)
	}

	c, err := s.commitEvent(ctx, event, !opts.SuppressAuth)
	if err != nil {
		return err
	}
	return s.forward(ctx, event, c, opts.LocalOnly)
}

// SendFeedback persists an acknowledgement event. Same commit discipline as
// SendMessage: forwarding happens strictly after the lock is released.
func (s *Service) SendFeedback(ctx context.Context, event *room.Event, opts SendOpts) error {
	if opts.StampEvent {
		room.Stamp(event)
	}

	c, err := s.commitEvent(ctx, event, !opts.SuppressAuth)
	if err != nil {
		return err
	}
	return s.forward(ctx, event, c, opts.LocalOnly)
}

func (s *Service) commitEvent(ctx context.Context, event *room.Event, doAuth bool) (commit, error) {
	release, err := s.locks.Acquire(ctx, event.RoomID)
	if err != nil {
		return commit{}, err
	}
	defer release()

	if doAuth {
		if err := s.auth.CheckEvent(ctx, event); err != nil {
			return commit{}, err
		}
	}

	sequenceID, err := s.store.PersistEvent(ctx, event)
	if err != nil {
		return commit{}, fmt.Errorf("persist event: %w", err)
	}

	hosts, err := s.store.JoinedHosts(ctx, event.RoomID)
	if err != nil {
		return commit{}, fmt.Errorf("joined hosts: %w", err)
	}
	event.Destinations = hosts

	return commit{sequenceID: sequenceID}, nil
}

func (s *Service) forward(ctx context.Context, event *room.Event, c commit, localOnly bool) error {
	if !localOnly {
		if err := s.federation.Send(ctx, event); err != nil {
			return fmt.Errorf("federation send: %w", err)
		}
	}
	s.notifier.OnNewEvent(event, c.sequenceID)
	return nil
}

// Message returns one message, or nil if absent. The requester must be a
// joined member of the room.
func (s *Service) Message(ctx context.Context, roomID, senderID, messageID, requesterID string) (*room.Event, error) {
	if err := s.auth.CheckJoined(ctx, roomID, requesterID); err != nil {
		return nil, err
	}
	return s.store.Message(ctx, roomID, senderID, messageID)
}

// Feedback returns one feedback event, or nil if absent. The requester must
// be a joined member of the room.
func (s *Service) Feedback(ctx context.Context, roomID, msgSenderID, messageID, fbSenderID, fbType, requesterID string) (*room.Event, error) {
	if err := s.auth.CheckJoined(ctx, roomID, requesterID); err != nil {
		return nil, err
	}
	return s.store.Feedback(ctx, roomID, msgSenderID, messageID, fbSenderID, fbType)
}

// Messages returns a bounded page of the room's message stream.
func (s *Service) Messages(ctx context.Context, requesterID, roomID string, page room.Pagination) (*room.Chunk, error) {
	if err := s.auth.CheckJoined(ctx, roomID, requesterID); err != nil {
		return nil, err
	}

	page = page.Normalized()
	events, err := s.store.Messages(ctx, roomID, page)
	if err != nil {
		return nil, err
	}
	return &room.Chunk{
		Start: fmt.Sprintf("%d", page.Offset),
		End:   fmt.Sprintf("%d", page.Offset+len(events)),
		Chunk: events,
	}, nil
}

// AccessRules is the membership-rule table guarding path-data reads. A rule
// list enumerates the memberships allowed to read; an empty list means no
// restriction. Values are passed per call and never mutated.
type AccessRules struct {
	PublicRules  []room.Membership
	PrivateRules []room.Membership
}

// DefaultAccessRules restricts private rooms to joined members and leaves
// public rooms unrestricted.
func DefaultAccessRules() AccessRules {
	return AccessRules{
		PrivateRules: []room.Membership{room.MembershipJoin},
	}
}

// StoreRoomPathData stores room-scoped key/value state under a path. Writes
// require full event authorization.
func (s *Service) StoreRoomPathData(ctx context.Context, event *room.Event, path string, stampEvent bool) error {
	if err := s.auth.CheckEvent(ctx, event); err != nil {
		return err
	}
	if stampEvent {
		room.Stamp(event)
	}
	return s.store.StorePathData(ctx, event.RoomID, path, event.Content)
}

// RoomPathData reads room-scoped state from a path, enforcing the
// membership-rule table. Topic reads always admit invited and joined members
// of private rooms, regardless of the caller-supplied rules.
func (s *Service) RoomPathData(ctx context.Context, userID, roomID, path, eventType string, rules AccessRules) (map[string]any, error) {
	if eventType == room.EventTypeTopic {
		// Anyone invited or joined can read the topic.
		rules.PrivateRules = []room.Membership{room.MembershipInvite, room.MembershipJoin}
	}

	r, err := s.store.Room(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("room does not exist: %w", room.ErrForbidden)
	}

	member, err := s.store.Member(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	state := room.MembershipNone
	if member != nil {
		state = member.Membership
	}

	if r.IsPublic && len(rules.PublicRules) > 0 {
		if !membershipIn(state, rules.PublicRules) {
			return nil, fmt.Errorf("member does not meet public room rules: %w", room.ErrForbidden)
		}
	} else if !r.IsPublic && len(rules.PrivateRules) > 0 {
		if !membershipIn(state, rules.PrivateRules) {
			return nil, fmt.Errorf("member does not meet private room rules: %w", room.ErrForbidden)
		}
	}

	return s.store.PathData(ctx, path)
}

func membershipIn(state room.Membership, rules []room.Membership) bool {
	for _, m := range rules {
		if state == m {
			return true
		}
	}
	return false
}
