package member

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fedroom/fedroom/internal/application/message"
	"github.com/fedroom/fedroom/internal/domain/room"
	"github.com/fedroom/fedroom/internal/roomlock"
)

// Service is the membership state machine: ordinary invite/join/leave
// transitions, the remote invite-join dance, destination-set computation,
// and system membership notices injected into the room timeline.
type Service struct {
	store      room.Storage
	auth       room.Authorizer
	resolver   room.StateResolver
	federation room.Federation
	notifier   room.Notifier
	locks      *roomlock.Lock
	messages   *message.Service
	serverName string
	logger     zerolog.Logger
}

// NewService creates a membership service. serverName is this homeserver's
// name; it decides whether an inviter is remote.
func NewService(
	store room.Storage,
	auth room.Authorizer,
	resolver room.StateResolver,
	federation room.Federation,
	notifier room.Notifier,
	locks *roomlock.Lock,
	messages *message.Service,
	serverName string,
	logger zerolog.Logger,
) *Service {
	return &Service{
		store:      store,
		auth:       auth,
		resolver:   resolver,
		federation: federation,
		notifier:   notifier,
		locks:      locks,
		messages:   messages,
		serverName: serverName,
		logger:     logger.With().Str("service", "member").Logger(),
	}
}

// ChangeOpts controls a ChangeMembership call.
type ChangeOpts struct {
	// BroadcastNotice injects a system text message describing the change
	// into the room timeline on success.
	BroadcastNotice bool
	// DoAuth authorizes the event before any mutation.
	DoAuth bool
	// LocalOnly skips federation forwarding. Set for events received over
	// federation, which must not bounce back out.
	LocalOnly bool
}

// DancePhase tracks progress through the remote invite-join handshake.
type DancePhase string

const (
	// DancePending: the local decision has not been made yet.
	DancePending DancePhase = "pending"
	// DanceRequested: the join-request was sent to the inviter's server.
	DanceRequested DancePhase = "requested"
	// DanceStateFetched: the inviter's room state snapshot was retrieved.
	// The local membership row is not yet committed.
	DanceStateFetched DancePhase = "state_fetched"
	// DanceCommitted: CompleteRemoteJoin wrote the membership row.
	DanceCommitted DancePhase = "committed"
)

// ChangeResult reports the outcome of a membership change. For an ordinary
// transition SequenceID is the committed mutation's sequence id. For a dance,
// Danced is true, Phase is DanceStateFetched, RemoteState carries the fetched
// snapshot, and no membership row has been committed; the caller completes
// the join via CompleteRemoteJoin.
type ChangeResult struct {
	SequenceID  int64
	Danced      bool
	Phase       DancePhase
	RemoteState map[string]any
}

// ChangeMembership is the sole transition entry point for a (room, user)
// membership state.
func (s *Service) ChangeMembership(ctx context.Context, event *room.Event, opts ChangeOpts) (*ChangeResult, error) {
	membership := event.Membership()

	var result *ChangeResult
	var err error
	if membership == room.MembershipJoin {
		result, err = s.changeJoin(ctx, event, opts)
	} else {
		result, err = s.changeOrdinary(ctx, event, opts)
	}
	if err != nil {
		return nil, err
	}

	if opts.BroadcastNotice {
		if err := s.broadcastNotice(ctx, event.UserID, event.TargetUserID, event.RoomID, membership); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// changeOrdinary handles every non-join transition: reconcile, persist, and
// compute destinations under the lock, forward and notify after release.
func (s *Service) changeOrdinary(ctx context.Context, event *room.Event, opts ChangeOpts) (*ChangeResult, error) {
	sequenceID, err := s.applyLocked(ctx, event, opts.DoAuth)
	if err != nil {
		return nil, err
	}

	if err := s.forward(ctx, event, sequenceID, opts.LocalOnly); err != nil {
		return nil, err
	}
	return &ChangeResult{SequenceID: sequenceID}, nil
}

func (s *Service) applyLocked(ctx context.Context, event *room.Event, doAuth bool) (int64, error) {
	release, err := s.locks.Acquire(ctx, event.RoomID)
	if err != nil {
		return 0, err
	}
	defer release()

	if doAuth {
		if err := s.auth.CheckEvent(ctx, event); err != nil {
			return 0, err
		}
	}
	if err := s.resolver.ApplyEvent(ctx, event); err != nil {
		return 0, fmt.Errorf("apply event: %w", err)
	}
	return s.commitMember(ctx, event)
}

// commitMember persists the membership row and writes the destination set
// onto the event. Must run under the room lock.
func (s *Service) commitMember(ctx context.Context, event *room.Event) (int64, error) {
	membership := event.Membership()
	sequenceID, err := s.store.StoreMember(ctx, &room.Member{
		RoomID:     event.RoomID,
		UserID:     event.TargetUserID,
		Sender:     event.UserID,
		Membership: membership,
		Content:    event.Content,
	})
	if err != nil {
		return 0, fmt.Errorf("store member: %w", err)
	}

	hosts, err := s.store.JoinedHosts(ctx, event.RoomID)
	if err != nil {
		return 0, fmt.Errorf("joined hosts: %w", err)
	}

	// Invites must reach the invited user's server even before it has any
	// membership rows; joins must reach the joining user's own server.
	if membership == room.MembershipInvite || membership == room.MembershipJoin {
		host, err := room.UserDomain(event.TargetUserID)
		if err != nil {
			return 0, err
		}
		hosts = append(hosts, host)
	}
	event.Destinations = dedupe(hosts)

	return sequenceID, nil
}

func (s *Service) forward(ctx context.Context, event *room.Event, sequenceID int64, localOnly bool) error {
	if !localOnly {
		if err := s.federation.Send(ctx, event); err != nil {
			return fmt.Errorf("federation send: %w", err)
		}
	}
	s.notifier.OnNewEvent(event, sequenceID)
	return nil
}

// changeJoin decides, under the room lock, between an ordinary join and the
// remote invite-join dance, then runs the chosen branch.
func (s *Service) changeJoin(ctx context.Context, event *room.Event, opts ChangeOpts) (*ChangeResult, error) {
	release, err := s.locks.Acquire(ctx, event.RoomID)
	if err != nil {
		return nil, err
	}
	locked := true
	unlock := func() {
		release()
		locked = false
	}
	defer func() {
		if locked {
			release()
		}
	}()

	if opts.DoAuth {
		if err := s.auth.CheckEvent(ctx, event); err != nil {
			return nil, err
		}
	}

	prev, err := s.store.Member(ctx, event.RoomID, event.TargetUserID)
	if err != nil {
		return nil, err
	}

	// The dance applies only when we were invited, the inviter lives on
	// another server, and this server has no local record of the room.
	var inviter, inviterHost string
	danced := false
	if prev != nil && prev.Membership == room.MembershipInvite {
		r, err := s.store.Room(ctx, event.RoomID)
		if err != nil {
			return nil, err
		}
		host, err := room.UserDomain(prev.Sender)
		if err != nil {
			return nil, err
		}
		if host != s.serverName && r == nil {
			danced = true
			inviter = prev.Sender
			inviterHost = host
		}
	}

	if !danced {
		s.logger.Debug().Str("room_id", event.RoomID).Str("user_id", event.TargetUserID).Msg("ordinary join")
		if err := s.resolver.ApplyEvent(ctx, event); err != nil {
			return nil, fmt.Errorf("apply event: %w", err)
		}
		sequenceID, err := s.commitMember(ctx, event)
		if err != nil {
			return nil, err
		}
		unlock()

		if err := s.forward(ctx, event, sequenceID, opts.LocalOnly); err != nil {
			return nil, err
		}
		return &ChangeResult{SequenceID: sequenceID}, nil
	}

	s.logger.Debug().Str("room_id", event.RoomID).Str("inviter", inviter).Msg("remote invite-join dance")

	// Make the room id locally known before talking to the inviter. The
	// record is private; the creator is the remote inviter.
	if err := s.store.StoreRoom(ctx, event.RoomID, inviter, false); err != nil {
		return nil, fmt.Errorf("store room for dance: %w", err)
	}
	unlock()

	request := room.NewEvent(room.EventTypeInviteJoin, event.RoomID, event.UserID)
	request.TargetUserID = inviter
	request.Destinations = []string{inviterHost}

	if err := s.federation.Send(ctx, request); err != nil {
		return nil, fmt.Errorf("send join request: %w", err)
	}

	state, err := s.federation.RoomState(ctx, inviterHost, event.RoomID)
	if err != nil {
		return &ChangeResult{Danced: true, Phase: DanceRequested}, fmt.Errorf("fetch remote room state: %w", err)
	}

	// No membership row is committed here; CompleteRemoteJoin finishes the
	// join once the fetched state has been consumed downstream.
	return &ChangeResult{Danced: true, Phase: DanceStateFetched, RemoteState: state}, nil
}

// CompleteRemoteJoin finishes a danced join: it reconciles and commits the
// deferred membership row under the room lock and notifies local
// subscribers. The fetched snapshot's wider state merge belongs to the state
// resolver; this call owns only the joining user's row.
func (s *Service) CompleteRemoteJoin(ctx context.Context, roomID, userID string) (*ChangeResult, error) {
	event := room.NewMemberEvent(roomID, userID, userID, room.MembershipJoin, nil)

	sequenceID, err := s.applyLocked(ctx, event, false)
	if err != nil {
		return nil, err
	}
	s.notifier.OnNewEvent(event, sequenceID)

	return &ChangeResult{SequenceID: sequenceID, Danced: true, Phase: DanceCommitted}, nil
}

// broadcastNotice injects a system-authored text message describing the
// membership change, re-entering the room lock through SendMessage.
func (s *Service) broadcastNotice(ctx context.Context, source, target, roomID string, membership room.Membership) error {
	var body string
	switch membership {
	case room.MembershipInvite:
		body = fmt.Sprintf("%s invited %s to the room.", source, target)
	case room.MembershipJoin:
		body = fmt.Sprintf("%s joined the room.", target)
	case room.MembershipLeave:
		body = fmt.Sprintf("%s left the room.", target)
	default:
		return fmt.Errorf("%w: %q", room.ErrUnknownMembership, membership)
	}

	notice := room.NewMessageEvent(roomID, s.serverUserID(), map[string]any{
		"msgtype": "m.text",
		"body":    body,
	})
	return s.messages.SendMessage(ctx, notice, message.SendOpts{SuppressAuth: true, StampEvent: true})
}

func (s *Service) serverUserID() string {
	return "@_server_:" + s.serverName
}

// Members lists the room's membership rows as member events. The requester
// must be joined. The chunk is token-less and not snapshot-isolated across
// calls.
func (s *Service) Members(ctx context.Context, roomID, requesterID string) (*room.Chunk, error) {
	if err := s.auth.CheckJoined(ctx, roomID, requesterID); err != nil {
		return nil, err
	}

	members, err := s.store.Members(ctx, roomID)
	if err != nil {
		return nil, err
	}
	events := make([]*room.Event, 0, len(members))
	for _, m := range members {
		events = append(events, m.AsEvent())
	}
	return &room.Chunk{Start: "START", End: "END", Chunk: events}, nil
}

// Member returns one membership row, or nil if absent. The requester must be
// joined.
func (s *Service) Member(ctx context.Context, roomID, memberUserID, requesterID string) (*room.Member, error) {
	if err := s.auth.CheckJoined(ctx, roomID, requesterID); err != nil {
		return nil, err
	}
	return s.store.Member(ctx, roomID, memberUserID)
}

func dedupe(hosts []string) []string {
	set := make(map[string]struct{}, len(hosts))
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if _, ok := set[h]; ok {
			continue
		}
		set[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
