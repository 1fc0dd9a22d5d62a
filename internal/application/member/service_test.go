package member

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fedroom/fedroom/internal/application/message"
	"github.com/fedroom/fedroom/internal/domain/room"
	"github.com/fedroom/fedroom/internal/domain/room/mocks"
	"github.com/fedroom/fedroom/internal/roomlock"
)

const serverName = "red"

type fixture struct {
	store      *mocks.MockStorage
	auth       *mocks.MockAuthorizer
	resolver   *mocks.MockStateResolver
	federation *mocks.MockFederation
	notifier   *mocks.MockNotifier
	locks      *roomlock.Lock
	service    *Service
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		store:      mocks.NewMockStorage(ctrl),
		auth:       mocks.NewMockAuthorizer(ctrl),
		resolver:   mocks.NewMockStateResolver(ctrl),
		federation: mocks.NewMockFederation(ctrl),
		notifier:   mocks.NewMockNotifier(ctrl),
		locks:      roomlock.New(),
	}
	messages := message.NewService(f.store, f.auth, f.federation, f.notifier, f.locks, zerolog.Nop())
	f.service = NewService(f.store, f.auth, f.resolver, f.federation, f.notifier, f.locks, messages, serverName, zerolog.Nop())
	return f
}

func TestService_ChangeMembership_Invite(t *testing.T) {
	ctx := context.Background()

	t.Run("destinations include the invited user's server", func(t *testing.T) {
		f := newFixture(t)
		event := room.NewMemberEvent("!abc:red", "@alice:red", "@bob:blue", room.MembershipInvite, nil)

		f.auth.EXPECT().CheckEvent(ctx, event).Return(nil)
		f.resolver.EXPECT().ApplyEvent(ctx, event).Return(nil)
		f.store.EXPECT().
			StoreMember(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, m *room.Member) (int64, error) {
				assert.Equal(t, "!abc:red", m.RoomID)
				assert.Equal(t, "@bob:blue", m.UserID)
				assert.Equal(t, "@alice:red", m.Sender)
				assert.Equal(t, room.MembershipInvite, m.Membership)
				return 4, nil
			})
		f.store.EXPECT().JoinedHosts(ctx, "!abc:red").Return([]string{"red"}, nil)
		f.federation.EXPECT().Send(ctx, event).DoAndReturn(func(context.Context, *room.Event) error {
			assert.False(t, f.locks.Held("!abc:red"), "forwarding must run outside the room lock")
			return nil
		})
		f.notifier.EXPECT().OnNewEvent(event, int64(4))

		result, err := f.service.ChangeMembership(ctx, event, ChangeOpts{DoAuth: true})
		require.NoError(t, err)
		assert.Equal(t, int64(4), result.SequenceID)
		assert.False(t, result.Danced)
		assert.ElementsMatch(t, []string{"red", "blue"}, event.Destinations)
	})

	t.Run("destinations are deduplicated", func(t *testing.T) {
		f := newFixture(t)
		event := room.NewMemberEvent("!abc:red", "@alice:red", "@bob:red", room.MembershipInvite, nil)

		f.resolver.EXPECT().ApplyEvent(ctx, event).Return(nil)
		f.store.EXPECT().StoreMember(ctx, gomock.Any()).Return(int64(4), nil)
		f.store.EXPECT().JoinedHosts(ctx, "!abc:red").Return([]string{"red"}, nil)
		f.federation.EXPECT().Send(ctx, event).Return(nil)
		f.notifier.EXPECT().OnNewEvent(event, int64(4))

		_, err := f.service.ChangeMembership(ctx, event, ChangeOpts{})
		require.NoError(t, err)
		assert.Equal(t, []string{"red"}, event.Destinations)
	})

	t.Run("local-only change is not forwarded", func(t *testing.T) {
		f := newFixture(t)
		event := room.NewMemberEvent("!abc:red", "@alice:blue", "@bob:blue", room.MembershipInvite, nil)

		f.resolver.EXPECT().ApplyEvent(ctx, event).Return(nil)
		f.store.EXPECT().StoreMember(ctx, gomock.Any()).Return(int64(4), nil)
		f.store.EXPECT().JoinedHosts(ctx, "!abc:red").Return([]string{"red"}, nil)
		f.notifier.EXPECT().OnNewEvent(event, int64(4))
		// No federation.Send expectation: inbound events must not bounce out.

		_, err := f.service.ChangeMembership(ctx, event, ChangeOpts{LocalOnly: true})
		require.NoError(t, err)
	})

	t.Run("rejected invite commits nothing", func(t *testing.T) {
		f := newFixture(t)
		event := room.NewMemberEvent("!abc:red", "@mallory:red", "@bob:blue", room.MembershipInvite, nil)

		f.auth.EXPECT().CheckEvent(ctx, event).Return(room.ErrForbidden)

		_, err := f.service.ChangeMembership(ctx, event, ChangeOpts{DoAuth: true})
		require.ErrorIs(t, err, room.ErrForbidden)
	})
}

func TestService_ChangeMembership_Leave(t *testing.T) {
	ctx := context.Background()

	t.Run("destinations omit the departing user's server", func(t *testing.T) {
		f := newFixture(t)
		event := room.NewMemberEvent("!abc:red", "@bob:blue", "@bob:blue", room.MembershipLeave, nil)

		f.resolver.EXPECT().ApplyEvent(ctx, event).Return(nil)
		f.store.EXPECT().StoreMember(ctx, gomock.Any()).Return(int64(5), nil)
		// bob's row already flipped; blue no longer has joined members.
		f.store.EXPECT().JoinedHosts(ctx, "!abc:red").Return([]string{"red"}, nil)
		f.federation.EXPECT().Send(ctx, event).Return(nil)
		f.notifier.EXPECT().OnNewEvent(event, int64(5))

		_, err := f.service.ChangeMembership(ctx, event, ChangeOpts{})
		require.NoError(t, err)
		assert.Equal(t, []string{"red"}, event.Destinations)
	})
}

func TestService_ChangeMembership_Join(t *testing.T) {
	ctx := context.Background()

	t.Run("ordinary join when the room is locally known", func(t *testing.T) {
		f := newFixture(t)
		event := room.NewMemberEvent("!abc:red", "@bob:red", "@bob:red", room.MembershipJoin, nil)

		f.auth.EXPECT().CheckEvent(ctx, event).Return(nil)
		f.store.EXPECT().Member(ctx, "!abc:red", "@bob:red").Return(&room.Member{
			RoomID:     "!abc:red",
			UserID:     "@bob:red",
			Sender:     "@alice:red",
			Membership: room.MembershipInvite,
		}, nil)
		f.store.EXPECT().Room(ctx, "!abc:red").Return(&room.Room{ID: "!abc:red"}, nil)
		f.resolver.EXPECT().ApplyEvent(ctx, event).Return(nil)
		f.store.EXPECT().StoreMember(ctx, gomock.Any()).Return(int64(6), nil)
		f.store.EXPECT().JoinedHosts(ctx, "!abc:red").Return([]string{"red"}, nil)
		f.federation.EXPECT().Send(ctx, event).DoAndReturn(func(context.Context, *room.Event) error {
			assert.False(t, f.locks.Held("!abc:red"), "forwarding must run outside the room lock")
			return nil
		})
		f.notifier.EXPECT().OnNewEvent(event, int64(6))

		result, err := f.service.ChangeMembership(ctx, event, ChangeOpts{DoAuth: true})
		require.NoError(t, err)
		assert.False(t, result.Danced)
		assert.Equal(t, int64(6), result.SequenceID)
	})

	t.Run("ordinary join when the inviter is local", func(t *testing.T) {
		f := newFixture(t)
		event := room.NewMemberEvent("!abc:red", "@bob:red", "@bob:red", room.MembershipJoin, nil)

		f.store.EXPECT().Member(ctx, "!abc:red", "@bob:red").Return(&room.Member{
			Sender:     "@alice:red",
			Membership: room.MembershipInvite,
		}, nil)
		// Local inviter means no dance even without a room record.
		f.store.EXPECT().Room(ctx, "!abc:red").Return(nil, nil)
		f.resolver.EXPECT().ApplyEvent(ctx, event).Return(nil)
		f.store.EXPECT().StoreMember(ctx, gomock.Any()).Return(int64(6), nil)
		f.store.EXPECT().JoinedHosts(ctx, "!abc:red").Return([]string{"red"}, nil)
		f.federation.EXPECT().Send(ctx, event).Return(nil)
		f.notifier.EXPECT().OnNewEvent(event, int64(6))

		result, err := f.service.ChangeMembership(ctx, event, ChangeOpts{})
		require.NoError(t, err)
		assert.False(t, result.Danced)
	})

	t.Run("remote invite triggers the dance", func(t *testing.T) {
		f := newFixture(t)
		event := room.NewMemberEvent("!xyz:blue", "@bob:red", "@bob:red", room.MembershipJoin, nil)
		snapshot := map[string]any{"creator": "@alice:blue"}

		f.store.EXPECT().Member(ctx, "!xyz:blue", "@bob:red").Return(&room.Member{
			Sender:     "@alice:blue",
			Membership: room.MembershipInvite,
		}, nil)
		f.store.EXPECT().Room(ctx, "!xyz:blue").Return(nil, nil)
		f.store.EXPECT().StoreRoom(ctx, "!xyz:blue", "@alice:blue", false).Return(nil)
		f.federation.EXPECT().
			Send(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, request *room.Event) error {
				assert.False(t, f.locks.Held("!xyz:blue"), "join request must be sent outside the room lock")
				assert.Equal(t, room.EventTypeInviteJoin, request.Type)
				assert.Equal(t, "@alice:blue", request.TargetUserID)
				assert.Equal(t, []string{"blue"}, request.Destinations, "join request goes to the inviter's server only")
				return nil
			})
		f.federation.EXPECT().RoomState(ctx, "blue", "!xyz:blue").Return(snapshot, nil)

		result, err := f.service.ChangeMembership(ctx, event, ChangeOpts{})
		require.NoError(t, err)
		assert.True(t, result.Danced)
		assert.Equal(t, DanceStateFetched, result.Phase)
		assert.Equal(t, snapshot, result.RemoteState)
		assert.Zero(t, result.SequenceID, "dance defers the membership commit")
	})

	t.Run("dance reports requested phase when the state fetch fails", func(t *testing.T) {
		f := newFixture(t)
		event := room.NewMemberEvent("!xyz:blue", "@bob:red", "@bob:red", room.MembershipJoin, nil)

		f.store.EXPECT().Member(ctx, "!xyz:blue", "@bob:red").Return(&room.Member{
			Sender:     "@alice:blue",
			Membership: room.MembershipInvite,
		}, nil)
		f.store.EXPECT().Room(ctx, "!xyz:blue").Return(nil, nil)
		f.store.EXPECT().StoreRoom(ctx, "!xyz:blue", "@alice:blue", false).Return(nil)
		f.federation.EXPECT().Send(ctx, gomock.Any()).Return(nil)
		f.federation.EXPECT().RoomState(ctx, "blue", "!xyz:blue").Return(nil, errors.New("blue unreachable"))

		_, err := f.service.ChangeMembership(ctx, event, ChangeOpts{})
		require.Error(t, err)
	})

	t.Run("no dance without a prior invite", func(t *testing.T) {
		f := newFixture(t)
		event := room.NewMemberEvent("!abc:red", "@bob:red", "@bob:red", room.MembershipJoin, nil)

		f.store.EXPECT().Member(ctx, "!abc:red", "@bob:red").Return(nil, nil)
		f.resolver.EXPECT().ApplyEvent(ctx, event).Return(nil)
		f.store.EXPECT().StoreMember(ctx, gomock.Any()).Return(int64(2), nil)
		f.store.EXPECT().JoinedHosts(ctx, "!abc:red").Return([]string{"red"}, nil)
		f.federation.EXPECT().Send(ctx, event).Return(nil)
		f.notifier.EXPECT().OnNewEvent(event, int64(2))

		result, err := f.service.ChangeMembership(ctx, event, ChangeOpts{})
		require.NoError(t, err)
		assert.False(t, result.Danced)
	})
}

func TestService_CompleteRemoteJoin(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t)

	f.resolver.EXPECT().ApplyEvent(ctx, gomock.Any()).Return(nil)
	f.store.EXPECT().
		StoreMember(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, m *room.Member) (int64, error) {
			assert.Equal(t, "!xyz:blue", m.RoomID)
			assert.Equal(t, "@bob:red", m.UserID)
			assert.Equal(t, room.MembershipJoin, m.Membership)
			return 11, nil
		})
	f.store.EXPECT().JoinedHosts(ctx, "!xyz:blue").Return([]string{"red", "blue"}, nil)
	f.notifier.EXPECT().OnNewEvent(gomock.Any(), int64(11))

	result, err := f.service.CompleteRemoteJoin(ctx, "!xyz:blue", "@bob:red")
	require.NoError(t, err)
	assert.True(t, result.Danced)
	assert.Equal(t, DanceCommitted, result.Phase)
	assert.Equal(t, int64(11), result.SequenceID)
}

func TestService_BroadcastNotice(t *testing.T) {
	ctx := context.Background()

	t.Run("join notice", func(t *testing.T) {
		f := newFixture(t)
		event := room.NewMemberEvent("!abc:red", "@bob:red", "@bob:red", room.MembershipJoin, nil)

		f.store.EXPECT().Member(ctx, "!abc:red", "@bob:red").Return(nil, nil)
		f.resolver.EXPECT().ApplyEvent(ctx, event).Return(nil)
		f.store.EXPECT().StoreMember(ctx, gomock.Any()).Return(int64(3), nil)
		f.store.EXPECT().JoinedHosts(ctx, "!abc:red").Return([]string{"red"}, nil)
		f.federation.EXPECT().Send(ctx, event).Return(nil)
		f.notifier.EXPECT().OnNewEvent(event, int64(3))

		f.store.EXPECT().
			PersistEvent(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *room.Event) (int64, error) {
				assert.Equal(t, room.EventTypeMessage, e.Type)
				assert.Equal(t, "@_server_:red", e.UserID)
				assert.Equal(t, "@bob:red joined the room.", e.Content["body"])
				return 99, nil
			})
		f.store.EXPECT().JoinedHosts(ctx, "!abc:red").Return([]string{"red"}, nil)
		f.federation.EXPECT().Send(ctx, gomock.Any()).Return(nil)
		f.notifier.EXPECT().OnNewEvent(gomock.Any(), int64(99))

		_, err := f.service.ChangeMembership(ctx, event, ChangeOpts{BroadcastNotice: true})
		require.NoError(t, err)
	})

	t.Run("invite notice names source and target", func(t *testing.T) {
		f := newFixture(t)
		event := room.NewMemberEvent("!abc:red", "@alice:red", "@bob:blue", room.MembershipInvite, nil)

		f.resolver.EXPECT().ApplyEvent(ctx, event).Return(nil)
		f.store.EXPECT().StoreMember(ctx, gomock.Any()).Return(int64(3), nil)
		f.store.EXPECT().JoinedHosts(ctx, "!abc:red").Return([]string{"red"}, nil)
		f.federation.EXPECT().Send(ctx, event).Return(nil)
		f.notifier.EXPECT().OnNewEvent(event, int64(3))

		f.store.EXPECT().
			PersistEvent(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *room.Event) (int64, error) {
				assert.Equal(t, "@alice:red invited @bob:blue to the room.", e.Content["body"])
				return 99, nil
			})
		f.store.EXPECT().JoinedHosts(ctx, "!abc:red").Return([]string{"red", "blue"}, nil)
		f.federation.EXPECT().Send(ctx, gomock.Any()).Return(nil)
		f.notifier.EXPECT().OnNewEvent(gomock.Any(), int64(99))

		_, err := f.service.ChangeMembership(ctx, event, ChangeOpts{BroadcastNotice: true})
		require.NoError(t, err)
	})

	t.Run("unknown membership commits but sends no notice", func(t *testing.T) {
		f := newFixture(t)
		event := room.NewMemberEvent("!abc:red", "@alice:red", "@bob:red", "banana", nil)

		f.resolver.EXPECT().ApplyEvent(ctx, event).Return(nil)
		f.store.EXPECT().StoreMember(ctx, gomock.Any()).Return(int64(3), nil)
		f.store.EXPECT().JoinedHosts(ctx, "!abc:red").Return([]string{"red"}, nil)
		f.federation.EXPECT().Send(ctx, event).Return(nil)
		f.notifier.EXPECT().OnNewEvent(event, int64(3))
		// No PersistEvent expectation: the notice must not be written.

		_, err := f.service.ChangeMembership(ctx, event, ChangeOpts{BroadcastNotice: true})
		require.ErrorIs(t, err, room.ErrUnknownMembership)
	})
}

func TestService_Members(t *testing.T) {
	ctx := context.Background()

	t.Run("requires joined requester", func(t *testing.T) {
		f := newFixture(t)
		f.auth.EXPECT().CheckJoined(ctx, "!abc:red", "@mallory:red").Return(room.ErrForbidden)

		_, err := f.service.Members(ctx, "!abc:red", "@mallory:red")
		require.ErrorIs(t, err, room.ErrForbidden)
	})

	t.Run("returns membership rows as events", func(t *testing.T) {
		f := newFixture(t)
		f.auth.EXPECT().CheckJoined(ctx, "!abc:red", "@alice:red").Return(nil)
		f.store.EXPECT().Members(ctx, "!abc:red").Return([]*room.Member{
			{RoomID: "!abc:red", UserID: "@alice:red", Sender: "@alice:red", Membership: room.MembershipJoin},
			{RoomID: "!abc:red", UserID: "@bob:blue", Sender: "@alice:red", Membership: room.MembershipInvite},
		}, nil)

		chunk, err := f.service.Members(ctx, "!abc:red", "@alice:red")
		require.NoError(t, err)
		assert.Equal(t, "START", chunk.Start)
		assert.Equal(t, "END", chunk.End)
		require.Len(t, chunk.Chunk, 2)
		assert.Equal(t, "join", chunk.Chunk[0].Content["membership"])
		assert.Equal(t, "invite", chunk.Chunk[1].Content["membership"])
	})
}

func TestService_Member(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	want := &room.Member{RoomID: "!abc:red", UserID: "@bob:blue", Membership: room.MembershipInvite}
	f.auth.EXPECT().CheckJoined(ctx, "!abc:red", "@alice:red").Return(nil)
	f.store.EXPECT().Member(ctx, "!abc:red", "@bob:blue").Return(want, nil)

	got, err := f.service.Member(ctx, "!abc:red", "@bob:blue", "@alice:red")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
