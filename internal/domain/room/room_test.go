package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembership_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    Membership
		to      Membership
		allowed bool
	}{
		{"none to invite", MembershipNone, MembershipInvite, true},
		{"none to join", MembershipNone, MembershipJoin, true},
		{"none to leave", MembershipNone, MembershipLeave, true},
		{"invite to join", MembershipInvite, MembershipJoin, true},
		{"invite to leave", MembershipInvite, MembershipLeave, true},
		{"invite to invite", MembershipInvite, MembershipInvite, false},
		{"join to leave", MembershipJoin, MembershipLeave, true},
		{"join to join", MembershipJoin, MembershipJoin, false},
		{"join to invite", MembershipJoin, MembershipInvite, false},
		{"leave is terminal for invite", MembershipLeave, MembershipInvite, false},
		{"leave is terminal for join", MembershipLeave, MembershipJoin, false},
		{"leave to leave", MembershipLeave, MembershipLeave, false},
		{"none is never a target", MembershipJoin, MembershipNone, false},
		{"unknown source", Membership("banana"), MembershipJoin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestMembership_Valid(t *testing.T) {
	assert.True(t, MembershipNone.Valid())
	assert.True(t, MembershipInvite.Valid())
	assert.True(t, MembershipJoin.Valid())
	assert.True(t, MembershipLeave.Valid())
	assert.False(t, Membership("banana").Valid())
	assert.False(t, Membership("").Valid())
}

func TestMember_AsEvent(t *testing.T) {
	t.Run("fills membership from row", func(t *testing.T) {
		m := &Member{
			RoomID:     "!abc:red",
			UserID:     "@bob:red",
			Sender:     "@alice:red",
			Membership: MembershipInvite,
		}
		ev := m.AsEvent()

		assert.Equal(t, EventTypeMember, ev.Type)
		assert.Equal(t, "!abc:red", ev.RoomID)
		assert.Equal(t, "@alice:red", ev.UserID)
		assert.Equal(t, "@bob:red", ev.TargetUserID)
		assert.Equal(t, "invite", ev.Content["membership"])
	})

	t.Run("keeps stored content membership", func(t *testing.T) {
		m := &Member{
			Membership: MembershipJoin,
			Content:    map[string]any{"membership": "join", "displayname": "Bob"},
		}
		ev := m.AsEvent()
		assert.Equal(t, "join", ev.Content["membership"])
		assert.Equal(t, "Bob", ev.Content["displayname"])
	})
}

func TestPagination_Normalized(t *testing.T) {
	tests := []struct {
		name string
		in   Pagination
		want Pagination
	}{
		{"zero gets defaults", Pagination{}, Pagination{Limit: 100}},
		{"negative offset clamped", Pagination{Limit: 10, Offset: -5}, Pagination{Limit: 10}},
		{"oversized limit clamped", Pagination{Limit: 10000, Offset: 20}, Pagination{Limit: 500, Offset: 20}},
		{"in range untouched", Pagination{Limit: 50, Offset: 10}, Pagination{Limit: 50, Offset: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalized())
		})
	}
}

func TestEvent_Membership(t *testing.T) {
	ev := NewMemberEvent("!abc:red", "@alice:red", "@bob:red", MembershipInvite, nil)
	assert.Equal(t, MembershipInvite, ev.Membership())

	plain := NewMessageEvent("!abc:red", "@alice:red", map[string]any{"body": "hi"})
	assert.Equal(t, MembershipNone, plain.Membership())
}

func TestStamp(t *testing.T) {
	ev := NewMessageEvent("!abc:red", "@alice:red", nil)
	require.Zero(t, ev.OriginServerTS)

	Stamp(ev)
	first := ev.OriginServerTS
	assert.Positive(t, first)

	// Stamping again overwrites.
	ev.OriginServerTS = 1
	Stamp(ev)
	assert.GreaterOrEqual(t, ev.OriginServerTS, first)
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent(EventTypeTopic, "!abc:red", "@alice:red")
	assert.NotEmpty(t, ev.ID)
	assert.NotNil(t, ev.Content)

	other := NewEvent(EventTypeTopic, "!abc:red", "@alice:red")
	assert.NotEqual(t, ev.ID, other.ID)
}
