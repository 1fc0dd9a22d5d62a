package room

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// User IDs are "@localpart:server"; room IDs are "!opaque:server". The domain
// part names the homeserver that owns the identifier.

// UserDomain returns the homeserver name of a user id.
func UserDomain(userID string) (string, error) {
	return idDomain(userID, '@', "user id")
}

// RoomDomain returns the homeserver name of a room id.
func RoomDomain(roomID string) (string, error) {
	return idDomain(roomID, '!', "room id")
}

// NewRoomID generates a fresh room id on the given server.
func NewRoomID(server string) string {
	local := strings.ReplaceAll(uuid.NewString(), "-", "")[:18]
	return "!" + local + ":" + server
}

func idDomain(id string, sigil byte, kind string) (string, error) {
	if len(id) < 2 || id[0] != sigil {
		return "", fmt.Errorf("malformed %s %q: missing %q sigil", kind, id, string(sigil))
	}
	idx := strings.IndexByte(id, ':')
	if idx <= 1 || idx == len(id)-1 {
		return "", fmt.Errorf("malformed %s %q: missing server part", kind, id)
	}
	return id[idx+1:], nil
}
