package room

import "errors"

var (
	// ErrForbidden covers authorization and membership-rule failures. The
	// operation aborts before any mutation.
	ErrForbidden = errors.New("forbidden")
	// ErrRoomIDTaken is a storage-level room id collision. Retried only
	// inside generated-id allocation; explicit ids propagate it as-is.
	ErrRoomIDTaken = errors.New("room id already taken")
	// ErrRoomIDExhausted means generated-id allocation spent its retry budget.
	ErrRoomIDExhausted = errors.New("could not generate an unused room id")
	// ErrUnknownMembership is an invariant violation: an unrecognized
	// membership value reached notice synthesis.
	ErrUnknownMembership = errors.New("unknown membership value")
)
