package repository

import "errors"

// Sentinel kinds for store errors.
var (
	// ErrNotFound reports an unknown entity id or an entity the caller may
	// not act on.
	ErrNotFound = errors.New("record not found")

	// ErrPendingExists reports a duplicate pending connection request for
	// the same ordered (from, to) pair.
	ErrPendingExists = errors.New("connection request already pending")

	// ErrNotPending reports a transition attempted on a request that has
	// already reached a terminal state.
	ErrNotPending = errors.New("connection request is not pending")
)
