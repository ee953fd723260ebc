package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrUnknownRole = errors.New("unknown user role")
	ErrQueueFull   = errors.New("refresh queue is full")
	ErrNotStarted  = errors.New("service not started")
	ErrSelfConnect = errors.New("cannot connect to yourself")
	ErrEmptyUserID = errors.New("user id must not be empty")
)
