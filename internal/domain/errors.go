package domain

import "errors"

// Sentinel errors for the request/membership state machines. Handlers map
// each one to a distinct HTTP status so the frontend can show a distinct
// message per condition.
var (
	ErrNotFound = errors.New("resource not found")

	// A pending request already exists for this (sender, receiver) or
	// (requester, group) pair.
	ErrDuplicatePendingRequest = errors.New("a pending request already exists")

	ErrAlreadyMember    = errors.New("user is already a member of this group")
	ErrAlreadyConnected = errors.New("users are already connected")

	// Wrong actor for the transition (e.g. sender trying to accept).
	ErrPermissionDenied = errors.New("not allowed to perform this transition")

	// Transition attempted on a non-pending request. Terminal states are
	// immutable; a new request is a new entity.
	ErrInvalidTransition = errors.New("request is not pending")

	// Invariant would be violated (e.g. visible group with zero courses,
	// demoting the last admin).
	ErrPreconditionFailed = errors.New("operation precondition not met")
)
