package domain

import (
	"context"
	"time"
)

// GroupJoinRequest asks for admission into a group.
// Lifecycle: pending -> accepted | rejected. Public groups short-circuit:
// the request is accepted and the member admitted without a visible
// pending state.
type GroupJoinRequest struct {
	ID           int64         `json:"id"`
	RequesterUID string        `json:"requester_uid"`
	GroupID      int64         `json:"group_id"`
	Status       RequestStatus `json:"status"`
	Message      *string       `json:"message"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	// Requester profile joined for admin review lists.
	RequesterProfile *UserProfile `json:"requester_profile,omitempty"`
}

// JoinResult reports the outcome of a join request. AutoAccepted is true on
// the public-group fast path, where Request is nil because no pending row
// was ever created.
type JoinResult struct {
	AutoAccepted bool              `json:"auto_accepted"`
	Request      *GroupJoinRequest `json:"request,omitempty"`
}

type GroupJoinRequestRepository interface {
	// Create inserts a pending request. A partial unique index on
	// (requester_uid, group_id) WHERE status = 'pending' keeps the
	// precondition check and insert atomic under concurrent requesters.
	Create(ctx context.Context, req *GroupJoinRequest) error
	GetByID(ctx context.Context, id int64) (*GroupJoinRequest, error)
	UpdateStatus(ctx context.Context, id int64, status RequestStatus) error
	// AcceptAndAdmit marks the request accepted and inserts the member row
	// in a single transaction.
	AcceptAndAdmit(ctx context.Context, requestID int64, groupID int64, uid string) error
	HasPending(ctx context.Context, requesterUID string, groupID int64) (bool, error)
	GetPendingForGroup(ctx context.Context, groupID int64) ([]GroupJoinRequest, error)
	GetPendingByUser(ctx context.Context, uid string) ([]GroupJoinRequest, error)
}

type GroupJoinUsecase interface {
	RequestToJoin(ctx context.Context, requesterUID string, groupID int64, message string) (*JoinResult, error)
	Respond(ctx context.Context, adminUID string, requestID int64, accept bool) (*GroupJoinRequest, error)
	PendingForGroup(ctx context.Context, adminUID string, groupID int64) ([]GroupJoinRequest, error)
	MyPending(ctx context.Context, uid string) ([]GroupJoinRequest, error)
}
