package domain

import (
	"context"
	"time"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
	StatusCanceled RequestStatus = "canceled"
)

// Terminal reports whether no further transition is permitted from s.
func (s RequestStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusCanceled
}

// ConnectionRequest is a study-buddy request from one user to another.
// Lifecycle: pending -> accepted | rejected | canceled. A closed request is
// never reopened; sending again creates a new row.
type ConnectionRequest struct {
	ID          int64         `json:"id"`
	SenderUID   string        `json:"sender_uid"`
	ReceiverUID string        `json:"receiver_uid"`
	Status      RequestStatus `json:"status"`
	Message     *string       `json:"message"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Counterpart profile fields joined for list views.
	SenderUsername   string `json:"sender_username,omitempty"`
	ReceiverUsername string `json:"receiver_username,omitempty"`
}

// RelationshipState is what the presentation layer sees between two users.
// A request the viewer sent that was rejected reads as RelationNone so the
// viewer is free to send again without learning about the rejection.
type RelationshipState string

const (
	RelationNone            RelationshipState = "none"
	RelationPendingOutgoing RelationshipState = "pending_outgoing"
	RelationPendingIncoming RelationshipState = "pending_incoming"
	RelationConnected       RelationshipState = "connected"
)

type ConnectionRequestRepository interface {
	// Create inserts a pending request. The check against an existing
	// pending row and the insert are atomic: a partial unique index on
	// (sender_uid, receiver_uid) WHERE status = 'pending' backstops
	// concurrent senders.
	Create(ctx context.Context, req *ConnectionRequest) error
	GetByID(ctx context.Context, id int64) (*ConnectionRequest, error)
	UpdateStatus(ctx context.Context, id int64, status RequestStatus) error
	GetIncoming(ctx context.Context, uid string, status *RequestStatus) ([]ConnectionRequest, error)
	GetOutgoing(ctx context.Context, uid string, status *RequestStatus) ([]ConnectionRequest, error)
	// GetLatestBetween returns the most recent request between the two
	// users in either direction, or ErrNotFound.
	GetLatestBetween(ctx context.Context, uidA, uidB string) (*ConnectionRequest, error)
	// HasAccepted reports whether an accepted request exists between the
	// two users in either direction.
	HasAccepted(ctx context.Context, uidA, uidB string) (bool, error)
	HasPending(ctx context.Context, senderUID, receiverUID string) (bool, error)
}

// ConnectionResult is returned by Accept: the closed request plus the
// private study group that materializes the connection.
type ConnectionResult struct {
	Request *ConnectionRequest `json:"request"`
	Group   *Group             `json:"group,omitempty"`
}

type ConnectionUsecase interface {
	Send(ctx context.Context, senderUID, receiverUID, message string) (*ConnectionRequest, error)
	Accept(ctx context.Context, actorUID string, requestID int64) (*ConnectionResult, error)
	Reject(ctx context.Context, actorUID string, requestID int64) (*ConnectionRequest, error)
	Cancel(ctx context.Context, actorUID string, requestID int64) (*ConnectionRequest, error)
	Incoming(ctx context.Context, uid string, status *RequestStatus) ([]ConnectionRequest, error)
	Outgoing(ctx context.Context, uid string, status *RequestStatus) ([]ConnectionRequest, error)
	StatusWith(ctx context.Context, viewerUID, otherUID string) (RelationshipState, error)
}
