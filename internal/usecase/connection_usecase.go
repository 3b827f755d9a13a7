package usecase

import (
	"context"
	"errors"
	"fmt"

	"go-studybuddy-backend/internal/domain"
	"go-studybuddy-backend/pkg/apperror"
	"go-studybuddy-backend/pkg/logger"
)

type connectionUsecase struct {
	requestRepo domain.ConnectionRequestRepository
	userRepo    domain.UserRepository
	groupRepo   domain.GroupRepository
}

func NewConnectionUsecase(
	requestRepo domain.ConnectionRequestRepository,
	userRepo domain.UserRepository,
	groupRepo domain.GroupRepository,
) domain.ConnectionUsecase {
	return &connectionUsecase{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		groupRepo:   groupRepo,
	}
}

// Send creates a pending request. Fails distinctly per condition so the
// frontend can render distinct messages: AlreadyConnected vs
// DuplicatePending vs plain bad input.
func (u *connectionUsecase) Send(ctx context.Context, senderUID, receiverUID, message string) (*domain.ConnectionRequest, error) {
	if senderUID == receiverUID {
		return nil, apperror.BadRequest("Cannot send a request to yourself")
	}

	if _, err := u.userRepo.GetByUID(ctx, receiverUID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Receiver not found").Wrap(err)
		}
		return nil, apperror.Internal(err)
	}

	connected, err := u.requestRepo.HasAccepted(ctx, senderUID, receiverUID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if connected {
		return nil, apperror.Conflict("You are already connected with this user").
			Wrap(domain.ErrAlreadyConnected)
	}

	pending, err := u.requestRepo.HasPending(ctx, senderUID, receiverUID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if pending {
		return nil, apperror.Conflict("You already have a pending request to this user").
			Wrap(domain.ErrDuplicatePendingRequest)
	}

	req := &domain.ConnectionRequest{
		SenderUID:   senderUID,
		ReceiverUID: receiverUID,
		Status:      domain.StatusPending,
	}
	if message != "" {
		req.Message = &message
	}

	// The partial unique index closes the race between the check above and
	// this insert.
	if err := u.requestRepo.Create(ctx, req); err != nil {
		if errors.Is(err, domain.ErrDuplicatePendingRequest) {
			return nil, apperror.Conflict("You already have a pending request to this user").
				Wrap(domain.ErrDuplicatePendingRequest)
		}
		return nil, apperror.Internal(err)
	}
	return req, nil
}

// Accept closes the request and materializes the connection as a private,
// feed-hidden study group for the pair. Only the receiver may accept, and
// only while pending.
func (u *connectionUsecase) Accept(ctx context.Context, actorUID string, requestID int64) (*domain.ConnectionResult, error) {
	req, err := u.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ReceiverUID != actorUID {
		return nil, apperror.Forbidden("Only the request receiver can accept").
			Wrap(domain.ErrPermissionDenied)
	}
	if req.Status != domain.StatusPending {
		return nil, apperror.Conflict("Request is no longer pending").
			Wrap(domain.ErrInvalidTransition)
	}

	if err := u.requestRepo.UpdateStatus(ctx, req.ID, domain.StatusAccepted); err != nil {
		return nil, apperror.Internal(err)
	}
	req.Status = domain.StatusAccepted

	group, err := u.createPairGroup(ctx, req)
	if err != nil {
		// The connection stands even if the group shell could not be
		// created; surface it in logs, not to the accepting user.
		logger.Log.Error("failed to create pair study group",
			"request_id", req.ID, "error", err)
		return &domain.ConnectionResult{Request: req}, nil
	}

	return &domain.ConnectionResult{Request: req, Group: group}, nil
}

// Reject marks the request rejected. The status is kept but never shown to
// the sender: their relationship view reverts to "none" so a later
// re-request stays socially painless.
func (u *connectionUsecase) Reject(ctx context.Context, actorUID string, requestID int64) (*domain.ConnectionRequest, error) {
	req, err := u.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ReceiverUID != actorUID {
		return nil, apperror.Forbidden("Only the request receiver can reject").
			Wrap(domain.ErrPermissionDenied)
	}
	if req.Status != domain.StatusPending {
		return nil, apperror.Conflict("Request is no longer pending").
			Wrap(domain.ErrInvalidTransition)
	}

	if err := u.requestRepo.UpdateStatus(ctx, req.ID, domain.StatusRejected); err != nil {
		return nil, apperror.Internal(err)
	}
	req.Status = domain.StatusRejected
	return req, nil
}

// Cancel marks a pending request canceled. Sender only. Canceled is
// terminal; no transition ever leaves it.
func (u *connectionUsecase) Cancel(ctx context.Context, actorUID string, requestID int64) (*domain.ConnectionRequest, error) {
	req, err := u.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.SenderUID != actorUID {
		return nil, apperror.Forbidden("Only the request sender can cancel").
			Wrap(domain.ErrPermissionDenied)
	}
	if req.Status != domain.StatusPending {
		return nil, apperror.Conflict("Request is no longer pending").
			Wrap(domain.ErrInvalidTransition)
	}

	if err := u.requestRepo.UpdateStatus(ctx, req.ID, domain.StatusCanceled); err != nil {
		return nil, apperror.Internal(err)
	}
	req.Status = domain.StatusCanceled
	return req, nil
}

func (u *connectionUsecase) Incoming(ctx context.Context, uid string, status *domain.RequestStatus) ([]domain.ConnectionRequest, error) {
	requests, err := u.requestRepo.GetIncoming(ctx, uid, status)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return requests, nil
}

func (u *connectionUsecase) Outgoing(ctx context.Context, uid string, status *domain.RequestStatus) ([]domain.ConnectionRequest, error) {
	requests, err := u.requestRepo.GetOutgoing(ctx, uid, status)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return requests, nil
}

// StatusWith reports the relationship between viewer and other as the
// presentation layer should see it. A rejection of the viewer's own request
// reads as RelationNone: the rejected status exists in the store but is
// deliberately hidden from the sender.
func (u *connectionUsecase) StatusWith(ctx context.Context, viewerUID, otherUID string) (domain.RelationshipState, error) {
	req, err := u.requestRepo.GetLatestBetween(ctx, viewerUID, otherUID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.RelationNone, nil
		}
		return domain.RelationNone, apperror.Internal(err)
	}

	switch req.Status {
	case domain.StatusAccepted:
		return domain.RelationConnected, nil
	case domain.StatusPending:
		if req.SenderUID == viewerUID {
			return domain.RelationPendingOutgoing, nil
		}
		return domain.RelationPendingIncoming, nil
	default:
		// Rejected and canceled both read as "no active request".
		return domain.RelationNone, nil
	}
}

func (u *connectionUsecase) getRequest(ctx context.Context, requestID int64) (*domain.ConnectionRequest, error) {
	req, err := u.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Request not found").Wrap(err)
		}
		return nil, apperror.Internal(err)
	}
	return req, nil
}

// createPairGroup builds the private two-person study group that backs an
// accepted connection. Sender becomes admin, receiver a member; the group
// never appears in the public feed.
func (u *connectionUsecase) createPairGroup(ctx context.Context, req *domain.ConnectionRequest) (*domain.Group, error) {
	senderName := req.SenderUID
	if p, err := u.userRepo.GetProfile(ctx, req.SenderUID); err == nil {
		senderName = p.Username
	}
	receiverName := req.ReceiverUID
	if p, err := u.userRepo.GetProfile(ctx, req.ReceiverUID); err == nil {
		receiverName = p.Username
	}

	desc := "Private study group created from a study buddy request."
	group := &domain.Group{
		Name:        fmt.Sprintf("@%s & @%s", senderName, receiverName),
		Description: &desc,
		Privacy:     domain.PrivacyPrivate,
		IsVisible:   false,
	}

	if err := u.groupRepo.Create(ctx, group, req.SenderUID); err != nil {
		return nil, err
	}
	if err := u.groupRepo.AddMember(ctx, group.ID, req.ReceiverUID, domain.RoleMember); err != nil {
		return nil, err
	}
	return group, nil
}
