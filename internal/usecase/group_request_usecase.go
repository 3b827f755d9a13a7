package usecase

import (
	"context"
	"errors"

	"go-studybuddy-backend/internal/domain"
	"go-studybuddy-backend/pkg/apperror"
)

type groupJoinUsecase struct {
	joinRepo  domain.GroupJoinRequestRepository
	groupRepo domain.GroupRepository
}

func NewGroupJoinUsecase(
	joinRepo domain.GroupJoinRequestRepository,
	groupRepo domain.GroupRepository,
) domain.GroupJoinUsecase {
	return &groupJoinUsecase{
		joinRepo:  joinRepo,
		groupRepo: groupRepo,
	}
}

// RequestToJoin admits the requester immediately when the group is public;
// private groups get a pending request for an admin to act on.
func (u *groupJoinUsecase) RequestToJoin(ctx context.Context, requesterUID string, groupID int64, message string) (*domain.JoinResult, error) {
	group, err := u.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Group not found").Wrap(err)
		}
		return nil, apperror.Internal(err)
	}
	if !group.IsVisible {
		// Hidden groups are joined by invitation only, never by request.
		return nil, apperror.PreconditionFailed("Group is not open for join requests").
			Wrap(domain.ErrPreconditionFailed)
	}

	member, err := u.groupRepo.IsMember(ctx, groupID, requesterUID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if member {
		return nil, apperror.Conflict("You are already a member of this group").
			Wrap(domain.ErrAlreadyMember)
	}

	if group.Privacy == domain.PrivacyPublic {
		if err := u.groupRepo.AddMember(ctx, groupID, requesterUID, domain.RoleMember); err != nil {
			if errors.Is(err, domain.ErrAlreadyMember) {
				return nil, apperror.Conflict("You are already a member of this group").
					Wrap(domain.ErrAlreadyMember)
			}
			return nil, apperror.Internal(err)
		}
		return &domain.JoinResult{AutoAccepted: true}, nil
	}

	pending, err := u.joinRepo.HasPending(ctx, requesterUID, groupID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if pending {
		return nil, apperror.Conflict("You already have a pending request for this group").
			Wrap(domain.ErrDuplicatePendingRequest)
	}

	req := &domain.GroupJoinRequest{
		RequesterUID: requesterUID,
		GroupID:      groupID,
		Status:       domain.StatusPending,
	}
	if message != "" {
		req.Message = &message
	}

	if err := u.joinRepo.Create(ctx, req); err != nil {
		if errors.Is(err, domain.ErrDuplicatePendingRequest) {
			return nil, apperror.Conflict("You already have a pending request for this group").
				Wrap(domain.ErrDuplicatePendingRequest)
		}
		return nil, apperror.Internal(err)
	}
	return &domain.JoinResult{Request: req}, nil
}

// Respond lets a group admin accept or reject a pending join request.
// Acceptance flips the status and admits the member in one transaction.
func (u *groupJoinUsecase) Respond(ctx context.Context, actorUID string, requestID int64, accept bool) (*domain.GroupJoinRequest, error) {
	req, err := u.joinRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Request not found").Wrap(err)
		}
		return nil, apperror.Internal(err)
	}

	admin, err := u.groupRepo.IsAdmin(ctx, req.GroupID, actorUID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !admin {
		return nil, apperror.Forbidden("Only a group admin can respond to join requests").
			Wrap(domain.ErrPermissionDenied)
	}

	if req.Status != domain.StatusPending {
		return nil, apperror.Conflict("Request is no longer pending").
			Wrap(domain.ErrInvalidTransition)
	}

	if !accept {
		if err := u.joinRepo.UpdateStatus(ctx, req.ID, domain.StatusRejected); err != nil {
			return nil, apperror.Internal(err)
		}
		req.Status = domain.StatusRejected
		return req, nil
	}

	if err := u.joinRepo.AcceptAndAdmit(ctx, req.ID, req.GroupID, req.RequesterUID); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidTransition):
			// Someone else responded between our read and the update.
			return nil, apperror.Conflict("Request is no longer pending").Wrap(err)
		case errors.Is(err, domain.ErrAlreadyMember):
			return nil, apperror.Conflict("User is already a member of this group").Wrap(err)
		default:
			return nil, apperror.Internal(err)
		}
	}
	req.Status = domain.StatusAccepted
	return req, nil
}

func (u *groupJoinUsecase) PendingForGroup(ctx context.Context, actorUID string, groupID int64) ([]domain.GroupJoinRequest, error) {
	admin, err := u.groupRepo.IsAdmin(ctx, groupID, actorUID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !admin {
		return nil, apperror.Forbidden("Only a group admin can view join requests").
			Wrap(domain.ErrPermissionDenied)
	}

	requests, err := u.joinRepo.GetPendingForGroup(ctx, groupID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return requests, nil
}

func (u *groupJoinUsecase) MyPending(ctx context.Context, uid string) ([]domain.GroupJoinRequest, error) {
	requests, err := u.joinRepo.GetPendingByUser(ctx, uid)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return requests, nil
}
