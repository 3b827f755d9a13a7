package usecase

import (
	"context"
	"errors"
	"sort"

	"github.com/go-playground/validator/v10"

	"go-studybuddy-backend/internal/domain"
	"go-studybuddy-backend/pkg/apperror"
)

type groupUsecase struct {
	groupRepo  domain.GroupRepository
	courseRepo domain.CourseRepository
	validate   *validator.Validate
}

func NewGroupUsecase(
	groupRepo domain.GroupRepository,
	courseRepo domain.CourseRepository,
	validate *validator.Validate,
) domain.GroupUsecase {
	return &groupUsecase{
		groupRepo:  groupRepo,
		courseRepo: courseRepo,
		validate:   validate,
	}
}

// CreateGroup validates the payload, resolves the course list against the
// catalog, and creates the group with the creator as its admin. A group may
// only be visible in the feed if it carries at least one course.
func (u *groupUsecase) CreateGroup(ctx context.Context, creatorUID string, group *domain.Group, courseIDs []string) (*domain.Group, error) {
	if err := u.validate.Struct(group); err != nil {
		return nil, apperror.BadRequest(err.Error()).Wrap(err)
	}

	courses, err := u.resolveCourses(ctx, courseIDs)
	if err != nil {
		return nil, err
	}
	group.Courses = courses

	if group.IsVisible && len(group.Courses) == 0 {
		return nil, apperror.PreconditionFailed("A visible group needs at least one course").
			Wrap(domain.ErrPreconditionFailed)
	}

	if err := u.groupRepo.Create(ctx, group, creatorUID); err != nil {
		return nil, apperror.Internal(err)
	}
	return u.GetGroup(ctx, creatorUID, group.ID)
}

// GetGroup returns the group with members and courses. Hidden groups are
// only shown to their own members.
func (u *groupUsecase) GetGroup(ctx context.Context, viewerUID string, groupID int64) (*domain.Group, error) {
	group, err := u.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Group not found").Wrap(err)
		}
		return nil, apperror.Internal(err)
	}

	if !group.IsVisible {
		member, err := u.groupRepo.IsMember(ctx, groupID, viewerUID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if !member {
			return nil, apperror.NotFound("Group not found").Wrap(domain.ErrNotFound)
		}
	}
	return group, nil
}

func (u *groupUsecase) MyGroups(ctx context.Context, uid string) ([]domain.Group, error) {
	groups, err := u.groupRepo.GetUserGroups(ctx, uid)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return groups, nil
}

// UpdateGroup applies the non-nil fields of upd. Admin only. Turning
// visibility on is refused while the group has no courses.
func (u *groupUsecase) UpdateGroup(ctx context.Context, actorUID string, groupID int64, upd *domain.GroupUpdate) (*domain.Group, error) {
	if err := u.validate.Struct(upd); err != nil {
		return nil, apperror.BadRequest(err.Error()).Wrap(err)
	}

	group, err := u.requireAdmin(ctx, actorUID, groupID)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		group.Name = *upd.Name
	}
	if upd.Description != nil {
		group.Description = upd.Description
	}
	if upd.Privacy != nil {
		group.Privacy = *upd.Privacy
	}
	if upd.IsVisible != nil {
		group.IsVisible = *upd.IsVisible
	}

	if group.IsVisible && len(group.Courses) == 0 {
		return nil, apperror.PreconditionFailed("A visible group needs at least one course").
			Wrap(domain.ErrPreconditionFailed)
	}

	if err := u.groupRepo.Update(ctx, group); err != nil {
		return nil, apperror.Internal(err)
	}
	return group, nil
}

func (u *groupUsecase) AddCourse(ctx context.Context, actorUID string, groupID int64, courseID string) error {
	if _, err := u.requireAdmin(ctx, actorUID, groupID); err != nil {
		return err
	}

	courses, err := u.courseRepo.GetByIDs(ctx, []string{courseID})
	if err != nil {
		return apperror.Internal(err)
	}
	if len(courses) == 0 {
		return apperror.NotFound("Course not found").Wrap(domain.ErrNotFound)
	}

	if err := u.groupRepo.AddCourse(ctx, groupID, courseID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// RemoveCourse refuses to strip the last course from a visible group; the
// group must be hidden first.
func (u *groupUsecase) RemoveCourse(ctx context.Context, actorUID string, groupID int64, courseID string) error {
	group, err := u.requireAdmin(ctx, actorUID, groupID)
	if err != nil {
		return err
	}

	if group.IsVisible && lastCourse(group.Courses, courseID) {
		return apperror.PreconditionFailed("A visible group needs at least one course").
			Wrap(domain.ErrPreconditionFailed)
	}

	if err := u.groupRepo.RemoveCourse(ctx, groupID, courseID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (u *groupUsecase) KickMember(ctx context.Context, adminUID string, groupID int64, memberUID string) error {
	if adminUID == memberUID {
		return apperror.BadRequest("Use leave to remove yourself from a group")
	}
	if _, err := u.requireAdmin(ctx, adminUID, groupID); err != nil {
		return err
	}

	member, err := u.groupRepo.IsMember(ctx, groupID, memberUID)
	if err != nil {
		return apperror.Internal(err)
	}
	if !member {
		return apperror.NotFound("User is not a member of this group").Wrap(domain.ErrNotFound)
	}

	if err := u.groupRepo.RemoveMember(ctx, groupID, memberUID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// LeaveGroup removes the caller from the group. The last member leaving
// deletes the group outright; a departing admin hands the role to the
// earliest-joined remaining member so the group is never left adminless.
func (u *groupUsecase) LeaveGroup(ctx context.Context, uid string, groupID int64) error {
	members, err := u.groupRepo.GetMembers(ctx, groupID)
	if err != nil {
		return apperror.Internal(err)
	}

	var self *domain.GroupMember
	for i := range members {
		if members[i].UserUID == uid {
			self = &members[i]
			break
		}
	}
	if self == nil {
		return apperror.NotFound("You are not a member of this group").Wrap(domain.ErrNotFound)
	}

	if len(members) == 1 {
		if err := u.groupRepo.Delete(ctx, groupID); err != nil {
			return apperror.Internal(err)
		}
		return nil
	}

	if self.Role == domain.RoleAdmin && !hasOtherAdmin(members, uid) {
		successor := earliestOther(members, uid)
		if err := u.groupRepo.UpdateMemberRole(ctx, groupID, successor.UserUID, domain.RoleAdmin); err != nil {
			return apperror.Internal(err)
		}
	}

	if err := u.groupRepo.RemoveMember(ctx, groupID, uid); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// ChangeMemberRole promotes or demotes a member. Demoting the only admin is
// refused.
func (u *groupUsecase) ChangeMemberRole(ctx context.Context, adminUID string, groupID int64, memberUID string, role domain.GroupRole) error {
	if role != domain.RoleAdmin && role != domain.RoleMember {
		return apperror.BadRequest("Invalid role")
	}
	if _, err := u.requireAdmin(ctx, adminUID, groupID); err != nil {
		return err
	}

	members, err := u.groupRepo.GetMembers(ctx, groupID)
	if err != nil {
		return apperror.Internal(err)
	}

	var target *domain.GroupMember
	admins := 0
	for i := range members {
		if members[i].Role == domain.RoleAdmin {
			admins++
		}
		if members[i].UserUID == memberUID {
			target = &members[i]
		}
	}
	if target == nil {
		return apperror.NotFound("User is not a member of this group").Wrap(domain.ErrNotFound)
	}

	if role == domain.RoleMember && target.Role == domain.RoleAdmin && admins == 1 {
		return apperror.PreconditionFailed("A group must keep at least one admin").
			Wrap(domain.ErrPreconditionFailed)
	}

	if err := u.groupRepo.UpdateMemberRole(ctx, groupID, memberUID, role); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// requireAdmin loads the group and confirms the actor administers it.
func (u *groupUsecase) requireAdmin(ctx context.Context, actorUID string, groupID int64) (*domain.Group, error) {
	group, err := u.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Group not found").Wrap(err)
		}
		return nil, apperror.Internal(err)
	}

	admin, err := u.groupRepo.IsAdmin(ctx, groupID, actorUID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !admin {
		return nil, apperror.Forbidden("Only a group admin can do this").
			Wrap(domain.ErrPermissionDenied)
	}
	return group, nil
}

// resolveCourses checks every requested ID against the catalog and returns
// the matched courses. Unknown IDs fail the whole call.
func (u *groupUsecase) resolveCourses(ctx context.Context, courseIDs []string) ([]domain.Course, error) {
	ids := dedupe(courseIDs)
	if len(ids) == 0 {
		return nil, nil
	}
	courses, err := u.courseRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if len(courses) != len(ids) {
		return nil, apperror.BadRequest("One or more courses do not exist")
	}
	return courses, nil
}

func lastCourse(courses []domain.Course, courseID string) bool {
	if len(courses) != 1 {
		return false
	}
	return courses[0].CourseID == courseID
}

func hasOtherAdmin(members []domain.GroupMember, uid string) bool {
	for _, m := range members {
		if m.UserUID != uid && m.Role == domain.RoleAdmin {
			return true
		}
	}
	return false
}

// earliestOther picks the earliest-joined member other than uid. GetMembers
// already orders by joined_at, but sort again rather than depend on it.
func earliestOther(members []domain.GroupMember, uid string) domain.GroupMember {
	others := make([]domain.GroupMember, 0, len(members)-1)
	for _, m := range members {
		if m.UserUID != uid {
			others = append(others, m)
		}
	}
	sort.SliceStable(others, func(i, j int) bool {
		return others[i].JoinedAt.Before(others[j].JoinedAt)
	})
	return others[0]
}
