package domain

import (
	"context"
	"time"
)

type GroupRole string

const (
	RoleAdmin  GroupRole = "admin"
	RoleMember GroupRole = "member"
)

type GroupPrivacy string

const (
	// PrivacyPublic groups admit join requests immediately (auto-accept).
	PrivacyPublic GroupPrivacy = "public"
	// PrivacyPrivate groups require an admin to approve each join request.
	PrivacyPrivate GroupPrivacy = "private"
)

type Group struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name" validate:"required,min=1,max=100"`
	Description *string      `json:"description" validate:"omitempty,max=500"`
	Privacy     GroupPrivacy `json:"privacy" validate:"required,oneof=public private"`
	// IsVisible controls presence in the group feed. Independent of Privacy,
	// but a group needs at least one course before it may be set visible.
	IsVisible   bool          `json:"is_visible"`
	Courses     []Course      `json:"courses"`
	Members     []GroupMember `json:"members,omitempty"`
	MemberCount int           `json:"member_count"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type GroupMember struct {
	GroupID  int64     `json:"group_id"`
	UserUID  string    `json:"user_uid"`
	Role     GroupRole `json:"role"`
	JoinedAt time.Time `json:"joined_at"`

	// Joined profile fields for member listings.
	Username string `json:"username,omitempty"`
}

// GroupUpdate carries the mutable group fields; nil means "leave unchanged".
type GroupUpdate struct {
	Name        *string       `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string       `json:"description" validate:"omitempty,max=500"`
	Privacy     *GroupPrivacy `json:"privacy" validate:"omitempty,oneof=public private"`
	IsVisible   *bool         `json:"is_visible"`
}

type GroupRepository interface {
	Create(ctx context.Context, group *Group, adminUID string) error
	GetByID(ctx context.Context, id int64) (*Group, error)
	GetUserGroups(ctx context.Context, uid string) ([]Group, error)
	// GetVisibleGroups returns feed groups with courses, newest first.
	GetVisibleGroups(ctx context.Context) ([]Group, error)
	Update(ctx context.Context, group *Group) error
	Delete(ctx context.Context, id int64) error

	AddMember(ctx context.Context, groupID int64, uid string, role GroupRole) error
	RemoveMember(ctx context.Context, groupID int64, uid string) error
	GetMembers(ctx context.Context, groupID int64) ([]GroupMember, error)
	UpdateMemberRole(ctx context.Context, groupID int64, uid string, role GroupRole) error
	IsMember(ctx context.Context, groupID int64, uid string) (bool, error)
	IsAdmin(ctx context.Context, groupID int64, uid string) (bool, error)

	AddCourse(ctx context.Context, groupID int64, courseID string) error
	RemoveCourse(ctx context.Context, groupID int64, courseID string) error
}

type GroupUsecase interface {
	CreateGroup(ctx context.Context, creatorUID string, group *Group, courseIDs []string) (*Group, error)
	GetGroup(ctx context.Context, viewerUID string, groupID int64) (*Group, error)
	MyGroups(ctx context.Context, uid string) ([]Group, error)
	UpdateGroup(ctx context.Context, actorUID string, groupID int64, upd *GroupUpdate) (*Group, error)

	AddCourse(ctx context.Context, actorUID string, groupID int64, courseID string) error
	RemoveCourse(ctx context.Context, actorUID string, groupID int64, courseID string) error

	KickMember(ctx context.Context, adminUID string, groupID int64, memberUID string) error
	LeaveGroup(ctx context.Context, uid string, groupID int64) error
	ChangeMemberRole(ctx context.Context, adminUID string, groupID int64, memberUID string, role GroupRole) error
}
