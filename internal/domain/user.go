package domain

import (
	"context"
	"time"
)

type User struct {
	UID       string    `json:"uid"` // Identity provider subject
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserProfile is the study profile attached to a user.
type UserProfile struct {
	UID         string     `json:"uid"`
	Username    string     `json:"username" validate:"required,min=3,max=30,valid_username"`
	DateOfBirth *time.Time `json:"date_of_birth" validate:"required,past_date"`
	Grade       string     `json:"grade" validate:"required"`
	Gender      string     `json:"gender" validate:"required"`
	School      string     `json:"school" validate:"required,max=100"`
	Courses     []string   `json:"courses"`
	// Age is derived from DateOfBirth at read time, never stored.
	Age       *int      `json:"age,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Course struct {
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
}

// EnumValue pairs a stored enum value with its display label.
type EnumValue struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// EnumConfig holds the recognized grade and gender values. It is loaded once
// at startup and passed explicitly to formatting code instead of living in
// global mutable state.
type EnumConfig struct {
	Grades  []EnumValue `json:"grades"`
	Genders []EnumValue `json:"genders"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByUID(ctx context.Context, uid string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	GetProfile(ctx context.Context, uid string) (*UserProfile, error)
	UpsertProfile(ctx context.Context, profile *UserProfile) error
	IsUsernameTaken(ctx context.Context, username string, excludeUID string) (bool, error)
	SetCourses(ctx context.Context, uid string, courseIDs []string) error
	// GetAllProfiles returns every complete profile except excludeUID,
	// courses included. Feeds the people ranking.
	GetAllProfiles(ctx context.Context, excludeUID string) ([]UserProfile, error)
}

type CourseRepository interface {
	Fetch(ctx context.Context) ([]Course, error)
	GetByIDs(ctx context.Context, courseIDs []string) ([]Course, error)
}

type AuthUsecase interface {
	EnsureUserExists(ctx context.Context, user *User) error
	GetCurrentUser(ctx context.Context, uid string) (*User, error)
}

type UserUsecase interface {
	GetMe(ctx context.Context, uid string) (*UserProfile, error)
	SaveProfile(ctx context.Context, profile *UserProfile) error
	CheckUsername(ctx context.Context, uid, username string) (bool, error)
	SetCourses(ctx context.Context, uid string, courseIDs []string) error
	Enums(ctx context.Context) *EnumConfig
}

type CourseUsecase interface {
	ListCourses(ctx context.Context) ([]Course, error)
}
