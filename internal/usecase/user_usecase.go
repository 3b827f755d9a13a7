package usecase

import (
	"context"
	"errors"
	"time"

	"go-studybuddy-backend/internal/domain"
	"go-studybuddy-backend/internal/ranking"
	"go-studybuddy-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

type userUsecase struct {
	userRepo   domain.UserRepository
	courseRepo domain.CourseRepository
	enums      *domain.EnumConfig
	validate   *validator.Validate
}

func NewUserUsecase(
	userRepo domain.UserRepository,
	courseRepo domain.CourseRepository,
	enums *domain.EnumConfig,
	validate *validator.Validate,
) domain.UserUsecase {
	return &userUsecase{
		userRepo:   userRepo,
		courseRepo: courseRepo,
		enums:      enums,
		validate:   validate,
	}
}

func (u *userUsecase) GetMe(ctx context.Context, uid string) (*domain.UserProfile, error) {
	profile, err := u.userRepo.GetProfile(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Profile not found").Wrap(err)
		}
		return nil, apperror.Internal(err)
	}
	profile.Age = ranking.Age(profile.DateOfBirth, time.Now())
	return profile, nil
}

// SaveProfile creates or updates the caller's profile. Grade and gender must
// be recognized values from the enum configuration.
func (u *userUsecase) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	if err := u.validate.Struct(profile); err != nil {
		return apperror.BadRequest(err.Error())
	}
	if !enumRecognized(u.enums.Grades, profile.Grade) {
		return apperror.BadRequest("Unrecognized grade value")
	}
	if !enumRecognized(u.enums.Genders, profile.Gender) {
		return apperror.BadRequest("Unrecognized gender value")
	}

	taken, err := u.userRepo.IsUsernameTaken(ctx, profile.Username, profile.UID)
	if err != nil {
		return apperror.Internal(err)
	}
	if taken {
		return apperror.Conflict("Username is already taken")
	}

	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	return u.userRepo.UpsertProfile(ctx, profile)
}

// CheckUsername reports availability. The caller's own current username
// counts as available so profile edits don't flag themselves.
func (u *userUsecase) CheckUsername(ctx context.Context, uid, username string) (bool, error) {
	taken, err := u.userRepo.IsUsernameTaken(ctx, username, uid)
	if err != nil {
		return false, apperror.Internal(err)
	}
	return !taken, nil
}

// SetCourses replaces the caller's enrollment with catalog-verified courses.
func (u *userUsecase) SetCourses(ctx context.Context, uid string, courseIDs []string) error {
	known, err := u.courseRepo.GetByIDs(ctx, courseIDs)
	if err != nil {
		return apperror.Internal(err)
	}
	if len(known) != len(dedupe(courseIDs)) {
		return apperror.BadRequest("One or more course identifiers are not in the catalog")
	}
	return u.userRepo.SetCourses(ctx, uid, courseIDs)
}

func (u *userUsecase) Enums(ctx context.Context) *domain.EnumConfig {
	return u.enums
}

func enumRecognized(values []domain.EnumValue, v string) bool {
	for _, ev := range values {
		if ev.Value == v {
			return true
		}
	}
	return false
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
