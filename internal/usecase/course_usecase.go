package usecase

import (
	"context"

	"go-studybuddy-backend/internal/domain"
)

type courseUsecase struct {
	courseRepo domain.CourseRepository
}

func NewCourseUsecase(courseRepo domain.CourseRepository) domain.CourseUsecase {
	return &courseUsecase{courseRepo: courseRepo}
}

func (u *courseUsecase) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return u.courseRepo.Fetch(ctx)
}
