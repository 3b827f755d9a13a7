package postgres

import (
	"context"

	"go-studybuddy-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type courseRepo struct {
	db *pgxpool.Pool
}

func NewCourseRepository(db *pgxpool.Pool) domain.CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Fetch(ctx context.Context) ([]domain.Course, error) {
	rows, err := r.db.Query(ctx,
		`SELECT course_id, title FROM courses ORDER BY course_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.CourseID, &c.Title); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *courseRepo) GetByIDs(ctx context.Context, courseIDs []string) ([]domain.Course, error) {
	if len(courseIDs) == 0 {
		return []domain.Course{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT course_id, title FROM courses WHERE course_id = ANY($1) ORDER BY course_id`,
		courseIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.CourseID, &c.Title); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}
