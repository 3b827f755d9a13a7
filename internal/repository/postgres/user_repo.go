package postgres

import (
	"context"
	"errors"

	"go-studybuddy-backend/internal/domain"
	"go-studybuddy-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
)

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (uid, email, created_at, updated_at)
              VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, user.UID, user.Email, user.CreatedAt, user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.Conflict("User with this email already exists")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *userRepo) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	query := `SELECT uid, email, created_at, updated_at FROM users WHERE uid = $1`
	var user domain.User
	err := r.db.QueryRow(ctx, query, uid).Scan(
		&user.UID, &user.Email, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT uid, email, created_at, updated_at FROM users WHERE email = $1`
	var user domain.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.UID, &user.Email, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetProfile(ctx context.Context, uid string) (*domain.UserProfile, error) {
	query := `
		SELECT uid, username, date_of_birth, grade, gender, school, created_at, updated_at
		FROM user_profiles
		WHERE uid = $1`

	var p domain.UserProfile
	err := r.db.QueryRow(ctx, query, uid).Scan(
		&p.UID, &p.Username, &p.DateOfBirth, &p.Grade, &p.Gender, &p.School,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	courses, err := r.getUserCourses(ctx, uid)
	if err != nil {
		return nil, err
	}
	p.Courses = courses
	return &p, nil
}

func (r *userRepo) UpsertProfile(ctx context.Context, profile *domain.UserProfile) error {
	query := `
		INSERT INTO user_profiles (uid, username, date_of_birth, grade, gender, school, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (uid) DO UPDATE SET
			username = EXCLUDED.username,
			date_of_birth = EXCLUDED.date_of_birth,
			grade = EXCLUDED.grade,
			gender = EXCLUDED.gender,
			school = EXCLUDED.school,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query,
		profile.UID, profile.Username, profile.DateOfBirth, profile.Grade,
		profile.Gender, profile.School, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.Conflict("Username is already taken")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *userRepo) IsUsernameTaken(ctx context.Context, username string, excludeUID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM user_profiles WHERE username = $1 AND uid <> $2)`
	var taken bool
	err := r.db.QueryRow(ctx, query, username, excludeUID).Scan(&taken)
	return taken, err
}

// SetCourses replaces the user's enrollment set in one transaction.
func (r *userRepo) SetCourses(ctx context.Context, uid string, courseIDs []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM user_courses WHERE uid = $1`, uid); err != nil {
		return err
	}
	for _, courseID := range courseIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_courses (uid, course_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			uid, courseID,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *userRepo) GetAllProfiles(ctx context.Context, excludeUID string) ([]domain.UserProfile, error) {
	query := `
		SELECT uid, username, date_of_birth, grade, gender, school, created_at, updated_at
		FROM user_profiles
		WHERE uid <> $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, excludeUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.UserProfile
	byUID := make(map[string]int)
	for rows.Next() {
		var p domain.UserProfile
		if err := rows.Scan(
			&p.UID, &p.Username, &p.DateOfBirth, &p.Grade, &p.Gender, &p.School,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		p.Courses = []string{}
		byUID[p.UID] = len(profiles)
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Second query instead of N+1 per profile.
	courseRows, err := r.db.Query(ctx,
		`SELECT uid, course_id FROM user_courses WHERE uid <> $1`, excludeUID)
	if err != nil {
		return nil, err
	}
	defer courseRows.Close()

	for courseRows.Next() {
		var uid, courseID string
		if err := courseRows.Scan(&uid, &courseID); err != nil {
			return nil, err
		}
		if i, ok := byUID[uid]; ok {
			profiles[i].Courses = append(profiles[i].Courses, courseID)
		}
	}
	return profiles, courseRows.Err()
}

func (r *userRepo) getUserCourses(ctx context.Context, uid string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT course_id FROM user_courses WHERE uid = $1 ORDER BY course_id`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []string{}
	for rows.Next() {
		var courseID string
		if err := rows.Scan(&courseID); err != nil {
			return nil, err
		}
		courses = append(courses, courseID)
	}
	return courses, rows.Err()
}
