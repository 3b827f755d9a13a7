package postgres

import (
	"context"
	"errors"
	"time"

	"go-studybuddy-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type groupJoinRequestRepo struct {
	db *pgxpool.Pool
}

func NewGroupJoinRequestRepository(db *pgxpool.Pool) domain.GroupJoinRequestRepository {
	return &groupJoinRequestRepo{db: db}
}

// Create relies on the partial unique index
//
//	CREATE UNIQUE INDEX group_join_requests_pending_pair
//	ON group_join_requests (requester_uid, group_id) WHERE status = 'pending'
//
// to keep the duplicate-pending check atomic with the insert.
func (r *groupJoinRequestRepo) Create(ctx context.Context, req *domain.GroupJoinRequest) error {
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = domain.StatusPending
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO group_join_requests (requester_uid, group_id, status, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		req.RequesterUID, req.GroupID, req.Status, req.Message,
		req.CreatedAt, req.UpdatedAt,
	).Scan(&req.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrDuplicatePendingRequest
		}
		return err
	}
	return nil
}

func (r *groupJoinRequestRepo) GetByID(ctx context.Context, id int64) (*domain.GroupJoinRequest, error) {
	query := `
		SELECT id, requester_uid, group_id, status, message, created_at, updated_at
		FROM group_join_requests
		WHERE id = $1`

	var req domain.GroupJoinRequest
	err := r.db.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.RequesterUID, &req.GroupID, &req.Status, &req.Message,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *groupJoinRequestRepo) UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error {
	result, err := r.db.Exec(ctx,
		`UPDATE group_join_requests SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AcceptAndAdmit marks the request accepted and inserts the member row in
// one transaction: either the user is admitted and the request closed, or
// neither happens.
func (r *groupJoinRequestRepo) AcceptAndAdmit(ctx context.Context, requestID int64, groupID int64, uid string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	result, err := tx.Exec(ctx, `
		UPDATE group_join_requests SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4`,
		requestID, domain.StatusAccepted, now, domain.StatusPending)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO group_members (group_id, user_uid, role, joined_at)
		VALUES ($1, $2, $3, $4)`,
		groupID, uid, domain.RoleMember, now,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrAlreadyMember
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *groupJoinRequestRepo) HasPending(ctx context.Context, requesterUID string, groupID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM group_join_requests
			WHERE requester_uid = $1 AND group_id = $2 AND status = $3
		)`,
		requesterUID, groupID, domain.StatusPending).Scan(&exists)
	return exists, err
}

// GetPendingForGroup joins the requester profile so admins can review
// candidates without extra round trips.
func (r *groupJoinRequestRepo) GetPendingForGroup(ctx context.Context, groupID int64) ([]domain.GroupJoinRequest, error) {
	query := `
		SELECT gr.id, gr.requester_uid, gr.group_id, gr.status, gr.message,
		       gr.created_at, gr.updated_at,
		       p.uid, p.username, p.date_of_birth, p.grade, p.gender, p.school
		FROM group_join_requests gr
		LEFT JOIN user_profiles p ON p.uid = gr.requester_uid
		WHERE gr.group_id = $1 AND gr.status = $2
		ORDER BY gr.created_at DESC`

	rows, err := r.db.Query(ctx, query, groupID, domain.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.GroupJoinRequest
	for rows.Next() {
		var req domain.GroupJoinRequest
		var p domain.UserProfile
		var uid, username, grade, gender, school *string
		var dob *time.Time
		if err := rows.Scan(
			&req.ID, &req.RequesterUID, &req.GroupID, &req.Status, &req.Message,
			&req.CreatedAt, &req.UpdatedAt,
			&uid, &username, &dob, &grade, &gender, &school,
		); err != nil {
			return nil, err
		}
		if uid != nil {
			p.UID = *uid
			p.Username = deref(username)
			p.DateOfBirth = dob
			p.Grade = deref(grade)
			p.Gender = deref(gender)
			p.School = deref(school)
			req.RequesterProfile = &p
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *groupJoinRequestRepo) GetPendingByUser(ctx context.Context, uid string) ([]domain.GroupJoinRequest, error) {
	query := `
		SELECT id, requester_uid, group_id, status, message, created_at, updated_at
		FROM group_join_requests
		WHERE requester_uid = $1 AND status = $2
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, uid, domain.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.GroupJoinRequest
	for rows.Next() {
		var req domain.GroupJoinRequest
		if err := rows.Scan(
			&req.ID, &req.RequesterUID, &req.GroupID, &req.Status, &req.Message,
			&req.CreatedAt, &req.UpdatedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
