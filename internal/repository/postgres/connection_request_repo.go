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

type connectionRequestRepo struct {
	db *pgxpool.Pool
}

func NewConnectionRequestRepository(db *pgxpool.Pool) domain.ConnectionRequestRepository {
	return &connectionRequestRepo{db: db}
}

// Create relies on the partial unique index
//
//	CREATE UNIQUE INDEX connection_requests_pending_pair
//	ON connection_requests (sender_uid, receiver_uid) WHERE status = 'pending'
//
// so the duplicate-pending precondition holds even under concurrent senders.
func (r *connectionRequestRepo) Create(ctx context.Context, req *domain.ConnectionRequest) error {
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = domain.StatusPending
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO connection_requests (sender_uid, receiver_uid, status, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		req.SenderUID, req.ReceiverUID, req.Status, req.Message,
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

func (r *connectionRequestRepo) GetByID(ctx context.Context, id int64) (*domain.ConnectionRequest, error) {
	query := `
		SELECT cr.id, cr.sender_uid, cr.receiver_uid, cr.status, cr.message,
		       cr.created_at, cr.updated_at,
		       COALESCE(sp.username, '') AS sender_username,
		       COALESCE(rp.username, '') AS receiver_username
		FROM connection_requests cr
		LEFT JOIN user_profiles sp ON sp.uid = cr.sender_uid
		LEFT JOIN user_profiles rp ON rp.uid = cr.receiver_uid
		WHERE cr.id = $1`

	var req domain.ConnectionRequest
	err := r.db.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.SenderUID, &req.ReceiverUID, &req.Status, &req.Message,
		&req.CreatedAt, &req.UpdatedAt, &req.SenderUsername, &req.ReceiverUsername,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *connectionRequestRepo) UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error {
	result, err := r.db.Exec(ctx,
		`UPDATE connection_requests SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *connectionRequestRepo) GetIncoming(ctx context.Context, uid string, status *domain.RequestStatus) ([]domain.ConnectionRequest, error) {
	return r.fetchForUser(ctx, `cr.receiver_uid = $1`, uid, status)
}

func (r *connectionRequestRepo) GetOutgoing(ctx context.Context, uid string, status *domain.RequestStatus) ([]domain.ConnectionRequest, error) {
	return r.fetchForUser(ctx, `cr.sender_uid = $1`, uid, status)
}

func (r *connectionRequestRepo) fetchForUser(ctx context.Context, cond string, uid string, status *domain.RequestStatus) ([]domain.ConnectionRequest, error) {
	query := `
		SELECT cr.id, cr.sender_uid, cr.receiver_uid, cr.status, cr.message,
		       cr.created_at, cr.updated_at,
		       COALESCE(sp.username, '') AS sender_username,
		       COALESCE(rp.username, '') AS receiver_username
		FROM connection_requests cr
		LEFT JOIN user_profiles sp ON sp.uid = cr.sender_uid
		LEFT JOIN user_profiles rp ON rp.uid = cr.receiver_uid
		WHERE ` + cond

	args := []any{uid}
	if status != nil {
		query += ` AND cr.status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY cr.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.ConnectionRequest
	for rows.Next() {
		var req domain.ConnectionRequest
		if err := rows.Scan(
			&req.ID, &req.SenderUID, &req.ReceiverUID, &req.Status, &req.Message,
			&req.CreatedAt, &req.UpdatedAt, &req.SenderUsername, &req.ReceiverUsername,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *connectionRequestRepo) GetLatestBetween(ctx context.Context, uidA, uidB string) (*domain.ConnectionRequest, error) {
	query := `
		SELECT id, sender_uid, receiver_uid, status, message, created_at, updated_at
		FROM connection_requests
		WHERE (sender_uid = $1 AND receiver_uid = $2)
		   OR (sender_uid = $2 AND receiver_uid = $1)
		ORDER BY created_at DESC
		LIMIT 1`

	var req domain.ConnectionRequest
	err := r.db.QueryRow(ctx, query, uidA, uidB).Scan(
		&req.ID, &req.SenderUID, &req.ReceiverUID, &req.Status, &req.Message,
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

func (r *connectionRequestRepo) HasAccepted(ctx context.Context, uidA, uidB string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM connection_requests
			WHERE status = $3
			  AND ((sender_uid = $1 AND receiver_uid = $2)
			    OR (sender_uid = $2 AND receiver_uid = $1))
		)`,
		uidA, uidB, domain.StatusAccepted).Scan(&exists)
	return exists, err
}

func (r *connectionRequestRepo) HasPending(ctx context.Context, senderUID, receiverUID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM connection_requests
			WHERE sender_uid = $1 AND receiver_uid = $2 AND status = $3
		)`,
		senderUID, receiverUID, domain.StatusPending).Scan(&exists)
	return exists, err
}
