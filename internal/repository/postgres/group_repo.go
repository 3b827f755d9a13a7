package postgres

import (
	"context"
	"errors"
	"time"

	"go-studybuddy-backend/internal/domain"
	"go-studybuddy-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type groupRepo struct {
	db *pgxpool.Pool
}

func NewGroupRepository(db *pgxpool.Pool) domain.GroupRepository {
	return &groupRepo{db: db}
}

// Create inserts the group, its admin member and its initial courses in one
// transaction so a half-created group never exists.
func (r *groupRepo) Create(ctx context.Context, group *domain.Group, adminUID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	group.CreatedAt = now
	group.UpdatedAt = now

	err = tx.QueryRow(ctx, `
		INSERT INTO groups (name, description, privacy, is_visible, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		group.Name, group.Description, group.Privacy, group.IsVisible,
		group.CreatedAt, group.UpdatedAt,
	).Scan(&group.ID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO group_members (group_id, user_uid, role, joined_at)
		VALUES ($1, $2, $3, $4)`,
		group.ID, adminUID, domain.RoleAdmin, now,
	); err != nil {
		return err
	}

	for _, c := range group.Courses {
		if _, err := tx.Exec(ctx, `
			INSERT INTO group_courses (group_id, course_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			group.ID, c.CourseID,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *groupRepo) GetByID(ctx context.Context, id int64) (*domain.Group, error) {
	query := `
		SELECT g.id, g.name, g.description, g.privacy, g.is_visible,
		       g.created_at, g.updated_at,
		       (SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id) AS member_count
		FROM groups g
		WHERE g.id = $1`

	var g domain.Group
	err := r.db.QueryRow(ctx, query, id).Scan(
		&g.ID, &g.Name, &g.Description, &g.Privacy, &g.IsVisible,
		&g.CreatedAt, &g.UpdatedAt, &g.MemberCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	courses, err := r.getGroupCourses(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Courses = courses

	members, err := r.GetMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Members = members

	return &g, nil
}

func (r *groupRepo) GetUserGroups(ctx context.Context, uid string) ([]domain.Group, error) {
	query := `
		SELECT g.id, g.name, g.description, g.privacy, g.is_visible,
		       g.created_at, g.updated_at,
		       (SELECT COUNT(*) FROM group_members m2 WHERE m2.group_id = g.id) AS member_count
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_uid = $1
		ORDER BY g.created_at DESC`

	return r.fetchGroups(ctx, query, uid)
}

func (r *groupRepo) GetVisibleGroups(ctx context.Context) ([]domain.Group, error) {
	query := `
		SELECT g.id, g.name, g.description, g.privacy, g.is_visible,
		       g.created_at, g.updated_at,
		       (SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id) AS member_count
		FROM groups g
		WHERE g.is_visible = TRUE
		ORDER BY g.created_at DESC`

	return r.fetchGroups(ctx, query)
}

func (r *groupRepo) fetchGroups(ctx context.Context, query string, args ...any) ([]domain.Group, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.Group
	byID := make(map[int64]int)
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(
			&g.ID, &g.Name, &g.Description, &g.Privacy, &g.IsVisible,
			&g.CreatedAt, &g.UpdatedAt, &g.MemberCount,
		); err != nil {
			return nil, err
		}
		g.Courses = []domain.Course{}
		byID[g.ID] = len(groups)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return []domain.Group{}, nil
	}

	ids := make([]int64, 0, len(groups))
	for id := range byID {
		ids = append(ids, id)
	}
	courseRows, err := r.db.Query(ctx, `
		SELECT gc.group_id, c.course_id, c.title
		FROM group_courses gc
		JOIN courses c ON c.course_id = gc.course_id
		WHERE gc.group_id = ANY($1)
		ORDER BY c.course_id`, ids)
	if err != nil {
		return nil, err
	}
	defer courseRows.Close()

	for courseRows.Next() {
		var groupID int64
		var c domain.Course
		if err := courseRows.Scan(&groupID, &c.CourseID, &c.Title); err != nil {
			return nil, err
		}
		if i, ok := byID[groupID]; ok {
			groups[i].Courses = append(groups[i].Courses, c)
		}
	}
	return groups, courseRows.Err()
}

func (r *groupRepo) Update(ctx context.Context, group *domain.Group) error {
	query := `
		UPDATE groups
		SET name = $2, description = $3, privacy = $4, is_visible = $5, updated_at = $6
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		group.ID, group.Name, group.Description, group.Privacy, group.IsVisible, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *groupRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *groupRepo) AddMember(ctx context.Context, groupID int64, uid string, role domain.GroupRole) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO group_members (group_id, user_uid, role, joined_at)
		VALUES ($1, $2, $3, $4)`,
		groupID, uid, role, time.Now())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrAlreadyMember
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *groupRepo) RemoveMember(ctx context.Context, groupID int64, uid string) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM group_members WHERE group_id = $1 AND user_uid = $2`,
		groupID, uid)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *groupRepo) GetMembers(ctx context.Context, groupID int64) ([]domain.GroupMember, error) {
	query := `
		SELECT m.group_id, m.user_uid, m.role, m.joined_at,
		       COALESCE(p.username, '') AS username
		FROM group_members m
		LEFT JOIN user_profiles p ON p.uid = m.user_uid
		WHERE m.group_id = $1
		ORDER BY m.joined_at`

	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.GroupMember
	for rows.Next() {
		var m domain.GroupMember
		if err := rows.Scan(&m.GroupID, &m.UserUID, &m.Role, &m.JoinedAt, &m.Username); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *groupRepo) UpdateMemberRole(ctx context.Context, groupID int64, uid string, role domain.GroupRole) error {
	result, err := r.db.Exec(ctx,
		`UPDATE group_members SET role = $3 WHERE group_id = $1 AND user_uid = $2`,
		groupID, uid, role)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *groupRepo) IsMember(ctx context.Context, groupID int64, uid string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_uid = $2)`,
		groupID, uid).Scan(&exists)
	return exists, err
}

func (r *groupRepo) IsAdmin(ctx context.Context, groupID int64, uid string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM group_members
			WHERE group_id = $1 AND user_uid = $2 AND role = $3
		)`,
		groupID, uid, domain.RoleAdmin).Scan(&exists)
	return exists, err
}

func (r *groupRepo) AddCourse(ctx context.Context, groupID int64, courseID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO group_courses (group_id, course_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		groupID, courseID)
	return err
}

func (r *groupRepo) RemoveCourse(ctx context.Context, groupID int64, courseID string) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM group_courses WHERE group_id = $1 AND course_id = $2`,
		groupID, courseID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *groupRepo) getGroupCourses(ctx context.Context, groupID int64) ([]domain.Course, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.course_id, c.title
		FROM group_courses gc
		JOIN courses c ON c.course_id = gc.course_id
		WHERE gc.group_id = $1
		ORDER BY c.course_id`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []domain.Course{}
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.CourseID, &c.Title); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}
