package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mina-rz/YogaStudioBack/internal/models"
)

type CreateClassSessionInput struct {
	ClassTypeID  int64
	InstructorID int64
	StartsAt     time.Time
	EndsAt       time.Time
	Capacity     int
	Location     *string
}

type SessionListFilter struct {
	ClassTypeID  int64
	InstructorID int64
	Timeframe    string
}

type ClassSessionRepository struct {
	db DBTX
}

func NewClassSessionRepository(db DBTX) *ClassSessionRepository {
	return &ClassSessionRepository{db: db}
}

const classSessionColumns = "id, class_type_id, instructor_id, starts_at, ends_at, capacity, location, created_at, updated_at"

func scanClassSession(row pgx.Row, session *models.ClassSession) error {
	return row.Scan(
		&session.ID,
		&session.ClassTypeID,
		&session.InstructorID,
		&session.StartsAt,
		&session.EndsAt,
		&session.Capacity,
		&session.Location,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
}

func (r *ClassSessionRepository) Create(ctx context.Context, input CreateClassSessionInput) (*models.ClassSession, error) {
	query := fmt.Sprintf(`
		INSERT INTO class_sessions (class_type_id, instructor_id, starts_at, ends_at, capacity, location)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`, classSessionColumns)

	var session models.ClassSession
	err := scanClassSession(r.db.QueryRow(
		ctx,
		query,
		input.ClassTypeID,
		input.InstructorID,
		input.StartsAt,
		input.EndsAt,
		input.Capacity,
		input.Location,
	), &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ClassSessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.ClassSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_sessions WHERE id = $1`, classSessionColumns)

	var session models.ClassSession
	if err := scanClassSession(r.db.QueryRow(ctx, query, sessionID), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ClassSessionRepository) GetDetailByID(ctx context.Context, sessionID int64) (*models.SessionDetail, error) {
	query := `
		SELECT s.id, s.class_type_id, s.instructor_id, s.starts_at, s.ends_at, s.capacity, s.location,
		       s.created_at, s.updated_at, ct.name, i.full_name
		FROM class_sessions s
		JOIN class_types ct ON ct.id = s.class_type_id
		JOIN instructors i ON i.id = s.instructor_id
		WHERE s.id = $1
	`
	var detail models.SessionDetail
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&detail.ID,
		&detail.ClassTypeID,
		&detail.InstructorID,
		&detail.StartsAt,
		&detail.EndsAt,
		&detail.Capacity,
		&detail.Location,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.ClassTypeName,
		&detail.InstructorName,
	)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *ClassSessionRepository) List(ctx context.Context, filter SessionListFilter, offset, limit int) ([]models.SessionDetail, error) {
	args := []any{}
	whereParts := []string{"TRUE"}

	if filter.ClassTypeID > 0 {
		args = append(args, filter.ClassTypeID)
		whereParts = append(whereParts, fmt.Sprintf("s.class_type_id = $%d", len(args)))
	}
	if filter.InstructorID > 0 {
		args = append(args, filter.InstructorID)
		whereParts = append(whereParts, fmt.Sprintf("s.instructor_id = $%d", len(args)))
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(whereParts, "s.ends_at > NOW()")
	case "past":
		whereParts = append(whereParts, "s.ends_at <= NOW()")
	}

	args = append(args, offset, limit)
	query := fmt.Sprintf(`
		SELECT s.id, s.class_type_id, s.instructor_id, s.starts_at, s.ends_at, s.capacity, s.location,
		       s.created_at, s.updated_at, ct.name, i.full_name
		FROM class_sessions s
		JOIN class_types ct ON ct.id = s.class_type_id
		JOIN instructors i ON i.id = s.instructor_id
		WHERE %s
		ORDER BY s.starts_at ASC, s.id ASC
		OFFSET $%d LIMIT $%d
	`, strings.Join(whereParts, " AND "), len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]models.SessionDetail, 0)
	for rows.Next() {
		var detail models.SessionDetail
		if err := rows.Scan(
			&detail.ID,
			&detail.ClassTypeID,
			&detail.InstructorID,
			&detail.StartsAt,
			&detail.EndsAt,
			&detail.Capacity,
			&detail.Location,
			&detail.CreatedAt,
			&detail.UpdatedAt,
			&detail.ClassTypeName,
			&detail.InstructorName,
		); err != nil {
			return nil, err
		}
		details = append(details, detail)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return details, nil
}

func (r *ClassSessionRepository) Count(ctx context.Context, filter SessionListFilter) (int, error) {
	args := []any{}
	whereParts := []string{"TRUE"}

	if filter.ClassTypeID > 0 {
		args = append(args, filter.ClassTypeID)
		whereParts = append(whereParts, fmt.Sprintf("class_type_id = $%d", len(args)))
	}
	if filter.InstructorID > 0 {
		args = append(args, filter.InstructorID)
		whereParts = append(whereParts, fmt.Sprintf("instructor_id = $%d", len(args)))
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(whereParts, "ends_at > NOW()")
	case "past":
		whereParts = append(whereParts, "ends_at <= NOW()")
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM class_sessions WHERE %s`, strings.Join(whereParts, " AND "))

	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ClassSessionRepository) Update(ctx context.Context, sessionID int64, input CreateClassSessionInput) (*models.ClassSession, error) {
	query := fmt.Sprintf(`
		UPDATE class_sessions
		SET class_type_id = $2, instructor_id = $3, starts_at = $4, ends_at = $5, capacity = $6, location = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, classSessionColumns)

	var session models.ClassSession
	err := scanClassSession(r.db.QueryRow(
		ctx,
		query,
		sessionID,
		input.ClassTypeID,
		input.InstructorID,
		input.StartsAt,
		input.EndsAt,
		input.Capacity,
		input.Location,
	), &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ClassSessionRepository) Delete(ctx context.Context, sessionID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM class_sessions WHERE id = $1`, sessionID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
