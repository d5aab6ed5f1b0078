package repository

import (
	"context"

	"github.com/mina-rz/YogaStudioBack/internal/models"
)

type CreateInstructorInput struct {
	UserID    *int64
	FullName  string
	Bio       *string
	AvatarURL *string
}

type InstructorRepository struct {
	db DBTX
}

func NewInstructorRepository(db DBTX) *InstructorRepository {
	return &InstructorRepository{db: db}
}

func (r *InstructorRepository) Create(ctx context.Context, input CreateInstructorInput) (*models.Instructor, error) {
	query := `
		INSERT INTO instructors (user_id, full_name, bio, avatar_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, full_name, bio, avatar_url, created_at, updated_at
	`
	var instructor models.Instructor
	err := r.db.QueryRow(ctx, query, input.UserID, input.FullName, input.Bio, input.AvatarURL).Scan(
		&instructor.ID,
		&instructor.UserID,
		&instructor.FullName,
		&instructor.Bio,
		&instructor.AvatarURL,
		&instructor.CreatedAt,
		&instructor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (r *InstructorRepository) GetByID(ctx context.Context, id int64) (*models.Instructor, error) {
	query := `
		SELECT id, user_id, full_name, bio, avatar_url, created_at, updated_at
		FROM instructors
		WHERE id = $1
	`
	var instructor models.Instructor
	err := r.db.QueryRow(ctx, query, id).Scan(
		&instructor.ID,
		&instructor.UserID,
		&instructor.FullName,
		&instructor.Bio,
		&instructor.AvatarURL,
		&instructor.CreatedAt,
		&instructor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (r *InstructorRepository) List(ctx context.Context) ([]models.Instructor, error) {
	query := `
		SELECT id, user_id, full_name, bio, avatar_url, created_at, updated_at
		FROM instructors
		ORDER BY full_name ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	instructors := make([]models.Instructor, 0)
	for rows.Next() {
		var instructor models.Instructor
		if err := rows.Scan(
			&instructor.ID,
			&instructor.UserID,
			&instructor.FullName,
			&instructor.Bio,
			&instructor.AvatarURL,
			&instructor.CreatedAt,
			&instructor.UpdatedAt,
		); err != nil {
			return nil, err
		}
		instructors = append(instructors, instructor)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return instructors, nil
}

func (r *InstructorRepository) Update(ctx context.Context, id int64, input CreateInstructorInput) (*models.Instructor, error) {
	query := `
		UPDATE instructors
		SET user_id = $2, full_name = $3, bio = $4, avatar_url = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, full_name, bio, avatar_url, created_at, updated_at
	`
	var instructor models.Instructor
	err := r.db.QueryRow(ctx, query, id, input.UserID, input.FullName, input.Bio, input.AvatarURL).Scan(
		&instructor.ID,
		&instructor.UserID,
		&instructor.FullName,
		&instructor.Bio,
		&instructor.AvatarURL,
		&instructor.CreatedAt,
		&instructor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (r *InstructorRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM instructors WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
