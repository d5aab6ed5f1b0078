package repository

import (
	"context"

	"github.com/mina-rz/YogaStudioBack/internal/models"
)

type CreateClassTypeInput struct {
	Name            string
	Description     *string
	DurationMinutes int
	DefaultCapacity int
	Difficulty      string
	PriceCents      int64
}

type ClassTypeRepository struct {
	db DBTX
}

func NewClassTypeRepository(db DBTX) *ClassTypeRepository {
	return &ClassTypeRepository{db: db}
}

func (r *ClassTypeRepository) Create(ctx context.Context, input CreateClassTypeInput) (*models.ClassType, error) {
	query := `
		INSERT INTO class_types (name, description, duration_min, default_capacity, difficulty, price_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, description, duration_min, default_capacity, difficulty, price_cents, created_at, updated_at
	`
	var classType models.ClassType
	err := r.db.QueryRow(
		ctx,
		query,
		input.Name,
		input.Description,
		input.DurationMinutes,
		input.DefaultCapacity,
		input.Difficulty,
		input.PriceCents,
	).Scan(
		&classType.ID,
		&classType.Name,
		&classType.Description,
		&classType.DurationMinutes,
		&classType.DefaultCapacity,
		&classType.Difficulty,
		&classType.PriceCents,
		&classType.CreatedAt,
		&classType.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &classType, nil
}

func (r *ClassTypeRepository) GetByID(ctx context.Context, id int64) (*models.ClassType, error) {
	query := `
		SELECT id, name, description, duration_min, default_capacity, difficulty, price_cents, created_at, updated_at
		FROM class_types
		WHERE id = $1
	`
	var classType models.ClassType
	err := r.db.QueryRow(ctx, query, id).Scan(
		&classType.ID,
		&classType.Name,
		&classType.Description,
		&classType.DurationMinutes,
		&classType.DefaultCapacity,
		&classType.Difficulty,
		&classType.PriceCents,
		&classType.CreatedAt,
		&classType.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &classType, nil
}

func (r *ClassTypeRepository) List(ctx context.Context) ([]models.ClassType, error) {
	query := `
		SELECT id, name, description, duration_min, default_capacity, difficulty, price_cents, created_at, updated_at
		FROM class_types
		ORDER BY name ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classTypes := make([]models.ClassType, 0)
	for rows.Next() {
		var classType models.ClassType
		if err := rows.Scan(
			&classType.ID,
			&classType.Name,
			&classType.Description,
			&classType.DurationMinutes,
			&classType.DefaultCapacity,
			&classType.Difficulty,
			&classType.PriceCents,
			&classType.CreatedAt,
			&classType.UpdatedAt,
		); err != nil {
			return nil, err
		}
		classTypes = append(classTypes, classType)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return classTypes, nil
}

func (r *ClassTypeRepository) Update(ctx context.Context, id int64, input CreateClassTypeInput) (*models.ClassType, error) {
	query := `
		UPDATE class_types
		SET name = $2, description = $3, duration_min = $4, default_capacity = $5, difficulty = $6, price_cents = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, description, duration_min, default_capacity, difficulty, price_cents, created_at, updated_at
	`
	var classType models.ClassType
	err := r.db.QueryRow(
		ctx,
		query,
		id,
		input.Name,
		input.Description,
		input.DurationMinutes,
		input.DefaultCapacity,
		input.Difficulty,
		input.PriceCents,
	).Scan(
		&classType.ID,
		&classType.Name,
		&classType.Description,
		&classType.DurationMinutes,
		&classType.DefaultCapacity,
		&classType.Difficulty,
		&classType.PriceCents,
		&classType.CreatedAt,
		&classType.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &classType, nil
}

func (r *ClassTypeRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM class_types WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
