package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mina-rz/YogaStudioBack/internal/models"
)

type CreatePassInput struct {
	UserID           int64
	Type             string
	CreditsRemaining *int
	ExpiresAt        *time.Time
}

type PassRepository struct {
	db DBTX
}

func NewPassRepository(db DBTX) *PassRepository {
	return &PassRepository{db: db}
}

const passColumns = "id, user_id, type, credits_remaining, expires_at, created_at, updated_at"

func scanPass(row pgx.Row, pass *models.Pass) error {
	return row.Scan(
		&pass.ID,
		&pass.UserID,
		&pass.Type,
		&pass.CreditsRemaining,
		&pass.ExpiresAt,
		&pass.CreatedAt,
		&pass.UpdatedAt,
	)
}

func (r *PassRepository) Create(ctx context.Context, input CreatePassInput) (*models.Pass, error) {
	query := fmt.Sprintf(`
		INSERT INTO passes (user_id, type, credits_remaining, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING %s
	`, passColumns)

	var pass models.Pass
	err := scanPass(r.db.QueryRow(ctx, query, input.UserID, input.Type, input.CreditsRemaining, input.ExpiresAt), &pass)
	if err != nil {
		return nil, err
	}
	return &pass, nil
}

func (r *PassRepository) GetByID(ctx context.Context, passID int64) (*models.Pass, error) {
	query := fmt.Sprintf(`SELECT %s FROM passes WHERE id = $1`, passColumns)

	var pass models.Pass
	if err := scanPass(r.db.QueryRow(ctx, query, passID), &pass); err != nil {
		return nil, err
	}
	return &pass, nil
}

// GetUsableForUpdate locks and returns a pass the user can pay with right
// now: unlimited, or holding at least one credit, and not expired. Unlimited
// passes win over credit bundles so credits are not burned needlessly.
func (r *PassRepository) GetUsableForUpdate(ctx context.Context, userID int64, at time.Time) (*models.Pass, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM passes
		WHERE user_id = $1
		  AND (expires_at IS NULL OR expires_at > $2)
		  AND (type = 'unlimited' OR credits_remaining > 0)
		ORDER BY (type = 'unlimited') DESC, expires_at ASC NULLS LAST, id ASC
		LIMIT 1
		FOR UPDATE
	`, passColumns)

	var pass models.Pass
	if err := scanPass(r.db.QueryRow(ctx, query, userID, at), &pass); err != nil {
		return nil, err
	}
	return &pass, nil
}

func (r *PassRepository) ListByUser(ctx context.Context, userID int64) ([]models.Pass, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM passes
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, passColumns)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passes := make([]models.Pass, 0)
	for rows.Next() {
		var pass models.Pass
		if err := scanPass(rows, &pass); err != nil {
			return nil, err
		}
		passes = append(passes, pass)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return passes, nil
}

// AdjustCredits moves credits_remaining by delta for credit passes. The
// guard keeps the count from going negative under concurrent spends.
func (r *PassRepository) AdjustCredits(ctx context.Context, passID int64, delta int) (*models.Pass, error) {
	query := fmt.Sprintf(`
		UPDATE passes
		SET credits_remaining = credits_remaining + $2, updated_at = NOW()
		WHERE id = $1 AND type = 'credits' AND credits_remaining + $2 >= 0
		RETURNING %s
	`, passColumns)

	var pass models.Pass
	if err := scanPass(r.db.QueryRow(ctx, query, passID, delta), &pass); err != nil {
		return nil, err
	}
	return &pass, nil
}
