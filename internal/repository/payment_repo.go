package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mina-rz/YogaStudioBack/internal/models"
)

type CreatePaymentInput struct {
	BookingID         int64
	UserID            int64
	AmountCents       int64
	Currency          string
	Status            string
	Provider          string
	ExternalSessionID string
	ExternalIntentID  *string
}

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = "id, booking_id, user_id, amount_cents, currency, status, provider, external_session_id, external_intent_id, created_at"

func scanPayment(row pgx.Row, payment *models.Payment) error {
	return row.Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.UserID,
		&payment.AmountCents,
		&payment.Currency,
		&payment.Status,
		&payment.Provider,
		&payment.ExternalSessionID,
		&payment.ExternalIntentID,
		&payment.CreatedAt,
	)
}

func (r *PaymentRepository) Create(ctx context.Context, input CreatePaymentInput) (*models.Payment, error) {
	query := fmt.Sprintf(`
		INSERT INTO payments (booking_id, user_id, amount_cents, currency, status, provider, external_session_id, external_intent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, paymentColumns)

	var payment models.Payment
	err := scanPayment(r.db.QueryRow(
		ctx,
		query,
		input.BookingID,
		input.UserID,
		input.AmountCents,
		input.Currency,
		input.Status,
		input.Provider,
		input.ExternalSessionID,
		input.ExternalIntentID,
	), &payment)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*models.Payment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM payments
		WHERE booking_id = $1
		ORDER BY id DESC
		LIMIT 1
	`, paymentColumns)

	var payment models.Payment
	if err := scanPayment(r.db.QueryRow(ctx, query, bookingID), &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByExternalSessionID(ctx context.Context, externalSessionID string) (*models.Payment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM payments
		WHERE external_session_id = $1
	`, paymentColumns)

	var payment models.Payment
	if err := scanPayment(r.db.QueryRow(ctx, query, externalSessionID), &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) ListByBookingIDs(ctx context.Context, bookingIDs []int64) (map[int64]models.Payment, error) {
	payments := make(map[int64]models.Payment, len(bookingIDs))
	if len(bookingIDs) == 0 {
		return payments, nil
	}

	query := `
		SELECT DISTINCT ON (booking_id) id, booking_id, user_id, amount_cents, currency, status, provider, external_session_id, external_intent_id, created_at
		FROM payments
		WHERE booking_id = ANY($1)
		ORDER BY booking_id, id DESC
	`

	rows, err := r.db.Query(ctx, query, bookingIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var payment models.Payment
		if err := scanPayment(rows, &payment); err != nil {
			return nil, err
		}
		payments[payment.BookingID] = payment
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *PaymentRepository) List(ctx context.Context, offset, limit int) ([]models.Payment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM payments
		ORDER BY id DESC
		OFFSET $1 LIMIT $2
	`, paymentColumns)

	rows, err := r.db.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]models.Payment, 0)
	for rows.Next() {
		var payment models.Payment
		if err := scanPayment(rows, &payment); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *PaymentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
