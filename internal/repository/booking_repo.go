package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/mina-rz/YogaStudioBack/internal/models"
)

type CreateBookingInput struct {
	UserID    int64
	SessionID int64
	Status    string
	PassID    *int64
}

type BookingListFilter struct {
	UserID    int64
	SessionID int64
	Status    string
}

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = "id, user_id, session_id, status, pass_id, payment_id, created_at, updated_at"

func scanBooking(row pgx.Row, booking *models.Booking) error {
	return row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.SessionID,
		&booking.Status,
		&booking.PassID,
		&booking.PaymentID,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
}

func (r *BookingRepository) Create(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	query := fmt.Sprintf(`
		INSERT INTO bookings (user_id, session_id, status, pass_id)
		VALUES ($1, $2, $3, $4)
		RETURNING %s
	`, bookingColumns)

	var booking models.Booking
	err := scanBooking(r.db.QueryRow(ctx, query, input.UserID, input.SessionID, input.Status, input.PassID), &booking)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID int64) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns)

	var booking models.Booking
	if err := scanBooking(r.db.QueryRow(ctx, query, bookingID), &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, bookingID int64) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1 FOR UPDATE`, bookingColumns)

	var booking models.Booking
	if err := scanBooking(r.db.QueryRow(ctx, query, bookingID), &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// CountActiveBySession counts the bookings currently holding a spot. Both
// pending and confirmed bookings count; only cancellation frees the spot.
func (r *BookingRepository) CountActiveBySession(ctx context.Context, sessionID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE session_id = $1 AND status <> 'cancelled'
	`
	var count int
	if err := r.db.QueryRow(ctx, query, sessionID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *BookingRepository) HasActiveForUserSession(ctx context.Context, userID, sessionID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM bookings
			WHERE user_id = $1 AND session_id = $2 AND status <> 'cancelled'
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, sessionID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *BookingRepository) List(ctx context.Context, filter BookingListFilter, offset, limit int) ([]models.Booking, error) {
	args := []any{}
	whereParts := []string{"TRUE"}

	if filter.UserID > 0 {
		args = append(args, filter.UserID)
		whereParts = append(whereParts, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.SessionID > 0 {
		args = append(args, filter.SessionID)
		whereParts = append(whereParts, fmt.Sprintf("session_id = $%d", len(args)))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	args = append(args, offset, limit)
	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings
		WHERE %s
		ORDER BY created_at DESC, id DESC
		OFFSET $%d LIMIT $%d
	`, bookingColumns, strings.Join(whereParts, " AND "), len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		var booking models.Booking
		if err := scanBooking(rows, &booking); err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *BookingRepository) Count(ctx context.Context, filter BookingListFilter) (int, error) {
	args := []any{}
	whereParts := []string{"TRUE"}

	if filter.UserID > 0 {
		args = append(args, filter.UserID)
		whereParts = append(whereParts, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.SessionID > 0 {
		args = append(args, filter.SessionID)
		whereParts = append(whereParts, fmt.Sprintf("session_id = $%d", len(args)))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM bookings WHERE %s`, strings.Join(whereParts, " AND "))

	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *BookingRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	bookingID int64,
	currentStatus string,
	nextStatus string,
) (*models.Booking, error) {
	query := fmt.Sprintf(`
		UPDATE bookings
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, bookingColumns)

	var booking models.Booking
	if err := scanBooking(r.db.QueryRow(ctx, query, bookingID, currentStatus, nextStatus), &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) SetPaymentID(ctx context.Context, bookingID, paymentID int64) (*models.Booking, error) {
	query := fmt.Sprintf(`
		UPDATE bookings
		SET payment_id = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, bookingColumns)

	var booking models.Booking
	if err := scanBooking(r.db.QueryRow(ctx, query, bookingID, paymentID), &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}
