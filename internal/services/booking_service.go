package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mina-rz/YogaStudioBack/internal/models"
	"github.com/mina-rz/YogaStudioBack/internal/repository"
	"go.uber.org/zap"
)

type BookingService struct {
	db             *pgxpool.Pool
	bookingRepo    *repository.BookingRepository
	sessionRepo    *repository.ClassSessionRepository
	paymentRepo    *repository.PaymentRepository
	passRepo       *repository.PassRepository
	instructorRepo *repository.InstructorRepository
	logger         *zap.SugaredLogger
}

func NewBookingService(
	db *pgxpool.Pool,
	bookingRepo *repository.BookingRepository,
	sessionRepo *repository.ClassSessionRepository,
	paymentRepo *repository.PaymentRepository,
	passRepo *repository.PassRepository,
	instructorRepo *repository.InstructorRepository,
	logger *zap.SugaredLogger,
) *BookingService {
	return &BookingService{
		db:             db,
		bookingRepo:    bookingRepo,
		sessionRepo:    sessionRepo,
		paymentRepo:    paymentRepo,
		passRepo:       passRepo,
		instructorRepo: instructorRepo,
		logger:         logger,
	}
}

type CreateBookingInput struct {
	SessionID int64
	UsePass   bool
}

// CreateBooking reserves a spot on a session. The capacity check and the
// insert run inside one transaction serialized per session with
// pg_advisory_xact_lock, so two concurrent requests for the last spot
// cannot both succeed; the partial unique index on non-cancelled
// (user_id, session_id) backstops the duplicate check.
//
// Checkout-paid bookings start pending and confirm through payment
// reconciliation. Pass-paid bookings confirm immediately, with the credit
// spent in the same transaction.
func (s *BookingService) CreateBooking(
	ctx context.Context,
	userID int64,
	input CreateBookingInput,
) (*models.BookingDetail, error) {
	if input.SessionID <= 0 {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txBookingRepo := repository.NewBookingRepository(tx)
	txSessionRepo := repository.NewClassSessionRepository(tx)
	txPassRepo := repository.NewPassRepository(tx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", input.SessionID); err != nil {
		return nil, err
	}

	session, err := txSessionRepo.GetByID(ctx, input.SessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if !session.StartsAt.After(time.Now().UTC()) {
		return nil, ErrInvalidInput
	}

	alreadyBooked, err := txBookingRepo.HasActiveForUserSession(ctx, userID, input.SessionID)
	if err != nil {
		return nil, err
	}
	if alreadyBooked {
		return nil, ErrAlreadyBooked
	}

	bookedCount, err := txBookingRepo.CountActiveBySession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if ComputeAvailability(session.Capacity, bookedCount).IsFull {
		return nil, ErrSessionFull
	}

	status := models.BookingStatusPending
	var passID *int64
	if input.UsePass {
		pass, err := txPassRepo.GetUsableForUpdate(ctx, userID, time.Now().UTC())
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNoUsablePass
			}
			return nil, err
		}
		if pass.Type == models.PassTypeCredits {
			if _, err := txPassRepo.AdjustCredits(ctx, pass.ID, -1); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, ErrNoUsablePass
				}
				return nil, err
			}
		}
		status = models.BookingStatusConfirmed
		passID = &pass.ID
	}

	booking, err := txBookingRepo.Create(ctx, repository.CreateBookingInput{
		UserID:    userID,
		SessionID: input.SessionID,
		Status:    status,
		PassID:    passID,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyBooked
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Infow("booking created",
		"booking_id", booking.ID,
		"session_id", booking.SessionID,
		"user_id", userID,
		"status", booking.Status)

	return &models.BookingDetail{Booking: *booking}, nil
}

// CancelBooking is idempotent: cancelling an already-cancelled booking is a
// no-op success so client retries stay safe. A credit spent through a pass
// is refunded in the same transaction.
func (s *BookingService) CancelBooking(
	ctx context.Context,
	actorID int64,
	role string,
	bookingID int64,
) (*models.BookingDetail, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txBookingRepo := repository.NewBookingRepository(tx)
	txPassRepo := repository.NewPassRepository(tx)

	booking, err := txBookingRepo.GetByIDForUpdate(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if role != models.RoleAdmin && booking.UserID != actorID {
		return nil, ErrForbidden
	}

	if booking.Status == models.BookingStatusCancelled {
		return s.GetBooking(ctx, actorID, role, bookingID)
	}

	cancelled, err := txBookingRepo.UpdateStatusIfCurrent(ctx, bookingID, booking.Status, models.BookingStatusCancelled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	if booking.PassID != nil {
		pass, err := txPassRepo.GetByID(ctx, *booking.PassID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if err == nil && pass.Type == models.PassTypeCredits {
			if _, err := txPassRepo.AdjustCredits(ctx, pass.ID, 1); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Infow("booking cancelled",
		"booking_id", cancelled.ID,
		"session_id", cancelled.SessionID,
		"actor_id", actorID)

	return s.GetBooking(ctx, actorID, role, bookingID)
}

// UpdateStatus applies an explicitly requested transition. Cancellation is
// terminal; owners may only cancel, admins may also confirm a pending
// booking (for example after taking payment at the front desk).
func (s *BookingService) UpdateStatus(
	ctx context.Context,
	actorID int64,
	role string,
	bookingID int64,
	requestedStatus string,
) (*models.BookingDetail, error) {
	nextStatus, err := normalizeBookingStatus(requestedStatus)
	if err != nil {
		return nil, err
	}

	if nextStatus == models.BookingStatusCancelled {
		return s.CancelBooking(ctx, actorID, role, bookingID)
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if err := validateBookingTransition(role, actorID, booking, nextStatus); err != nil {
		return nil, err
	}

	updated, err := s.bookingRepo.UpdateStatusIfCurrent(ctx, bookingID, booking.Status, nextStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	return s.GetBooking(ctx, actorID, role, updated.ID)
}

func (s *BookingService) GetBooking(
	ctx context.Context,
	actorID int64,
	role string,
	bookingID int64,
) (*models.BookingDetail, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	allowed, err := s.canAccessBooking(ctx, actorID, role, booking)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbidden
	}

	detail := &models.BookingDetail{Booking: *booking}
	payment, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		detail.Payment = payment
	}
	return detail, nil
}

func (s *BookingService) ListBookings(
	ctx context.Context,
	actorID int64,
	role string,
	filter repository.BookingListFilter,
	offset, limit int,
) ([]models.BookingDetail, int, error) {
	switch role {
	case models.RoleUser:
		filter.UserID = actorID
	case models.RoleInstructor:
		// Instructors see bookings for their own sessions only.
		if filter.SessionID <= 0 {
			return nil, 0, ErrInvalidInput
		}
		ownsSession, err := s.instructorOwnsSession(ctx, actorID, filter.SessionID)
		if err != nil {
			return nil, 0, err
		}
		if !ownsSession {
			return nil, 0, ErrForbidden
		}
		filter.UserID = 0
	case models.RoleAdmin:
	default:
		return nil, 0, ErrForbidden
	}

	bookings, err := s.bookingRepo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.bookingRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	bookingIDs := make([]int64, 0, len(bookings))
	for _, booking := range bookings {
		bookingIDs = append(bookingIDs, booking.ID)
	}

	paymentsByBooking, err := s.paymentRepo.ListByBookingIDs(ctx, bookingIDs)
	if err != nil {
		return nil, 0, err
	}

	details := make([]models.BookingDetail, 0, len(bookings))
	for _, booking := range bookings {
		detail := models.BookingDetail{Booking: booking}
		if payment, ok := paymentsByBooking[booking.ID]; ok {
			paymentCopy := payment
			detail.Payment = &paymentCopy
		}
		details = append(details, detail)
	}

	return details, total, nil
}

func (s *BookingService) canAccessBooking(
	ctx context.Context,
	actorID int64,
	role string,
	booking *models.Booking,
) (bool, error) {
	switch role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleUser:
		return booking.UserID == actorID, nil
	case models.RoleInstructor:
		if booking.UserID == actorID {
			return true, nil
		}
		return s.instructorOwnsSession(ctx, actorID, booking.SessionID)
	default:
		return false, nil
	}
}

func (s *BookingService) instructorOwnsSession(ctx context.Context, actorID, sessionID int64) (bool, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrSessionNotFound
		}
		return false, err
	}
	instructor, err := s.instructorRepo.GetByID(ctx, session.InstructorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return instructor.UserID != nil && *instructor.UserID == actorID, nil
}

func normalizeBookingStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "confirm", "confirmed":
		return models.BookingStatusConfirmed, nil
	case "cancel", "cancelled", "canceled":
		return models.BookingStatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

func validateBookingTransition(
	role string,
	actorID int64,
	booking *models.Booking,
	nextStatus string,
) error {
	if booking.Status == models.BookingStatusCancelled {
		return ErrInvalidStateTransition
	}

	switch role {
	case models.RoleUser:
		if booking.UserID != actorID {
			return ErrForbidden
		}
		// Owners can only cancel; confirmation happens through payment.
		return ErrForbidden
	case models.RoleAdmin:
		if nextStatus == models.BookingStatusConfirmed && booking.Status != models.BookingStatusPending {
			return ErrInvalidStateTransition
		}
		return nil
	default:
		return ErrForbidden
	}
}
