package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mina-rz/YogaStudioBack/internal/models"
	"github.com/mina-rz/YogaStudioBack/internal/repository"
	"go.uber.org/zap"
)

type PaymentService struct {
	db            *pgxpool.Pool
	bookingRepo   *repository.BookingRepository
	paymentRepo   *repository.PaymentRepository
	sessionRepo   *repository.ClassSessionRepository
	classTypeRepo *repository.ClassTypeRepository
	userRepo      *repository.UserRepository
	checkout      CheckoutCreator
	notifier      Notifier
	currency      string
	logger        *zap.SugaredLogger
}

func NewPaymentService(
	db *pgxpool.Pool,
	bookingRepo *repository.BookingRepository,
	paymentRepo *repository.PaymentRepository,
	sessionRepo *repository.ClassSessionRepository,
	classTypeRepo *repository.ClassTypeRepository,
	userRepo *repository.UserRepository,
	checkout CheckoutCreator,
	notifier Notifier,
	currency string,
	logger *zap.SugaredLogger,
) *PaymentService {
	return &PaymentService{
		db:            db,
		bookingRepo:   bookingRepo,
		paymentRepo:   paymentRepo,
		sessionRepo:   sessionRepo,
		classTypeRepo: classTypeRepo,
		userRepo:      userRepo,
		checkout:      checkout,
		notifier:      notifier,
		currency:      currency,
		logger:        logger,
	}
}

type CheckoutURLs struct {
	SuccessURL string
	CancelURL  string
}

// CreateCheckout opens a checkout session for a pending booking. The price
// comes from the session's class type; the booking confirms later when the
// provider reports success through the webhook.
func (s *PaymentService) CreateCheckout(
	ctx context.Context,
	actorID int64,
	bookingID int64,
	urls CheckoutURLs,
) (*CheckoutSession, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if booking.UserID != actorID {
		return nil, ErrForbidden
	}
	if booking.Status != models.BookingStatusPending {
		return nil, ErrInvalidStateTransition
	}

	session, err := s.sessionRepo.GetByID(ctx, booking.SessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	classType, err := s.classTypeRepo.GetByID(ctx, session.ClassTypeID)
	if err != nil {
		return nil, err
	}

	checkoutSession, err := s.checkout.CreateSession(ctx, CreateCheckoutInput{
		BookingID:   booking.ID,
		UserID:      actorID,
		AmountCents: classType.PriceCents,
		Currency:    s.currency,
		SuccessURL:  urls.SuccessURL,
		CancelURL:   urls.CancelURL,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("checkout session created",
		"booking_id", booking.ID,
		"provider", s.checkout.Name(),
		"external_session_id", checkoutSession.ID,
		"amount_cents", checkoutSession.AmountCents)

	return checkoutSession, nil
}

type PaymentNotification struct {
	BookingID         int64
	AmountCents       int64
	Currency          string
	ExternalSessionID string
	ExternalIntentID  *string
}

// HandlePaymentSucceeded reconciles a provider success notification with
// its booking: confirm the booking, insert the succeeded payment row, and
// back-link it, all in one transaction. Redelivery of the same notification
// is a no-op — the booking row is locked, an already confirmed-with-payment
// booking short-circuits, and the unique index on external_session_id
// backstops concurrent duplicates.
func (s *PaymentService) HandlePaymentSucceeded(
	ctx context.Context,
	notification PaymentNotification,
) (*models.BookingDetail, error) {
	if notification.BookingID <= 0 || notification.AmountCents <= 0 || notification.ExternalSessionID == "" {
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
	txPaymentRepo := repository.NewPaymentRepository(tx)

	booking, err := txBookingRepo.GetByIDForUpdate(ctx, notification.BookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if booking.Status == models.BookingStatusCancelled {
		return nil, ErrInvalidStateTransition
	}

	if booking.Status == models.BookingStatusConfirmed && booking.PaymentID != nil {
		existing, err := txPaymentRepo.GetByBookingID(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		s.logger.Infow("duplicate payment notification ignored",
			"booking_id", booking.ID,
			"external_session_id", notification.ExternalSessionID)
		return &models.BookingDetail{Booking: *booking, Payment: existing}, nil
	}

	confirmed := booking
	if booking.Status == models.BookingStatusPending {
		confirmed, err = txBookingRepo.UpdateStatusIfCurrent(
			ctx,
			booking.ID,
			models.BookingStatusPending,
			models.BookingStatusConfirmed,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrInvalidStateTransition
			}
			return nil, err
		}
	}

	currency := notification.Currency
	if currency == "" {
		currency = s.currency
	}

	payment, err := txPaymentRepo.Create(ctx, repository.CreatePaymentInput{
		BookingID:         booking.ID,
		UserID:            booking.UserID,
		AmountCents:       notification.AmountCents,
		Currency:          currency,
		Status:            models.PaymentStatusSucceeded,
		Provider:          s.checkout.Name(),
		ExternalSessionID: notification.ExternalSessionID,
		ExternalIntentID:  notification.ExternalIntentID,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Lost a race against a concurrent delivery of the same
			// notification; discard this transaction's writes first so
			// the lookup sees only the winner's state.
			_ = tx.Rollback(ctx)
			return s.lookupReconciled(ctx, notification)
		}
		return nil, err
	}

	linked, err := txBookingRepo.SetPaymentID(ctx, booking.ID, payment.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Infow("payment reconciled",
		"booking_id", linked.ID,
		"payment_id", payment.ID,
		"amount_cents", payment.AmountCents,
		"external_session_id", payment.ExternalSessionID)

	go s.sendConfirmation(confirmed.UserID, confirmed.SessionID)

	return &models.BookingDetail{Booking: *linked, Payment: payment}, nil
}

// lookupReconciled resolves a 23505 on the payment insert. A true duplicate
// delivery means the winner already reconciled this booking, so its write is
// returned. A notification that reuses another booking's external session id
// is rejected outright; nothing was persisted for this booking.
func (s *PaymentService) lookupReconciled(ctx context.Context, notification PaymentNotification) (*models.BookingDetail, error) {
	payment, err := s.paymentRepo.GetByExternalSessionID(ctx, notification.ExternalSessionID)
	if err != nil {
		return nil, err
	}
	if payment.BookingID != notification.BookingID {
		return nil, ErrInvalidInput
	}
	booking, err := s.bookingRepo.GetByID(ctx, notification.BookingID)
	if err != nil {
		return nil, err
	}
	return &models.BookingDetail{Booking: *booking, Payment: payment}, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, offset, limit int) ([]models.Payment, int, error) {
	payments, err := s.paymentRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.paymentRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// sendConfirmation runs after commit on its own goroutine; failures are
// logged and never affect the booking.
func (s *PaymentService) sendConfirmation(userID, sessionID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warnw("confirmation lookup failed", "user_id", userID, "error", err)
		return
	}
	detail, err := s.sessionRepo.GetDetailByID(ctx, sessionID)
	if err != nil {
		s.logger.Warnw("confirmation lookup failed", "session_id", sessionID, "error", err)
		return
	}

	if err := s.notifier.SendBookingConfirmation(ctx, BookingConfirmation{
		To:        user.Email,
		ClassName: detail.ClassTypeName,
		StartsAt:  detail.StartsAt,
	}); err != nil {
		s.logger.Warnw("confirmation delivery failed", "user_id", userID, "error", err)
	}
}
