package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mina-rz/YogaStudioBack/internal/models"
	"github.com/mina-rz/YogaStudioBack/internal/repository"
)

// ScheduleService is the session directory: class types, instructors and
// scheduled sessions, plus the availability reads the booking flow and the
// public schedule share.
type ScheduleService struct {
	sessionRepo    *repository.ClassSessionRepository
	classTypeRepo  *repository.ClassTypeRepository
	instructorRepo *repository.InstructorRepository
	bookingRepo    *repository.BookingRepository
}

func NewScheduleService(
	sessionRepo *repository.ClassSessionRepository,
	classTypeRepo *repository.ClassTypeRepository,
	instructorRepo *repository.InstructorRepository,
	bookingRepo *repository.BookingRepository,
) *ScheduleService {
	return &ScheduleService{
		sessionRepo:    sessionRepo,
		classTypeRepo:  classTypeRepo,
		instructorRepo: instructorRepo,
		bookingRepo:    bookingRepo,
	}
}

func (s *ScheduleService) ListSessions(
	ctx context.Context,
	filter repository.SessionListFilter,
	offset, limit int,
) ([]models.SessionDetail, int, error) {
	details, err := s.sessionRepo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.sessionRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	for i := range details {
		availability, err := s.GetAvailability(ctx, details[i].ID)
		if err != nil {
			return nil, 0, err
		}
		details[i].Availability = availability
	}

	return details, total, nil
}

func (s *ScheduleService) GetSession(ctx context.Context, sessionID int64) (*models.SessionDetail, error) {
	detail, err := s.sessionRepo.GetDetailByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	availability, err := s.GetAvailability(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	detail.Availability = availability
	return detail, nil
}

func (s *ScheduleService) GetAvailability(ctx context.Context, sessionID int64) (*models.Availability, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	bookedCount, err := s.bookingRepo.CountActiveBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	availability := ComputeAvailability(session.Capacity, bookedCount)
	return &availability, nil
}

func (s *ScheduleService) CreateSession(ctx context.Context, input repository.CreateClassSessionInput) (*models.ClassSession, error) {
	if err := validateSessionInput(input); err != nil {
		return nil, err
	}

	if input.Capacity == 0 {
		classType, err := s.classTypeRepo.GetByID(ctx, input.ClassTypeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrClassTypeNotFound
			}
			return nil, err
		}
		input.Capacity = classType.DefaultCapacity
	}

	session, err := s.sessionRepo.Create(ctx, input)
	if err != nil {
		return nil, mapSessionReferenceError(err)
	}
	return session, nil
}

func (s *ScheduleService) UpdateSession(ctx context.Context, sessionID int64, input repository.CreateClassSessionInput) (*models.ClassSession, error) {
	if err := validateSessionInput(input); err != nil {
		return nil, err
	}
	if input.Capacity <= 0 {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.Update(ctx, sessionID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, mapSessionReferenceError(err)
	}
	return session, nil
}

func (s *ScheduleService) DeleteSession(ctx context.Context, sessionID int64) error {
	deleted, err := s.sessionRepo.Delete(ctx, sessionID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrSessionHasBookings
		}
		return err
	}
	if !deleted {
		return ErrSessionNotFound
	}
	return nil
}

func (s *ScheduleService) ListClassTypes(ctx context.Context) ([]models.ClassType, error) {
	return s.classTypeRepo.List(ctx)
}

func (s *ScheduleService) CreateClassType(ctx context.Context, input repository.CreateClassTypeInput) (*models.ClassType, error) {
	if err := validateClassTypeInput(input); err != nil {
		return nil, err
	}
	return s.classTypeRepo.Create(ctx, input)
}

func (s *ScheduleService) UpdateClassType(ctx context.Context, id int64, input repository.CreateClassTypeInput) (*models.ClassType, error) {
	if err := validateClassTypeInput(input); err != nil {
		return nil, err
	}
	classType, err := s.classTypeRepo.Update(ctx, id, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClassTypeNotFound
		}
		return nil, err
	}
	return classType, nil
}

// DeleteClassType refuses while sessions still reference the class type;
// the restrict FK reports that as 23503.
func (s *ScheduleService) DeleteClassType(ctx context.Context, id int64) error {
	deleted, err := s.classTypeRepo.Delete(ctx, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrClassTypeInUse
		}
		return err
	}
	if !deleted {
		return ErrClassTypeNotFound
	}
	return nil
}

func (s *ScheduleService) ListInstructors(ctx context.Context) ([]models.Instructor, error) {
	return s.instructorRepo.List(ctx)
}

func (s *ScheduleService) CreateInstructor(ctx context.Context, input repository.CreateInstructorInput) (*models.Instructor, error) {
	if strings.TrimSpace(input.FullName) == "" {
		return nil, ErrInvalidInput
	}
	return s.instructorRepo.Create(ctx, input)
}

func (s *ScheduleService) UpdateInstructor(ctx context.Context, id int64, input repository.CreateInstructorInput) (*models.Instructor, error) {
	if strings.TrimSpace(input.FullName) == "" {
		return nil, ErrInvalidInput
	}
	instructor, err := s.instructorRepo.Update(ctx, id, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInstructorNotFound
		}
		return nil, err
	}
	return instructor, nil
}

func (s *ScheduleService) DeleteInstructor(ctx context.Context, id int64) error {
	deleted, err := s.instructorRepo.Delete(ctx, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrInstructorInUse
		}
		return err
	}
	if !deleted {
		return ErrInstructorNotFound
	}
	return nil
}

func validateSessionInput(input repository.CreateClassSessionInput) error {
	if input.ClassTypeID <= 0 || input.InstructorID <= 0 {
		return ErrInvalidInput
	}
	if !input.EndsAt.After(input.StartsAt) {
		return ErrInvalidInput
	}
	if input.Capacity < 0 {
		return ErrInvalidInput
	}
	return nil
}

func validateClassTypeInput(input repository.CreateClassTypeInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrInvalidInput
	}
	if input.DurationMinutes <= 0 || input.DefaultCapacity <= 0 || input.PriceCents < 0 {
		return ErrInvalidInput
	}
	switch input.Difficulty {
	case "beginner", "intermediate", "advanced", "all_levels":
	default:
		return ErrInvalidStatus
	}
	return nil
}

func mapSessionReferenceError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "class_type"):
			return ErrClassTypeNotFound
		case strings.Contains(pgErr.ConstraintName, "instructor"):
			return ErrInstructorNotFound
		}
	}
	return err
}
