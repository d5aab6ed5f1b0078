package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mina-rz/YogaStudioBack/internal/models"
	"github.com/mina-rz/YogaStudioBack/internal/repository"
)

type PassService struct {
	passRepo *repository.PassRepository
	userRepo *repository.UserRepository
}

func NewPassService(passRepo *repository.PassRepository, userRepo *repository.UserRepository) *PassService {
	return &PassService{passRepo: passRepo, userRepo: userRepo}
}

type GrantPassInput struct {
	UserID    int64
	Type      string
	Credits   *int
	ExpiresAt *time.Time
}

func (s *PassService) GrantPass(ctx context.Context, input GrantPassInput) (*models.Pass, error) {
	switch input.Type {
	case models.PassTypeCredits:
		if input.Credits == nil || *input.Credits <= 0 {
			return nil, ErrInvalidInput
		}
	case models.PassTypeUnlimited:
		input.Credits = nil
	default:
		return nil, ErrInvalidStatus
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(time.Now().UTC()) {
		return nil, ErrInvalidInput
	}

	if _, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	pass, err := s.passRepo.Create(ctx, repository.CreatePassInput{
		UserID:           input.UserID,
		Type:             input.Type,
		CreditsRemaining: input.Credits,
		ExpiresAt:        input.ExpiresAt,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return pass, nil
}

func (s *PassService) ListPasses(ctx context.Context, userID int64) ([]models.Pass, error) {
	return s.passRepo.ListByUser(ctx, userID)
}
