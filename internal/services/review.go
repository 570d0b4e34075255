package services

import (
	"context"
	"errors"
	"strings"

	"tourbook/internal/apperrors"
	"tourbook/internal/logger"
	"tourbook/internal/models"
	"tourbook/internal/repository"

	"go.uber.org/zap"
)

type ReviewRepo interface {
	ListByTour(ctx context.Context, tourID int64) ([]*models.Review, error)
	Create(ctx context.Context, rv *models.Review) error
}

type ReviewService struct {
	repo  ReviewRepo
	tours TourRepo
}

func NewReviewService(repo ReviewRepo, tours TourRepo) *ReviewService {
	return &ReviewService{repo: repo, tours: tours}
}

func (s *ReviewService) ListByTour(ctx context.Context, tourID int64) ([]*models.Review, error) {
	if _, err := s.tours.FindByID(ctx, tourID); err != nil {
		return nil, notFoundTour(err)
	}
	return s.repo.ListByTour(ctx, tourID)
}

// Create оставляет отзыв от имени автора. Один отзыв на пару (тур, пользователь).
func (s *ReviewService) Create(ctx context.Context, tourID int64, author *models.User, in models.ReviewInput) (*models.Review, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	if _, err := s.tours.FindByID(ctx, tourID); err != nil {
		return nil, notFoundTour(err)
	}

	rv := &models.Review{
		TourID:   tourID,
		UserID:   author.ID,
		UserName: author.Name,
		Review:   strings.TrimSpace(in.Review),
		Rating:   in.Rating,
	}
	if err := s.repo.Create(ctx, rv); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Validation("You have already reviewed this tour")
		}
		logger.WithCtx(ctx).Error("Ошибка создания отзыва", zap.Int64("tour_id", tourID), zap.Error(err))
		return nil, err
	}
	return rv, nil
}
