package services

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"tourbook/internal/apperrors"
	"tourbook/internal/logger"
	"tourbook/internal/models"
	"tourbook/internal/repository"

	"go.uber.org/zap"
)

const (
	defaultTourLimit = 100
	maxTourLimit     = 100
)

type TourRepo interface {
	List(ctx context.Context, q models.TourQuery) ([]*models.Tour, error)
	FindByID(ctx context.Context, id int64) (*models.Tour, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tour, error)
	ListBookedBy(ctx context.Context, userID int64) ([]*models.Tour, error)
	Create(ctx context.Context, t *models.Tour) error
	Update(ctx context.Context, id int64, p *models.TourPatch, slug *string) (*models.Tour, error)
	Delete(ctx context.Context, id int64) error
}

type TourService struct {
	repo TourRepo
}

func NewTourService(repo TourRepo) *TourService {
	return &TourService{repo: repo}
}

// Slugify превращает название тура в slug: "The Sea Explorer" -> "the-sea-explorer".
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func notFoundTour(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("No tour found with that ID")
	}
	return err
}

func (s *TourService) List(ctx context.Context, q models.TourQuery) ([]*models.Tour, error) {
	if q.Limit <= 0 {
		q.Limit = defaultTourLimit
	}
	if q.Limit > maxTourLimit {
		q.Limit = maxTourLimit
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}

func (s *TourService) Get(ctx context.Context, id int64) (*models.Tour, error) {
	t, err := s.repo.FindByID(ctx, id)
	return t, notFoundTour(err)
}

func (s *TourService) GetBySlug(ctx context.Context, slug string) (*models.Tour, error) {
	t, err := s.repo.FindBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("There is no tour with that name.")
	}
	return t, err
}

func (s *TourService) BookedBy(ctx context.Context, userID int64) ([]*models.Tour, error) {
	return s.repo.ListBookedBy(ctx, userID)
}

func (s *TourService) Create(ctx context.Context, in models.TourInput) (*models.Tour, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	t := &models.Tour{
		Name:         strings.TrimSpace(in.Name),
		Slug:         Slugify(in.Name),
		Duration:     in.Duration,
		MaxGroupSize: in.MaxGroupSize,
		Difficulty:   in.Difficulty,
		Price:        in.Price,
		Summary:      strings.TrimSpace(in.Summary),
		Description:  strings.TrimSpace(in.Description),
		ImageCover:   in.ImageCover,
		StartDates:   in.StartDates,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Validation("A tour with that name already exists")
		}
		logger.WithCtx(ctx).Error("Ошибка создания тура", zap.Error(err))
		return nil, err
	}
	logger.WithCtx(ctx).Info("Тур создан", zap.Int64("tour_id", t.ID), zap.String("slug", t.Slug))
	return t, nil
}

func (s *TourService) Update(ctx context.Context, id int64, p models.TourPatch) (*models.Tour, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	var slug *string
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		sl := Slugify(name)
		p.Name, slug = &name, &sl
	}
	t, err := s.repo.Update(ctx, id, &p, slug)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperrors.Validation("A tour with that name already exists")
	}
	return t, notFoundTour(err)
}

func (s *TourService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundTour(err)
	}
	logger.WithCtx(ctx).Info("Тур удалён", zap.Int64("tour_id", id))
	return nil
}
