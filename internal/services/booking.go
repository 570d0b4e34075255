package services

import (
	"context"
	"errors"

	"tourbook/internal/apperrors"
	"tourbook/internal/logger"
	"tourbook/internal/models"
	"tourbook/internal/repository"

	"go.uber.org/zap"
)

type BookingRepo interface {
	Create(ctx context.Context, b *models.Booking) error
	CreateForPayment(ctx context.Context, b *models.Booking) (bool, error)
	FindByID(ctx context.Context, id int64) (*models.Booking, error)
	List(ctx context.Context) ([]*models.Booking, error)
	Update(ctx context.Context, id int64, p *models.BookingPatch) (*models.Booking, error)
	Delete(ctx context.Context, id int64) error
}

type BookingService struct {
	repo BookingRepo
}

func NewBookingService(repo BookingRepo) *BookingService {
	return &BookingService{repo: repo}
}

func notFoundBooking(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("No booking found with that ID")
	}
	return err
}

func (s *BookingService) List(ctx context.Context) ([]*models.Booking, error) {
	return s.repo.List(ctx)
}

func (s *BookingService) Get(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := s.repo.FindByID(ctx, id)
	return b, notFoundBooking(err)
}

func (s *BookingService) Create(ctx context.Context, in models.BookingInput) (*models.Booking, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	b := &models.Booking{TourID: in.TourID, UserID: in.UserID, Price: in.Price, Paid: true}
	if in.Paid != nil {
		b.Paid = *in.Paid
	}
	if err := s.repo.Create(ctx, b); err != nil {
		logger.WithCtx(ctx).Error("Ошибка создания бронирования", zap.Error(err))
		return nil, err
	}
	return b, nil
}

func (s *BookingService) Update(ctx context.Context, id int64, p models.BookingPatch) (*models.Booking, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	b, err := s.repo.Update(ctx, id, &p)
	return b, notFoundBooking(err)
}

func (s *BookingService) Delete(ctx context.Context, id int64) error {
	return notFoundBooking(s.repo.Delete(ctx, id))
}

// ConfirmPayment создаёт оплаченное бронирование по успешному платежу.
// Повторное уведомление о том же платеже ничего не меняет.
func (s *BookingService) ConfirmPayment(ctx context.Context, p *PaymentEvent) error {
	log := logger.WithCtx(ctx)
	paymentID := p.PaymentID
	b := &models.Booking{TourID: p.TourID, UserID: p.UserID, Price: p.Amount, PaymentID: &paymentID}

	created, err := s.repo.CreateForPayment(ctx, b)
	if err != nil {
		log.Error("Ошибка создания бронирования по платежу", zap.String("payment_id", paymentID), zap.Error(err))
		return err
	}
	if !created {
		log.Info("Платёж уже обработан", zap.String("payment_id", paymentID))
		return nil
	}
	log.Info("Бронирование оплачено", zap.Int64("booking_id", b.ID), zap.String("payment_id", paymentID))
	return nil
}
