package repository

import (
	"context"
	"errors"
	"fmt"

	"tourbook/internal/logger"
	"tourbook/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type BookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, tour_id, user_id, price, paid, payment_id, created_at`

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	if err := row.Scan(&b.ID, &b.TourID, &b.UserID, &b.Price, &b.Paid, &b.PaymentID, &b.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	logger.Log.Info("Создание бронирования (repo)", zap.Int64("tour_id", b.TourID), zap.Int64("user_id", b.UserID))
	err := r.db.QueryRow(ctx, `
		INSERT INTO bookings (tour_id, user_id, price, paid, payment_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		b.TourID, b.UserID, b.Price, b.Paid, b.PaymentID,
	).Scan(&b.ID, &b.CreatedAt)
	return mapErr(err)
}

// CreateForPayment идемпотентна по payment_id: повторный вебхук ничего не создаёт.
func (r *BookingRepository) CreateForPayment(ctx context.Context, b *models.Booking) (created bool, err error) {
	err = r.db.QueryRow(ctx, `
		INSERT INTO bookings (tour_id, user_id, price, paid, payment_id)
		VALUES ($1, $2, $3, TRUE, $4)
		ON CONFLICT (payment_id) DO NOTHING
		RETURNING id, created_at`,
		b.TourID, b.UserID, b.Price, b.PaymentID,
	).Scan(&b.ID, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapErr(err)
	}
	b.Paid = true
	return true, nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id int64) (*models.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
}

func (r *BookingRepository) List(ctx context.Context) ([]*models.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []*models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *BookingRepository) Update(ctx context.Context, id int64, p *models.BookingPatch) (*models.Booking, error) {
	set, args := buildSet([]setField{
		field("price", p.Price),
		field("paid", p.Paid),
	})
	if len(args) == 0 {
		return r.FindByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE bookings SET %s WHERE id = $%d RETURNING %s`, set, len(args), bookingColumns)
	return scanBooking(r.db.QueryRow(ctx, query, args...))
}

func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
