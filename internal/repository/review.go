package repository

import (
	"context"

	"tourbook/internal/logger"
	"tourbook/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ReviewRepository struct {
	db *pgxpool.Pool
}

func NewReviewRepository(db *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) ListByTour(ctx context.Context, tourID int64) ([]*models.Review, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.id, r.tour_id, r.user_id, u.name, r.review, r.rating, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.tour_id = $1
		ORDER BY r.created_at DESC`, tourID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []*models.Review{}
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ID, &rv.TourID, &rv.UserID, &rv.UserName, &rv.Review, &rv.Rating, &rv.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, &rv)
	}
	return reviews, rows.Err()
}

// Create сохраняет отзыв и пересчитывает рейтинг тура в одной транзакции.
func (r *ReviewRepository) Create(ctx context.Context, rv *models.Review) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO reviews (tour_id, user_id, review, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		rv.TourID, rv.UserID, rv.Review, rv.Rating,
	).Scan(&rv.ID, &rv.CreatedAt)
	if err != nil {
		return mapErr(err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE tours SET
			ratings_quantity = s.cnt,
			ratings_average = ROUND(s.avg, 1)
		FROM (SELECT COUNT(*) AS cnt, AVG(rating) AS avg FROM reviews WHERE tour_id = $1) s
		WHERE id = $1`, rv.TourID)
	if err != nil {
		logger.Log.Error("Ошибка пересчёта рейтинга тура (repo)", zap.Int64("tour_id", rv.TourID), zap.Error(err))
		return err
	}

	return tx.Commit(ctx)
}
