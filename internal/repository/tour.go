package repository

import (
	"context"
	"fmt"
	"time"

	"tourbook/internal/logger"
	"tourbook/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type TourRepository struct {
	db *pgxpool.Pool
}

func NewTourRepository(db *pgxpool.Pool) *TourRepository {
	return &TourRepository{db: db}
}

const tourColumns = `id, name, slug, duration, max_group_size, difficulty, price, summary,
	description, image_cover, ratings_average, ratings_quantity, start_dates, created_at`

// сортировки, которые разрешено передавать из query string
var tourOrder = map[string]string{
	"":                "created_at DESC",
	"price":           "price ASC",
	"-price":          "price DESC",
	"ratingsAverage":  "ratings_average ASC",
	"-ratingsAverage": "ratings_average DESC",
	"duration":        "duration ASC",
	"-duration":       "duration DESC",
}

func scanTour(row pgx.Row) (*models.Tour, error) {
	var t models.Tour
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Slug,
		&t.Duration,
		&t.MaxGroupSize,
		&t.Difficulty,
		&t.Price,
		&t.Summary,
		&t.Description,
		&t.ImageCover,
		&t.RatingsAverage,
		&t.RatingsQuantity,
		&t.StartDates,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func collectTours(rows pgx.Rows) ([]*models.Tour, error) {
	defer rows.Close()
	tours := []*models.Tour{}
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		tours = append(tours, t)
	}
	return tours, rows.Err()
}

func (r *TourRepository) List(ctx context.Context, q models.TourQuery) ([]*models.Tour, error) {
	order, ok := tourOrder[q.Sort]
	if !ok {
		order = tourOrder[""]
	}
	query := fmt.Sprintf(`SELECT %s FROM tours ORDER BY %s LIMIT $1 OFFSET $2`, tourColumns, order)

	rows, err := r.db.Query(ctx, query, q.Limit, (q.Page-1)*q.Limit)
	if err != nil {
		logger.Log.Error("Ошибка получения туров (repo)", zap.Error(err))
		return nil, err
	}
	return collectTours(rows)
}

func (r *TourRepository) FindByID(ctx context.Context, id int64) (*models.Tour, error) {
	return scanTour(r.db.QueryRow(ctx, `SELECT `+tourColumns+` FROM tours WHERE id = $1`, id))
}

func (r *TourRepository) FindBySlug(ctx context.Context, slug string) (*models.Tour, error) {
	return scanTour(r.db.QueryRow(ctx, `SELECT `+tourColumns+` FROM tours WHERE slug = $1`, slug))
}

// ListBookedBy - туры, забронированные пользователем.
func (r *TourRepository) ListBookedBy(ctx context.Context, userID int64) ([]*models.Tour, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+tourColumns+`
		FROM tours
		WHERE id IN (SELECT tour_id FROM bookings WHERE user_id = $1)
		ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	return collectTours(rows)
}

func (r *TourRepository) Create(ctx context.Context, t *models.Tour) error {
	logger.Log.Info("Создание тура (repo)", zap.String("slug", t.Slug))
	if t.StartDates == nil {
		t.StartDates = []time.Time{}
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO tours (name, slug, duration, max_group_size, difficulty, price, summary, description, image_cover, start_dates)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, ratings_average, ratings_quantity, created_at`,
		t.Name, t.Slug, t.Duration, t.MaxGroupSize, t.Difficulty, t.Price,
		t.Summary, t.Description, t.ImageCover, t.StartDates,
	).Scan(&t.ID, &t.RatingsAverage, &t.RatingsQuantity, &t.CreatedAt)
	return mapErr(err)
}

// Update применяет частичное обновление; slug пересчитывается вызывающей стороной.
func (r *TourRepository) Update(ctx context.Context, id int64, p *models.TourPatch, slug *string) (*models.Tour, error) {
	set, args := buildSet([]setField{
		field("name", p.Name),
		field("slug", slug),
		field("duration", p.Duration),
		field("max_group_size", p.MaxGroupSize),
		field("difficulty", p.Difficulty),
		field("price", p.Price),
		field("summary", p.Summary),
		field("description", p.Description),
		field("image_cover", p.ImageCover),
	})
	if len(args) == 0 {
		logger.Log.Warn("Нет полей для обновления тура (repo)", zap.Int64("tour_id", id))
		return r.FindByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tours SET %s WHERE id = $%d RETURNING %s`, set, len(args), tourColumns)
	return scanTour(r.db.QueryRow(ctx, query, args...))
}

func (r *TourRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tours WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
