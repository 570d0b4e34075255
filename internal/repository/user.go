package repository

import (
	"context"
	"strings"
	"time"

	"tourbook/internal/logger"
	"tourbook/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, photo, role, password_hash, password_changed_at,
	password_reset_token, password_reset_expires, active, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Photo,
		&u.Role,
		&u.PasswordHash,
		&u.PasswordChangedAt,
		&u.PasswordResetToken,
		&u.PasswordResetExpires,
		&u.Active,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// Create сохраняет нового пользователя. Уникальность email обеспечивает индекс users_email_key.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	logger.Log.Info("Создание пользователя (repo)", zap.String("email", user.Email))
	query := `
	INSERT INTO users (name, email, role, password_hash, password_changed_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, photo, active, created_at`
	err := r.db.QueryRow(ctx, query,
		user.Name,
		strings.ToLower(user.Email),
		user.Role,
		user.PasswordHash,
		user.PasswordChangedAt,
	).Scan(&user.ID, &user.Photo, &user.Active, &user.CreatedAt)
	if err != nil {
		logger.Log.Warn("Ошибка создания пользователя (repo)", zap.Error(err))
		return mapErr(err)
	}
	user.Email = strings.ToLower(user.Email)
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	logger.Log.Debug("Получение пользователя по ID (repo)", zap.Int64("user_id", id))
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND active`, id)
	return scanUser(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	logger.Log.Debug("Получение пользователя по email (repo)", zap.String("email", email))
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1) AND active`, email)
	return scanUser(row)
}

// FindByResetToken ищет по хешу токена, который ещё не истёк на момент now.
func (r *UserRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE password_reset_token = $1
		  AND password_reset_expires > $2
		  AND active`, tokenHash, now)
	return scanUser(row)
}

// Save перезаписывает изменяемые поля пользователя.
func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	logger.Log.Debug("Сохранение пользователя (repo)", zap.Int64("user_id", user.ID))
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET
			name = $1,
			email = $2,
			photo = $3,
			role = $4,
			password_hash = $5,
			password_changed_at = $6,
			password_reset_token = $7,
			password_reset_expires = $8,
			active = $9
		WHERE id = $10`,
		user.Name,
		strings.ToLower(user.Email),
		user.Photo,
		user.Role,
		user.PasswordHash,
		user.PasswordChangedAt,
		user.PasswordResetToken,
		user.PasswordResetExpires,
		user.Active,
		user.ID,
	)
	if err != nil {
		logger.Log.Error("Ошибка сохранения пользователя (repo)", zap.Int64("user_id", user.ID), zap.Error(err))
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE active`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE active ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		logger.Log.Error("Ошибка получения пользователей (repo)", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}
