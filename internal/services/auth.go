package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"tourbook/internal/apperrors"
	"tourbook/internal/config"
	"tourbook/internal/logger"
	"tourbook/internal/models"
	"tourbook/internal/repository"
	"tourbook/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgIncorrectLogin = "Incorrect email or password"
	msgUserGone       = "The user belonging to this token no longer exists."
)

type UserRepo interface {
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, int, error)
}

type AuthService struct {
	repo     UserRepo
	mailer   Mailer
	tokens   *TokenService
	resetTTL time.Duration
	now      func() time.Time
}

func NewAuthService(repo UserRepo, mailer Mailer, tokens *TokenService, cfg *config.Config) *AuthService {
	return &AuthService{
		repo:     repo,
		mailer:   mailer,
		tokens:   tokens,
		resetTTL: cfg.PasswordResetTTL,
		now:      time.Now,
	}
}

// WithClock подменяет часы (для тестов).
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// AuthResult - пользователь и свежий токен сессии.
type AuthResult struct {
	User  *models.User
	Token string
}

type SignupInput struct {
	Name            string `json:"name"            validate:"required,max=60"`
	Email           string `json:"email"           validate:"required,email"`
	Password        string `json:"password"        validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type UpdatePasswordInput struct {
	PasswordCurrent string `json:"passwordCurrent"`
	Password        string `json:"password"        validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		logger.Log.Error("Ошибка генерации токена", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// hashPassword: bcrypt принимает не больше 72 байт, а max в тегах считает символы.
func hashPassword(password string) (string, error) {
	hash, err := utils.HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperrors.Validation("Invalid input data. Password must be at most 72 bytes")
	}
	return hash, err
}

// setPassword хеширует новый пароль и запоминает момент смены
// с точностью до микросекунд (как хранит Postgres).
func (s *AuthService) setPassword(user *models.User, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	changedAt := s.now().Truncate(time.Microsecond)
	user.PasswordHash = hash
	user.PasswordChangedAt = &changedAt
	return nil
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput, welcomeURL string) (*AuthResult, error) {
	log := logger.WithCtx(ctx)
	in.Email = strings.TrimSpace(in.Email)
	log.Info("Регистрация пользователя (service)", zap.String("email", in.Email))

	if err := Validate(in); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		if !apperrors.IsKind(err, apperrors.KindValidation) {
			log.Error("Ошибка хеширования пароля", zap.Error(err))
		}
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		Role:         models.RoleUser,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Validation("Email is already in use. Please use another email!")
		}
		log.Error("Ошибка создания пользователя", zap.Error(err))
		return nil, err
	}

	// аккаунт уже создан, письмо не критично
	if err := s.mailer.SendWelcome(ctx, user, welcomeURL); err != nil {
		log.Warn("Не удалось отправить приветственное письмо", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	log.Info("Пользователь зарегистрирован (service)", zap.Int64("user_id", user.ID))
	return s.issue(user)
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// equalizeTiming тратит столько же времени, сколько проверка настоящего пароля,
// чтобы по времени ответа нельзя было понять, существует ли email.
func equalizeTiming(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = utils.HashPassword("not-a-real-password")
	})
	utils.CheckPasswordHash(password, dummyHash)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.WithCtx(ctx)
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.Validation("Please provide email and password")
	}
	log.Info("Попытка входа (service)", zap.String("email", email))

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		equalizeTiming(password)
		log.Warn("Пользователь не найден (service)", zap.String("email", email))
		return nil, apperrors.InvalidCredentials(msgIncorrectLogin)
	}
	if err != nil {
		return nil, err
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		log.Warn("Неверный пароль (service)", zap.Int64("user_id", user.ID))
		return nil, apperrors.InvalidCredentials(msgIncorrectLogin)
	}

	log.Info("Вход выполнен (service)", zap.Int64("user_id", user.ID))
	return s.issue(user)
}

// UpdatePassword меняет пароль по текущему и выдаёт новый токен: старые токены
// становятся устаревшими по passwordChangedAt.
func (s *AuthService) UpdatePassword(ctx context.Context, userID int64, in UpdatePasswordInput) (*AuthResult, error) {
	log := logger.WithCtx(ctx)
	log.Info("Смена пароля (service)", zap.Int64("user_id", userID))

	user, err := s.repo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Unauthenticated(msgUserGone, err)
	}
	if err != nil {
		return nil, err
	}

	if !utils.CheckPasswordHash(in.PasswordCurrent, user.PasswordHash) {
		log.Warn("Текущий пароль не совпадает", zap.Int64("user_id", userID))
		return nil, apperrors.InvalidCredentials("Your current password is wrong")
	}
	if err := Validate(in); err != nil {
		return nil, err
	}

	if err := s.setPassword(user, in.Password); err != nil {
		if !apperrors.IsKind(err, apperrors.KindValidation) {
			log.Error("Ошибка хеширования пароля", zap.Error(err))
		}
		return nil, err
	}
	if err := s.repo.Save(ctx, user); err != nil {
		log.Error("Ошибка сохранения пароля", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	log.Info("Пароль изменён (service)", zap.Int64("user_id", userID))
	return s.issue(user)
}

func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("No user found with that ID")
	}
	return user, err
}

func (s *AuthService) GetUsersPaginated(ctx context.Context, page, pageSize int) ([]*models.User, int, error) {
	return s.repo.List(ctx, pageSize, (page-1)*pageSize)
}
