package services

import (
	"context"
	"errors"
	"strings"

	"tourbook/internal/apperrors"
	"tourbook/internal/logger"
	"tourbook/internal/repository"
	"tourbook/internal/utils"

	"go.uber.org/zap"
)

type ResetPasswordInput struct {
	Password        string `json:"password"        validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// ForgotPassword выдаёт одноразовый токен сброса и отправляет его на почту.
// В базе хранится только sha256 токена. resetURL строит ссылку из сырого токена.
func (s *AuthService) ForgotPassword(ctx context.Context, email string, resetURL func(raw string) string) error {
	log := logger.WithCtx(ctx)
	email = strings.TrimSpace(email)
	log.Info("Запрос на сброс пароля (service)", zap.String("email", email))

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("There is no user with that email address.")
	}
	if err != nil {
		return err
	}

	raw, hashed, err := utils.NewResetToken()
	if err != nil {
		log.Error("Ошибка генерации токена сброса", zap.Error(err))
		return err
	}
	expires := s.now().Add(s.resetTTL)
	user.PasswordResetToken = &hashed
	user.PasswordResetExpires = &expires

	if err := s.repo.Save(ctx, user); err != nil {
		log.Error("Ошибка сохранения токена сброса", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	sendErr := s.mailer.SendPasswordReset(ctx, user, resetURL(raw))
	if sendErr == nil {
		log.Info("Письмо для сброса пароля отправлено", zap.Int64("user_id", user.ID))
		return nil
	}

	log.Error("Ошибка отправки письма сброса, откатываем токен",
		zap.Int64("user_id", user.ID), zap.Error(sendErr))
	user.ClearPasswordReset()
	if err := s.repo.Save(ctx, user); err != nil {
		log.Error("Не удалось откатить токен сброса", zap.Int64("user_id", user.ID), zap.Error(err))
		sendErr = errors.Join(sendErr, err)
	}
	return apperrors.EmailDelivery("There was an error sending the email. Try again later!", sendErr)
}

// ResetPassword ставит новый пароль по сырому токену из письма и логинит пользователя.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken string, in ResetPasswordInput) (*AuthResult, error) {
	log := logger.WithCtx(ctx)

	user, err := s.repo.FindByResetToken(ctx, utils.HashResetToken(rawToken), s.now())
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("Токен сброса не найден или истёк")
		return nil, apperrors.InvalidOrExpiredToken("Token is invalid or has expired")
	}
	if err != nil {
		return nil, err
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
	user.ClearPasswordReset()

	if err := s.repo.Save(ctx, user); err != nil {
		log.Error("Ошибка сохранения нового пароля", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	log.Info("Пароль сброшен (service)", zap.Int64("user_id", user.ID))
	return s.issue(user)
}
