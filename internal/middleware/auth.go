package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"tourbook/internal/apperrors"
	"tourbook/internal/logger"
	"tourbook/internal/models"
	"tourbook/internal/reqctx"
	"tourbook/internal/repository"
	"tourbook/internal/services"
	"tourbook/internal/utils/helpers"

	"go.uber.org/zap"
)

const (
	// CookieName - cookie с токеном сессии.
	CookieName = "jwt"
	// LoggedOutValue пишется в cookie при выходе.
	LoggedOutValue = "loggedout"
)

type TokenVerifier interface {
	Verify(token string) (*services.SessionClaims, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// Auth проверяет токен сессии и кладёт пользователя в контекст запроса.
type Auth struct {
	tokens TokenVerifier
	users  UserFinder
}

func NewAuth(tokens TokenVerifier, users UserFinder) *Auth {
	return &Auth{tokens: tokens, users: users}
}

// tokenFromRequest: сначала заголовок Authorization, потом cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// authenticate возвращает пользователя, которому принадлежит действующий токен.
func (a *Auth) authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.Unauthenticated("Invalid token. Please log in again!", err)
	}

	user, err := a.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Unauthenticated("The user belonging to this token no longer exists.", err)
	}
	if err != nil {
		return nil, err
	}

	if user.ChangedPasswordAfter(claims.IssuedAt) {
		return nil, apperrors.Unauthenticated("User recently changed password! Please log in again.", nil)
	}
	return user, nil
}

// ErrorWriter отдаёт клиенту ошибку доступа: JSON для API, страницу для сайта.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Protect пропускает только запросы с действующим токеном; отказ уходит JSON-ом.
func (a *Auth) Protect(next http.Handler) http.Handler {
	return a.ProtectWith(helpers.WriteError)(next)
}

// ProtectWith - Protect с заданным способом показать отказ.
func (a *Auth) ProtectWith(onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.WithCtx(r.Context())

			token := tokenFromRequest(r)
			if token == "" {
				log.Debug("Protect: токен отсутствует", zap.String("path", r.URL.Path))
				onError(w, r, apperrors.Unauthenticated("You are not logged in! Please log in to get access.", nil))
				return
			}

			user, err := a.authenticate(r.Context(), token)
			if err != nil {
				log.Warn("Protect: доступ отклонён", zap.Error(err))
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(reqctx.WithUser(r.Context(), user)))
		})
	}
}

// IsLoggedIn для страниц: смотрит только cookie и никогда не отказывает.
// Если токен действующий, пользователь попадает в контекст.
func (a *Auth) IsLoggedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(CookieName)
		if err != nil || c.Value == "" || c.Value == LoggedOutValue {
			next.ServeHTTP(w, r)
			return
		}

		user, err := a.authenticate(r.Context(), c.Value)
		if err != nil {
			logger.WithCtx(r.Context()).Debug("IsLoggedIn: cookie не подошла", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(reqctx.WithUser(r.Context(), user)))
	})
}
