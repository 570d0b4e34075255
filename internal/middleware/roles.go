package middleware

import (
	"net/http"

	"tourbook/internal/apperrors"
	"tourbook/internal/logger"
	"tourbook/internal/models"
	"tourbook/internal/reqctx"
	"tourbook/internal/utils/helpers"

	"go.uber.org/zap"
)

// RestrictTo пропускает пользователей с одной из ролей. Ставится только после Protect:
// без пользователя в контексте это ошибка сборки маршрутов, и мы паникуем.
func RestrictTo(roles ...models.Role) func(http.Handler) http.Handler {
	roleSet := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := reqctx.GetUser(r.Context())
			if !ok {
				panic("RestrictTo: no authenticated user in context, Protect must run first")
			}
			if _, found := roleSet[user.Role]; !found {
				logger.WithCtx(r.Context()).Warn("Доступ запрещён по роли",
					zap.String("role", string(user.Role)), zap.String("path", r.URL.Path))
				helpers.WriteError(w, r, apperrors.Forbidden("You do not have permission to perform this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
