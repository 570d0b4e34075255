package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"tourbook/internal/apperrors"
	"tourbook/internal/config"
	"tourbook/internal/middleware"

	"github.com/gorilla/mux"
)

// decodeJSON читает тело запроса в dst. Ошибки разбора - ошибки клиента.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.PayloadTooLarge("Request body is too large")
	}
	return apperrors.Validation("Invalid JSON body")
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("Invalid " + name)
	}
	return id, nil
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}

// baseURL - адрес сервиса, как его видит клиент: для ссылок в письмах и редиректов.
func baseURL(r *http.Request) string {
	scheme := "http"
	if isSecure(r) {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// SessionCookies пишет и стирает cookie с токеном сессии.
type SessionCookies struct {
	ttl time.Duration
	now func() time.Time
}

func NewSessionCookies(cfg *config.Config) *SessionCookies {
	return &SessionCookies{ttl: cfg.CookieTTL(), now: time.Now}
}

func (c *SessionCookies) Set(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  c.now().Add(c.ttl),
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear перезаписывает токен значением-заглушкой, которое живёт 10 секунд.
func (c *SessionCookies) Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    middleware.LoggedOutValue,
		Path:     "/",
		Expires:  c.now().Add(10 * time.Second),
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}
