package middleware

import (
	"net"
	"net/http"

	"tourbook/internal/apperrors"
	"tourbook/internal/reqctx"
	"tourbook/internal/utils/helpers"

	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	// MaxBodyBytes - предел тела запроса для API.
	MaxBodyBytes = 10 << 10
)

// RequestID берёт id из заголовка или генерирует новый и пробрасывает его в контекст.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(reqctx.WithRequestID(r.Context(), id)))
	})
}

func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		h.Set("X-DNS-Prefetch-Control", "off")
		next.ServeHTTP(w, r)
	})
}

// BodyLimit ограничивает размер тела. Content-Length сверх лимита отсекаем сразу,
// остальное режет http.MaxBytesReader при чтении.
func BodyLimit(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				helpers.WriteError(w, r, apperrors.PayloadTooLarge("Request body is too large"))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP - адрес клиента, найденный RealIP; без него - адрес соединения.
func clientIP(r *http.Request) string {
	if ip, ok := reqctx.GetClientIP(r.Context()); ok {
		return ip
	}
	return peerIP(r)
}

func peerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
