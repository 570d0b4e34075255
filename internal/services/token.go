package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"tourbook/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims - то, что достаём из проверенного токена.
type SessionClaims struct {
	UserID   int64
	IssuedAt time.Time
}

// sessionJWT: iat в JWT хранится в секундах, поэтому точное время выпуска
// (в микросекундах) лежит отдельно, для сравнения со сменой пароля.
type sessionJWT struct {
	ID            int64 `json:"id"`
	IssuedAtMicro int64 `json:"iat_us,omitempty"`
	jwt.RegisteredClaims
}

// TokenService выпускает и проверяет stateless-токены сессии (HS256).
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.JWTExpiresIn,
		now:    time.Now,
	}
}

// WithClock подменяет часы (для тестов).
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

func (s *TokenService) Issue(userID int64) (string, error) {
	now := s.now()
	claims := sessionJWT{
		ID:            userID,
		IssuedAtMicro: now.UnixMicro(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	var claims sessionJWT
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.ID <= 0 || claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}

	issuedAt := claims.IssuedAt.Time
	if claims.IssuedAtMicro > 0 {
		issuedAt = time.UnixMicro(claims.IssuedAtMicro)
	}

	return &SessionClaims{UserID: claims.ID, IssuedAt: issuedAt}, nil
}
