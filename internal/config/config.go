package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config собирается один раз при старте и дальше только читается.
type Config struct {
	Port      string
	DbHost    string
	DbPort    string
	DbUser    string
	DbPass    string
	DbName    string
	DbSSLMode string

	JWTSecret          string
	JWTExpiresIn       time.Duration
	JWTCookieExpiresIn int // в днях

	PasswordResetTTL time.Duration

	Log      string
	LogLevel string
	Env      string // development|production

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string

	PaymentAPIURL   string
	PaymentShopID   string
	PaymentSecret   string
	PaymentCurrency string

	RateLimitPerHour int
	CORSOrigins      []string
	// TrustedProxies - IP или CIDR прокси, которым верим в X-Forwarded-For.
	TrustedProxies []string
}

// LoadConfig загружает .env, читает переменные окружения и выставляет дефолты.
// Ничего не логирует - чтобы не создавать зависимость от logger.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	def := func(v, d string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return d
		}
		return v
	}

	jwtTTL, err := time.ParseDuration(def(os.Getenv("JWT_EXPIRES_IN"), "2160h"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	cookieDays, err := strconv.Atoi(def(os.Getenv("JWT_COOKIE_EXPIRES_IN"), "90"))
	if err != nil {
		return nil, fmt.Errorf("JWT_COOKIE_EXPIRES_IN: %w", err)
	}
	resetMin, err := strconv.Atoi(def(os.Getenv("PASSWORD_RESET_TTL_MIN"), "10"))
	if err != nil {
		return nil, fmt.Errorf("PASSWORD_RESET_TTL_MIN: %w", err)
	}
	rateLimit, err := strconv.Atoi(def(os.Getenv("RATE_LIMIT_PER_HOUR"), "100"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_PER_HOUR: %w", err)
	}

	cfg := &Config{
		Port:      def(os.Getenv("PORT"), "3000"),
		DbHost:    os.Getenv("DB_HOST"),
		DbPort:    def(os.Getenv("DB_PORT"), "5432"),
		DbUser:    os.Getenv("DB_USER"),
		DbPass:    os.Getenv("DB_PASSWORD"),
		DbName:    os.Getenv("DB_NAME"),
		DbSSLMode: def(os.Getenv("DB_SSLMODE"), "disable"),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTExpiresIn:       jwtTTL,
		JWTCookieExpiresIn: cookieDays,
		PasswordResetTTL:   time.Duration(resetMin) * time.Minute,

		Log:      os.Getenv("LOG"),
		LogLevel: strings.ToLower(def(os.Getenv("LOGLEVEL"), "info")),
		Env:      strings.ToLower(def(os.Getenv("ENV"), "production")),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     def(os.Getenv("SMTP_PORT"), "587"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		EmailFrom:    def(os.Getenv("EMAIL_FROM"), os.Getenv("SMTP_USER")),

		PaymentAPIURL:   def(os.Getenv("PAYMENT_API_URL"), "https://api.yookassa.ru/v3"),
		PaymentShopID:   os.Getenv("PAYMENT_SHOP_ID"),
		PaymentSecret:   os.Getenv("PAYMENT_SECRET"),
		PaymentCurrency: strings.ToUpper(def(os.Getenv("PAYMENT_CURRENCY"), "USD")),

		RateLimitPerHour: rateLimit,
		CORSOrigins:      splitList(os.Getenv("CORS_ORIGINS")),
		TrustedProxies:   splitList(os.Getenv("TRUSTED_PROXIES")),
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate возвращает предупреждения и фатальную ошибку (если критично).
func (c *Config) Validate() (warnings []string, err error) {
	if c.DbHost == "" || c.DbUser == "" || c.DbName == "" {
		return nil, errors.New("incomplete DB config (DB_HOST/DB_USER/DB_NAME)")
	}

	// без секрета любой сможет подписать токен
	if strings.TrimSpace(c.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is empty")
	}
	if c.JWTExpiresIn <= 0 {
		return nil, errors.New("JWT_EXPIRES_IN must be positive")
	}

	if c.PaymentShopID == "" || c.PaymentSecret == "" {
		warnings = append(warnings, "payment provider credentials are not set")
	}
	if c.SMTPHost == "" || c.SMTPUser == "" {
		warnings = append(warnings, "SMTP is not fully configured")
	}
	if len(c.CORSOrigins) == 0 {
		warnings = append(warnings, "CORS_ORIGINS is empty, cross-origin requests are denied")
	}

	return warnings, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// CookieTTL - срок жизни cookie с токеном.
func (c *Config) CookieTTL() time.Duration {
	return time.Duration(c.JWTCookieExpiresIn) * 24 * time.Hour
}

// GetDSN - полная DSN (с паролем)
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbPass, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// GetDSNSafe - DSN без пароля (для логов)
func (c *Config) GetDSNSafe() string {
	return fmt.Sprintf(
		"postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}
