package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("JWT_COOKIE_EXPIRES_IN", "")
	t.Setenv("PASSWORD_RESET_TTL_MIN", "")
	t.Setenv("PORT", "")
	t.Setenv("TRUSTED_PROXIES", "")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 90*24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 90*24*time.Hour, cfg.CookieTTL())
	assert.Equal(t, 10*time.Minute, cfg.PasswordResetTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadConfig_TrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.TrustedProxies)
}

func TestLoadConfig_BadDuration(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "ninety days")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{DbHost: "db", DbUser: "u", DbName: "tours", JWTSecret: "s", JWTExpiresIn: time.Hour}

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)

	cfg.JWTSecret = " "
	_, err = cfg.Validate()
	require.Error(t, err)

	_, err = (&Config{JWTSecret: "s"}).Validate()
	require.Error(t, err)
}

func TestGetDSNSafe_HidesPassword(t *testing.T) {
	cfg := &Config{DbUser: "u", DbPass: "hunter2", DbHost: "h", DbPort: "5432", DbName: "n", DbSSLMode: "disable"}

	assert.Contains(t, cfg.GetDSN(), "hunter2")
	assert.NotContains(t, cfg.GetDSNSafe(), "hunter2")
}
