package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"tourbook/internal/config"
	"tourbook/internal/handlers"
	"tourbook/internal/middleware"
	"tourbook/internal/models"
	"tourbook/internal/services"
	"tourbook/internal/testutil"
	"tourbook/internal/utils"
	"tourbook/internal/views"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	utils.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type testEnv struct {
	router *mux.Router
	users  *testutil.FakeUserRepo
	tours  *testutil.FakeTourRepo
	mailer *testutil.FakeMailer
	tokens *services.TokenService
	clock  *testutil.Clock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:          "routes-secret",
		JWTExpiresIn:       time.Hour,
		JWTCookieExpiresIn: 90,
		PasswordResetTTL:   10 * time.Minute,
		PaymentCurrency:    "USD",
	}
	env := &testEnv{
		users:  testutil.NewFakeUserRepo(),
		tours:  testutil.NewFakeTourRepo(),
		mailer: &testutil.FakeMailer{},
		clock:  testutil.NewClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)),
	}
	env.tokens = services.NewTokenService(cfg).WithClock(env.clock.Now)

	authSvc := services.NewAuthService(env.users, env.mailer, env.tokens, cfg).WithClock(env.clock.Now)
	tourSvc := services.NewTourService(env.tours)
	reviewSvc := services.NewReviewService(&testutil.FakeReviewRepo{}, env.tours)
	bookingSvc := services.NewBookingService(testutil.NewFakeBookingRepo())
	renderer, err := views.New()
	require.NoError(t, err)
	ips, err := middleware.NewIPResolver(nil)
	require.NoError(t, err)

	env.router = mux.NewRouter()
	InitRoutes(env.router,
		middleware.NewAuth(env.tokens, env.users),
		ips,
		middleware.NewRateLimiter(1000),
		handlers.NewAuthHandler(authSvc, handlers.NewSessionCookies(cfg)),
		handlers.NewTourHandler(tourSvc, reviewSvc),
		handlers.NewBookingHandler(bookingSvc, tourSvc, services.NewCheckoutService(cfg)),
		handlers.NewViewHandler(tourSvc, reviewSvc, renderer),
	)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "http://tours.test"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type authBody struct {
	Status string `json:"status"`
	Token  string `json:"token"`
	Data   struct {
		User struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	} `json:"data"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.CookieName {
			return c
		}
	}
	return nil
}

func TestAnnLifecycle(t *testing.T) {
	env := newTestEnv(t)

	// регистрация
	rec := env.do(t, http.MethodPost, "/api/v1/users/signup", map[string]string{
		"name": "Ann Smith", "email": "ann@example.com", "password": "pass12345", "passwordConfirm": "pass12345",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, strings.ToLower(rec.Body.String()), "password")
	signup := decode[authBody](t, rec)
	assert.Equal(t, "success", signup.Status)
	assert.Equal(t, "user", signup.Data.User.Role)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Equal(t, signup.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.NotEmpty(t, env.mailer.Welcome)

	rec = env.do(t, http.MethodGet, "/api/v1/users/me", nil, signup.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	// смена пароля делает старый токен недействительным
	env.clock.Advance(time.Millisecond)
	rec = env.do(t, http.MethodPatch, "/api/v1/users/updateMyPassword", map[string]string{
		"passwordCurrent": "pass12345", "password": "newpass123", "passwordConfirm": "newpass123",
	}, signup.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[authBody](t, rec)

	rec = env.do(t, http.MethodGet, "/api/v1/users/me", nil, signup.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User recently changed password! Please log in again.", decode[errorBody](t, rec).Message)

	rec = env.do(t, http.MethodGet, "/api/v1/users/me", nil, updated.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	// забыла пароль: ссылка из письма
	rec = env.do(t, http.MethodPost, "/api/v1/users/forgotPassword", map[string]string{"email": "ann@example.com"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	mail, ok := env.mailer.LastReset()
	require.True(t, ok)
	link, err := url.Parse(mail.URL)
	require.NoError(t, err)
	assert.Equal(t, "tours.test", link.Host)
	assert.True(t, strings.HasPrefix(link.Path, "/api/v1/users/resetPassword/"))

	newPass := map[string]string{"password": "fresh1234", "passwordConfirm": "fresh1234"}
	rec = env.do(t, http.MethodPatch, link.Path, newPass, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reset := decode[authBody](t, rec)
	assert.NotEmpty(t, reset.Token)

	rec = env.do(t, http.MethodPatch, link.Path, newPass, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Token is invalid or has expired", decode[errorBody](t, rec).Message)

	rec = env.do(t, http.MethodPost, "/api/v1/users/login", map[string]string{"email": "ann@example.com", "password": "fresh1234"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// обычному пользователю нельзя в админские маршруты
	rec = env.do(t, http.MethodDelete, "/api/v1/tours/1", nil, reset.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/v1/users", nil, reset.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/users/logout", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cookie = sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Equal(t, middleware.LoggedOutValue, cookie.Value)
}

func TestLogin_WrongCredentials(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/users/login", map[string]string{"email": "who@example.com", "password": "x1234567"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, "fail", body.Status)
	assert.Equal(t, "Incorrect email or password", body.Message)
}

func TestAdminRoutes(t *testing.T) {
	env := newTestEnv(t)
	admin := env.users.Put(models.User{Name: "Root", Email: "root@example.com", Role: models.RoleAdmin})
	token, err := env.tokens.Issue(admin.ID)
	require.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/api/v1/tours", map[string]any{
		"name": "The Sea Explorer", "duration": 7, "max_group_size": 15, "difficulty": "medium",
		"price": 497, "summary": "Exploring the jaw-dropping US east coast",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/v1/tours/1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "the-sea-explorer")

	rec = env.do(t, http.MethodGet, "/api/v1/users", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"results":1`)

	rec = env.do(t, http.MethodDelete, "/api/v1/tours/1", nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUnauthenticatedAndUnknownRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "You are not logged in! Please log in to get access.", decode[errorBody](t, rec).Message)

	rec = env.do(t, http.MethodGet, "/api/v1/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Can't find /api/v1/nope on this server!", decode[errorBody](t, rec).Message)

	rec = env.do(t, http.MethodPost, "/api/v1/users/signup", "not an object", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPages(t *testing.T) {
	env := newTestEnv(t)
	ann := env.users.Put(models.User{Name: "Ann Smith", Email: "ann@example.com", Role: models.RoleUser})
	token, err := env.tokens.Issue(ann.ID)
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Log in")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: token})
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ann")
	assert.NotContains(t, rec.Body.String(), `href="/login"`)

	rec = env.do(t, http.MethodGet, "/tour/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "There is no tour with that name.")

	rec = env.do(t, http.MethodGet, "/css/style.css", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// анонимный браузер получает страницу ошибки, а не JSON
	for _, path := range []string{"/me", "/my-tours"} {
		rec = env.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html", path)
		assert.Contains(t, rec.Body.String(), "You are not logged in! Please log in to get access.", path)
	}

	req = httptest.NewRequest(http.MethodGet, "/my-tours", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: "garbage"})
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token. Please log in again!")
}

func TestWebhookHidesInternalErrors(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{
		`{"event":"payment.succeeded","object":{"id":"pay-1"}}`,
		`{"event":"payment.succeeded","object":{"id":"../refunds"}}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "http://tours.test/api/v1/bookings/webhook-checkout", strings.NewReader(body))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		msg := decode[errorBody](t, rec).Message
		assert.Equal(t, "Webhook error: notification could not be verified", msg)
		assert.NotContains(t, msg, "configured")
	}
}
