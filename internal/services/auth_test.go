package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"tourbook/internal/apperrors"
	"tourbook/internal/config"
	"tourbook/internal/models"
	"tourbook/internal/testutil"
	"tourbook/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	svc    *AuthService
	tokens *TokenService
	repo   *testutil.FakeUserRepo
	mailer *testutil.FakeMailer
	clock  *testutil.Clock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	clock := testutil.NewClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiresIn: time.Hour, PasswordResetTTL: 10 * time.Minute}
	f := &authFixture{
		repo:   testutil.NewFakeUserRepo(),
		mailer: &testutil.FakeMailer{},
		clock:  clock,
		tokens: NewTokenService(cfg).WithClock(clock.Now),
	}
	f.svc = NewAuthService(f.repo, f.mailer, f.tokens, cfg).WithClock(clock.Now)
	return f
}

func (f *authFixture) signup(t *testing.T, email, password string) *AuthResult {
	t.Helper()
	res, err := f.svc.Signup(context.Background(), SignupInput{
		Name: "Ann Smith", Email: email, Password: password, PasswordConfirm: password,
	}, "http://localhost/me")
	require.NoError(t, err)
	return res
}

func requireKind(t *testing.T, err error, kind apperrors.Kind) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	ae, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, kind, ae.Kind)
	return ae
}

func resetURL(raw string) string { return "http://localhost/api/v1/users/resetPassword/" + raw }

func rawFromURL(t *testing.T, m *testutil.FakeMailer) string {
	t.Helper()
	mail, ok := m.LastReset()
	require.True(t, ok, "no reset email sent")
	return mail.URL[strings.LastIndex(mail.URL, "/")+1:]
}

func TestSignup_CreatesUserAndToken(t *testing.T) {
	f := newAuthFixture(t)

	res := f.signup(t, "Ann@Example.com", "pass12345")

	assert.Equal(t, models.RoleUser, res.User.Role)
	assert.Equal(t, "ann@example.com", res.User.Email)
	claims, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	require.Len(t, f.mailer.Welcome, 1)
	assert.Equal(t, "http://localhost/me", f.mailer.Welcome[0].URL)

	raw, err := json.Marshal(res.User)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), res.User.PasswordHash)
	assert.NotContains(t, string(raw), "pass12345")
	assert.NotContains(t, strings.ToLower(string(raw)), "password")
}

func TestSignup_Validation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	long := strings.Repeat("a", 80)
	wide := strings.Repeat("я", 40)

	// wide: 40 символов, но 80 байт; проходит max=72 и упирается в предел bcrypt
	cases := map[string]SignupInput{
		"mismatch":       {Name: "Ann", Email: "ann@example.com", Password: "pass12345", PasswordConfirm: "pass12346"},
		"short":          {Name: "Ann", Email: "ann@example.com", Password: "short", PasswordConfirm: "short"},
		"bad email":      {Name: "Ann", Email: "not-an-email", Password: "pass12345", PasswordConfirm: "pass12345"},
		"empty name":     {Email: "ann@example.com", Password: "pass12345", PasswordConfirm: "pass12345"},
		"too long":       {Name: "Ann", Email: "ann@example.com", Password: long, PasswordConfirm: long},
		"too many bytes": {Name: "Ann", Email: "ann@example.com", Password: wide, PasswordConfirm: wide},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Signup(ctx, in, "")
			requireKind(t, err, apperrors.KindValidation)
		})
	}

	ae := func() *apperrors.AppError {
		_, err := f.svc.Signup(ctx, cases["mismatch"], "")
		return requireKind(t, err, apperrors.KindValidation)
	}()
	assert.Contains(t, ae.Message, "Passwords are not the same")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "ann@example.com", "pass12345")

	_, err := f.svc.Signup(context.Background(), SignupInput{
		Name: "Other", Email: "ANN@example.com", Password: "pass12345", PasswordConfirm: "pass12345",
	}, "")
	ae := requireKind(t, err, apperrors.KindValidation)
	assert.Contains(t, ae.Message, "already in use")
}

func TestSignup_WelcomeFailureIsNotFatal(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.Err = errors.New("smtp down")

	res := f.signup(t, "ann@example.com", "pass12345")
	assert.NotEmpty(t, res.Token)
}

func TestLogin_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "ann@example.com", "pass12345")
	ctx := context.Background()

	_, errUnknown := f.svc.Login(ctx, "nobody@example.com", "pass12345")
	_, errWrong := f.svc.Login(ctx, "ann@example.com", "wrongpass1")

	a := requireKind(t, errUnknown, apperrors.KindInvalidCredentials)
	b := requireKind(t, errWrong, apperrors.KindInvalidCredentials)
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, 401, a.Status)

	res, err := f.svc.Login(ctx, "ANN@example.com", "pass12345")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestLogin_MissingFields(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Login(context.Background(), "", "x")
	ae := requireKind(t, err, apperrors.KindValidation)
	assert.Equal(t, "Please provide email and password", ae.Message)
}

func TestUpdatePassword_InvalidatesEarlierTokens(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	first := f.signup(t, "ann@example.com", "pass12345")

	// смена в пределах двух секунд после выпуска старого токена
	f.clock.Advance(1500 * time.Millisecond)
	res, err := f.svc.UpdatePassword(ctx, first.User.ID, UpdatePasswordInput{
		PasswordCurrent: "pass12345", Password: "newpass123", PasswordConfirm: "newpass123",
	})
	require.NoError(t, err)

	stored, ok := f.repo.Get(first.User.ID)
	require.True(t, ok)
	require.NotNil(t, stored.PasswordChangedAt)
	assert.Equal(t, f.clock.Now(), *stored.PasswordChangedAt)

	oldClaims, err := f.tokens.Verify(first.Token)
	require.NoError(t, err)
	assert.True(t, stored.ChangedPasswordAfter(oldClaims.IssuedAt), "old token must be stale")

	newClaims, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.False(t, stored.ChangedPasswordAfter(newClaims.IssuedAt), "new token must be accepted")

	_, err = f.svc.Login(ctx, "ann@example.com", "pass12345")
	requireKind(t, err, apperrors.KindInvalidCredentials)
	_, err = f.svc.Login(ctx, "ann@example.com", "newpass123")
	require.NoError(t, err)
}

func TestPasswordTooLongIsValidationError(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	first := f.signup(t, "ann@example.com", "pass12345")

	for _, pw := range []string{strings.Repeat("a", 80), strings.Repeat("я", 40)} {
		_, err := f.svc.UpdatePassword(ctx, first.User.ID, UpdatePasswordInput{
			PasswordCurrent: "pass12345", Password: pw, PasswordConfirm: pw,
		})
		requireKind(t, err, apperrors.KindValidation)

		require.NoError(t, f.svc.ForgotPassword(ctx, "ann@example.com", resetURL))
		_, err = f.svc.ResetPassword(ctx, rawFromURL(t, f.mailer), ResetPasswordInput{Password: pw, PasswordConfirm: pw})
		requireKind(t, err, apperrors.KindValidation)
	}

	_, err := f.svc.Login(ctx, "ann@example.com", "pass12345")
	require.NoError(t, err)
}

func TestUpdatePassword_WrongCurrent(t *testing.T) {
	f := newAuthFixture(t)
	first := f.signup(t, "ann@example.com", "pass12345")

	_, err := f.svc.UpdatePassword(context.Background(), first.User.ID, UpdatePasswordInput{
		PasswordCurrent: "nope12345", Password: "newpass123", PasswordConfirm: "newpass123",
	})
	ae := requireKind(t, err, apperrors.KindInvalidCredentials)
	assert.Equal(t, "Your current password is wrong", ae.Message)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	err := f.svc.ForgotPassword(context.Background(), "ghost@example.com", resetURL)
	requireKind(t, err, apperrors.KindNotFound)
	assert.Empty(t, f.mailer.Resets)
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u := f.signup(t, "ann@example.com", "pass12345").User

	require.NoError(t, f.svc.ForgotPassword(ctx, "ann@example.com", resetURL))
	raw := rawFromURL(t, f.mailer)
	assert.Len(t, raw, 64)

	stored, _ := f.repo.Get(u.ID)
	require.NotNil(t, stored.PasswordResetToken)
	assert.NotEqual(t, raw, *stored.PasswordResetToken)
	assert.Equal(t, utils.HashResetToken(raw), *stored.PasswordResetToken)
	assert.Equal(t, f.clock.Now().Add(10*time.Minute), *stored.PasswordResetExpires)

	f.clock.Advance(5 * time.Minute)
	res, err := f.svc.ResetPassword(ctx, raw, ResetPasswordInput{Password: "fresh1234", PasswordConfirm: "fresh1234"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	stored, _ = f.repo.Get(u.ID)
	assert.Nil(t, stored.PasswordResetToken)
	assert.Nil(t, stored.PasswordResetExpires)
	require.NotNil(t, stored.PasswordChangedAt)

	_, err = f.svc.Login(ctx, "ann@example.com", "fresh1234")
	require.NoError(t, err)

	_, err = f.svc.ResetPassword(ctx, raw, ResetPasswordInput{Password: "again1234", PasswordConfirm: "again1234"})
	requireKind(t, err, apperrors.KindInvalidOrExpiredToken)
}

func TestResetPassword_ExpiredAndUnknownLookTheSame(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signup(t, "ann@example.com", "pass12345")
	require.NoError(t, f.svc.ForgotPassword(ctx, "ann@example.com", resetURL))
	raw := rawFromURL(t, f.mailer)

	f.clock.Advance(11 * time.Minute)
	in := ResetPasswordInput{Password: "fresh1234", PasswordConfirm: "fresh1234"}
	_, errExpired := f.svc.ResetPassword(ctx, raw, in)
	_, errUnknown := f.svc.ResetPassword(ctx, strings.Repeat("ab", 32), in)

	a := requireKind(t, errExpired, apperrors.KindInvalidOrExpiredToken)
	b := requireKind(t, errUnknown, apperrors.KindInvalidOrExpiredToken)
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, 400, a.Status)
}

func TestResetPassword_InvalidInputKeepsToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signup(t, "ann@example.com", "pass12345")
	require.NoError(t, f.svc.ForgotPassword(ctx, "ann@example.com", resetURL))
	raw := rawFromURL(t, f.mailer)

	_, err := f.svc.ResetPassword(ctx, raw, ResetPasswordInput{Password: "fresh1234", PasswordConfirm: "other1234"})
	requireKind(t, err, apperrors.KindValidation)

	_, err = f.svc.ResetPassword(ctx, raw, ResetPasswordInput{Password: "fresh1234", PasswordConfirm: "fresh1234"})
	require.NoError(t, err)
}

func TestForgotPassword_EmailFailureRollsBack(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u := f.signup(t, "ann@example.com", "pass12345").User
	f.mailer.Err = errors.New("smtp down")

	err := f.svc.ForgotPassword(ctx, "ann@example.com", resetURL)
	ae := requireKind(t, err, apperrors.KindEmailDelivery)
	assert.Equal(t, 500, ae.Status)
	assert.Equal(t, "There was an error sending the email. Try again later!", ae.Message)
	assert.ErrorContains(t, err, "smtp down")

	stored, _ := f.repo.Get(u.ID)
	assert.Nil(t, stored.PasswordResetToken)
	assert.Nil(t, stored.PasswordResetExpires)
}
