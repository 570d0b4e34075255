package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_ChangedPasswordAfter(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	u := &User{}
	assert.False(t, u.ChangedPasswordAfter(issued))

	before := issued.Add(-time.Minute)
	u.PasswordChangedAt = &before
	assert.False(t, u.ChangedPasswordAfter(issued))

	after := issued.Add(time.Minute)
	u.PasswordChangedAt = &after
	assert.True(t, u.ChangedPasswordAfter(issued))

	// смена в ту же секунду, но позже выпуска
	sameSecond := issued.Add(300 * time.Millisecond)
	u.PasswordChangedAt = &sameSecond
	assert.True(t, u.ChangedPasswordAfter(issued))

	// токен выпущен в момент смены
	u.PasswordChangedAt = &issued
	assert.False(t, u.ChangedPasswordAfter(issued))
}

func TestUser_JSONHidesSecrets(t *testing.T) {
	tok := "abc"
	now := time.Now()
	u := User{ID: 1, Email: "ann@x.com", PasswordHash: "$2a$hash", PasswordResetToken: &tok, PasswordResetExpires: &now, Role: RoleUser}

	b, err := json.Marshal(u)
	require.NoError(t, err)

	s := string(b)
	assert.NotContains(t, s, "$2a$hash")
	assert.NotContains(t, s, "password")
	assert.NotContains(t, s, "abc")
	assert.Contains(t, s, `"role":"user"`)
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleLeadGuide.Valid())
	assert.False(t, Role("root").Valid())
}
