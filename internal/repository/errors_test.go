package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrNotFound)
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}), ErrDuplicateEmail)
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: "23505", ConstraintName: "reviews_tour_id_user_id_key"}), ErrDuplicate)

	other := errors.New("conn reset")
	assert.Equal(t, other, mapErr(other))
}

func TestBuildSet(t *testing.T) {
	name := "The Forest Hiker"
	price := 397.0
	set, args := buildSet([]setField{
		field("name", &name),
		field[int]("duration", nil),
		field("price", &price),
	})

	assert.Equal(t, "name = $1, price = $2", set)
	assert.Equal(t, []any{name, price}, args)

	set, args = buildSet(nil)
	assert.Empty(t, set)
	assert.Empty(t, args)
}
