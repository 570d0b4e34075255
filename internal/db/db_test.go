package db

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"migrations/00001_users.sql",
		"migrations/00002_tours.sql",
		"migrations/00003_bookings.sql",
	}, names)
}

func TestMigrate_WrapsError(t *testing.T) {
	prev := gooseUp
	t.Cleanup(func() { gooseUp = prev })
	gooseUp = func(context.Context, *pgxpool.Pool) error { return errors.New("boom") }

	err := Migrate(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate: boom")
}
