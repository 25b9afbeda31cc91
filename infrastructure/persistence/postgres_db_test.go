package persistence

import (
	"database/sql"
	"errors"
	"testing"

	"clip-and-ship/domain/repository"
	"clip-and-ship/infrastructure/configuration"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	dsn := postgresDSN(configuration.Db{
		Name: "clipship", Host: "db", Port: "5432", User: "app", Password: "pw", SSLMode: "require",
	})
	require.Equal(t, "host=db port=5432 user=app password=pw dbname=clipship sslmode=require", dsn)
}

func TestErrorMapping(t *testing.T) {
	require.ErrorIs(t, notFound(sql.ErrNoRows), repository.ErrNotFound)
	other := errors.New("boom")
	require.Equal(t, other, notFound(other))

	err := uniqueViolation(&pq.Error{Code: "23505", Constraint: "profiles_referral_code_key"})
	require.ErrorIs(t, err, repository.ErrConflict)
	require.Contains(t, err.Error(), "profiles_referral_code_key")
	require.Equal(t, other, uniqueViolation(other))
}
