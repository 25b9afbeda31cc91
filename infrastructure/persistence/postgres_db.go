package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clip-and-ship/domain/repository"
	"clip-and-ship/infrastructure/configuration"
	"clip-and-ship/infrastructure/logger"

	"github.com/lib/pq"
)

// NewPostgreSQLDB opens the primary Postgres pool from configuration.
func NewPostgreSQLDB() (*sql.DB, error) {
	c := configuration.C.Database.Psql
	db, err := sql.Open("postgres", postgresDSN(c))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.GetLogger().WithField("host", c.Host).Info("PostgreSQL connected")
	return db, nil
}

func postgresDSN(c configuration.Db) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// uniqueViolation maps a Postgres unique violation to repository.ErrConflict.
func uniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", repository.ErrConflict, pqErr.Constraint)
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time
	return &v
}
