package repository

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository keeps the lookup history and geocoding failures in PostgreSQL.
type Repository struct {
	db  Database
	log *slog.Logger
}

// Database is the subset of pgxpool.Pool the repository needs.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Interface interface {
	RecordLookup(ctx context.Context, lookup models.Lookup) (int64, error)
	RecentLookups(ctx context.Context, limit int) ([]models.Lookup, error)
	RecordFailure(ctx context.Context, query string, errMsg string) error
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
