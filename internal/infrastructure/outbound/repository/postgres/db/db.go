package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgDB is satisfied by both *pgxpool.Pool and pgx.Tx, so repositories work
// the same inside and outside a transaction.
type PgDB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
)

// ConstraintName returns the SQLSTATE and the violated constraint of err when
// it is a Postgres integrity error.
func ConstraintName(err error) (code string, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", "", false
	}
	switch pgErr.Code {
	case CodeUniqueViolation, CodeForeignKeyViolation, CodeCheckViolation:
		return pgErr.Code, pgErr.ConstraintName, true
	}
	return "", "", false
}
