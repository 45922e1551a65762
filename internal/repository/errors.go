package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Domain-level errors repository implementations bubble up instead of driver errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrConflict      = errors.New("conflict")
)

// MapPgError translates the Postgres conditions higher layers handle explicitly into
// domain errors, naming the violated constraint when Postgres reports one.
// Everything else passes through so the caller can log the original.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return withConstraint(ErrAlreadyExists, pgErr.ConstraintName)
		case pgerrcode.ForeignKeyViolation, pgerrcode.CheckViolation:
			return withConstraint(ErrConflict, pgErr.ConstraintName)
		}
	}
	return err
}

func withConstraint(sentinel error, constraint string) error {
	if constraint == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, constraint)
}
