package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/community-hub-service/internal/repository"
)

// dialect builds every statement in this package; prepared mode keeps values out of the SQL text.
var dialect = goqu.Dialect("postgres")

// q is a minimal query executor implemented by both pgxpool.Pool and pgx.Tx.
type q interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

func withTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// getQ returns the transaction carried by ctx, falling back to the pool.
func getQ(ctx context.Context, pool *pgxpool.Pool) q {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok && tx != nil {
		return tx
	}
	return pool
}

type sqlBuilder interface {
	ToSQL() (string, []any, error)
}

// exec runs a built statement and returns the affected row count.
func exec(ctx context.Context, pool *pgxpool.Pool, b sqlBuilder) (int64, error) {
	sql, args, err := b.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build statement: %w", err)
	}
	tag, err := getQ(ctx, pool).Exec(ctx, sql, args...)
	if err != nil {
		return 0, repository.MapPgError(err)
	}
	return tag.RowsAffected(), nil
}

// collect runs a built select and maps every row onto T by db tag.
func collect[T any](ctx context.Context, pool *pgxpool.Pool, b sqlBuilder) ([]T, error) {
	sql, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := getQ(ctx, pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return out, nil
}

// collectOne is collect for exactly one row; no row maps to repository.ErrNotFound.
func collectOne[T any](ctx context.Context, pool *pgxpool.Pool, b sqlBuilder) (T, error) {
	var zero T
	sql, args, err := b.ToSQL()
	if err != nil {
		return zero, fmt.Errorf("build query: %w", err)
	}
	rows, err := getQ(ctx, pool).Query(ctx, sql, args...)
	if err != nil {
		return zero, repository.MapPgError(err)
	}
	out, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		return zero, repository.MapPgError(err)
	}
	return out, nil
}

// window applies the page bounds to a select.
func window(ds *goqu.SelectDataset, p repository.Page) *goqu.SelectDataset {
	if skip := p.Skip(); skip > 0 {
		ds = ds.Offset(uint(skip))
	}
	if take, ok := p.Take(); ok {
		ds = ds.Limit(uint(take))
	}
	return ds
}

// nullable turns a nil pointer into SQL NULL and dereferences everything else.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

type txManager struct{ pool *pgxpool.Pool }

func NewTxManager(pool *pgxpool.Pool) repository.TxManager { return &txManager{pool: pool} }

func (m *txManager) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	if err := ensurePool(m.pool); err != nil {
		return err
	}
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return repository.MapPgError(err)
	}
	defer func() {
		// no-op after a successful commit
		_ = tx.Rollback(context.Background())
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		return repository.MapPgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return repository.MapPgError(err)
	}
	return nil
}

var _ repository.TxManager = (*txManager)(nil)

func ensurePool(pool *pgxpool.Pool) error {
	if pool == nil {
		return errors.New("pgx pool is nil")
	}
	return nil
}
