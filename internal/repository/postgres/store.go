package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/community-hub-service/internal/repository"
)

// Store answers filtered counts over any collection. It backs the read-side aggregator.
type Store struct{ pool *pgxpool.Pool }

func NewStore(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

// Count returns the number of rows in collection matching filter; a nil filter counts everything.
func (s *Store) Count(ctx context.Context, collection string, filter exp.Expression) (int64, error) {
	if err := ensurePool(s.pool); err != nil {
		return 0, err
	}
	ds := from(collection).Select(goqu.COUNT(goqu.Star()))
	if filter != nil {
		ds = ds.Where(filter)
	}
	sql, args, err := ds.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count on %s: %w", collection, err)
	}
	var n int64
	if err := getQ(ctx, s.pool).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, repository.MapPgError(err)
	}
	return n, nil
}

func from(table string) *goqu.SelectDataset { return dialect.From(table).Prepared(true) }

func insertInto(table string) *goqu.InsertDataset { return dialect.Insert(table).Prepared(true) }

func update(table string) *goqu.UpdateDataset { return dialect.Update(table).Prepared(true) }

func deleteFrom(table string) *goqu.DeleteDataset { return dialect.Delete(table).Prepared(true) }
