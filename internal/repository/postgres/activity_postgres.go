package postgres

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/repository"
)

var activityColumns = []any{"id", "action", "event_id", "member_id", "details", "created_at"}

type activityRepository struct {
	pool  *pgxpool.Pool
	table string
}

func NewActivityRepository(pool *pgxpool.Pool, table string) repository.ActivityRepository {
	return &activityRepository{pool: pool, table: table}
}

func (r *activityRepository) Create(ctx context.Context, a model.Activity) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	var eventID, memberID any
	if a.EventID != nil {
		eventID = a.EventID.Hex()
	}
	if a.MemberID != nil {
		memberID = a.MemberID.Hex()
	}
	_, err := exec(ctx, r.pool, insertInto(r.table).Rows(goqu.Record{
		"id":         a.ID.Hex(),
		"action":     a.Action,
		"event_id":   eventID,
		"member_id":  memberID,
		"details":    a.Details,
		"created_at": a.CreatedAt,
	}))
	return err
}

func (r *activityRepository) List(ctx context.Context, p repository.Page) ([]model.Activity, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	ds := from(r.table).Select(activityColumns...).Order(goqu.C("created_at").Desc(), goqu.C("id").Desc())
	return collect[model.Activity](ctx, r.pool, window(ds, p))
}
