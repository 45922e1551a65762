package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
	"github.com/maxviazov/community-hub-service/internal/repository"
)

var emailLogColumns = []any{
	"id", "event_id", "email_type", "trigger", "recipient_count", "subject",
	"provider_id", "time_frame", "html_content_length", "sent_at",
}

type emailLogRepository struct {
	pool  *pgxpool.Pool
	table string
}

func NewEmailLogRepository(pool *pgxpool.Pool, table string) repository.EmailLogRepository {
	return &emailLogRepository{pool: pool, table: table}
}

func (r *emailLogRepository) Create(ctx context.Context, l model.EmailLog) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	var eventID, timeFrame any
	if l.EventID != nil {
		eventID = l.EventID.Hex()
	}
	if l.TimeFrame != nil {
		timeFrame = string(*l.TimeFrame)
	}
	_, err := exec(ctx, r.pool, insertInto(r.table).Rows(goqu.Record{
		"id":                  l.ID.Hex(),
		"event_id":            eventID,
		"email_type":          l.EmailType,
		"trigger":             l.Trigger,
		"recipient_count":     l.RecipientCount,
		"subject":             l.Subject,
		"provider_id":         nullable(l.ProviderID),
		"time_frame":          timeFrame,
		"html_content_length": nullable(l.HTMLContentLength),
		"sent_at":             l.SentAt,
	}))
	return err
}

func (r *emailLogRepository) ListByEvent(ctx context.Context, eventID objectid.ID) ([]model.EmailLog, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	return collect[model.EmailLog](ctx, r.pool,
		from(r.table).Select(emailLogColumns...).
			Where(goqu.C("event_id").Eq(eventID.Hex())).
			Order(goqu.C("sent_at").Desc()))
}

// ListRecent returns the latest sends across every event.
func (r *emailLogRepository) ListRecent(ctx context.Context, limit repository.Limit) ([]model.EmailLog, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	ds := from(r.table).Select(emailLogColumns...).Order(goqu.C("sent_at").Desc(), goqu.C("id").Desc())
	return collect[model.EmailLog](ctx, r.pool, window(ds, repository.NewPage(1, limit)))
}

// ReminderTimeFrames lists the reminder slots already used for an event.
func (r *emailLogRepository) ReminderTimeFrames(ctx context.Context, eventID objectid.ID) ([]model.TimeFrame, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	sql, args, err := from(r.table).
		SelectDistinct("time_frame").
		Where(
			goqu.C("event_id").Eq(eventID.Hex()),
			goqu.C("email_type").Eq(model.EmailTypeReminder),
			goqu.C("time_frame").IsNotNull(),
		).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := getQ(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	frames, err := pgx.CollectRows(rows, pgx.RowTo[model.TimeFrame])
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return frames, nil
}

func (r *emailLogRepository) DeleteByEvent(ctx context.Context, eventID objectid.ID) (int64, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	return exec(ctx, r.pool, deleteFrom(r.table).Where(goqu.C("event_id").Eq(eventID.Hex())))
}
