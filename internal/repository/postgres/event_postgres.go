package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	jsoniter "github.com/json-iterator/go"

	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
	"github.com/maxviazov/community-hub-service/internal/repository"
)

var eventColumns = []any{
	"id", "title", "description", "date", "location", "cover_image", "duration",
	"speakers", "max_attendees", "announcement_sent", "announcement_sent_at", "created_at", "updated_at",
}

type eventRepository struct {
	pool  *pgxpool.Pool
	table string
}

func NewEventRepository(pool *pgxpool.Pool, table string) repository.EventRepository {
	return &eventRepository{pool: pool, table: table}
}

func (r *eventRepository) Create(ctx context.Context, e model.Event) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	speakers, err := jsonb(e.Speakers)
	if err != nil {
		return err
	}
	_, err = exec(ctx, r.pool, insertInto(r.table).Rows(goqu.Record{
		"id":                   e.ID.Hex(),
		"title":                e.Title,
		"description":          e.Description,
		"date":                 e.Date,
		"location":             e.Location,
		"cover_image":          e.CoverImage,
		"duration":             e.Duration,
		"speakers":             speakers,
		"max_attendees":        nullable(e.MaxAttendees),
		"announcement_sent":    e.AnnouncementSent,
		"announcement_sent_at": nullable(e.AnnouncementSentAt),
		"created_at":           e.CreatedAt,
		"updated_at":           e.UpdatedAt,
	}))
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id objectid.ID) (model.Event, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Event{}, err
	}
	return collectOne[model.Event](ctx, r.pool,
		from(r.table).Select(eventColumns...).Where(goqu.C("id").Eq(id.Hex())))
}

func (r *eventRepository) LockByID(ctx context.Context, id objectid.ID) (model.Event, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Event{}, err
	}
	return collectOne[model.Event](ctx, r.pool,
		from(r.table).Select(eventColumns...).Where(goqu.C("id").Eq(id.Hex())).ForUpdate(exp.Wait))
}

// List returns one window of events, most recent date first.
func (r *eventRepository) List(ctx context.Context, p repository.Page) ([]model.Event, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	ds := from(r.table).Select(eventColumns...).Order(goqu.C("date").Desc(), goqu.C("id").Desc())
	return collect[model.Event](ctx, r.pool, window(ds, p))
}

func (r *eventRepository) Update(ctx context.Context, id objectid.ID, patch model.EventPatch) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	set := goqu.Record{"updated_at": patch.UpdatedAt}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Date != nil {
		set["date"] = *patch.Date
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.CoverImage != nil {
		set["cover_image"] = *patch.CoverImage
	}
	if patch.Duration != nil {
		set["duration"] = *patch.Duration
	}
	if patch.Speakers != nil {
		speakers, err := jsonb(*patch.Speakers)
		if err != nil {
			return err
		}
		set["speakers"] = speakers
	}
	if patch.MaxAttendees != nil {
		if *patch.MaxAttendees == 0 {
			set["max_attendees"] = nil
		} else {
			set["max_attendees"] = *patch.MaxAttendees
		}
	}

	n, err := exec(ctx, r.pool, update(r.table).Set(set).Where(goqu.C("id").Eq(id.Hex())))
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id objectid.ID) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	n, err := exec(ctx, r.pool, deleteFrom(r.table).Where(goqu.C("id").Eq(id.Hex())))
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *eventRepository) MarkAnnouncementSent(ctx context.Context, id objectid.ID, at time.Time) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	n, err := exec(ctx, r.pool, update(r.table).Set(goqu.Record{
		"announcement_sent":    true,
		"announcement_sent_at": at,
		"updated_at":           at,
	}).Where(goqu.C("id").Eq(id.Hex())))
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// jsonb encodes an inline document for a JSONB column.
func jsonb(v any) ([]byte, error) {
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode jsonb: %w", err)
	}
	return b, nil
}
