package postgres

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
	"github.com/maxviazov/community-hub-service/internal/repository"
)

var eventRegistrationColumns = []any{
	"id", "event_id", "first_name", "last_name", "email", "status", "registered_at",
}

var communityRegistrationColumns = []any{
	"id", "first_name", "last_name", "email", "department", "level", "campus",
	"tech_skills", "aspiring_skills", "reason", "status", "created_at",
}

type eventRegistrationRepository struct {
	pool  *pgxpool.Pool
	table string
}

func NewEventRegistrationRepository(pool *pgxpool.Pool, table string) repository.EventRegistrationRepository {
	return &eventRegistrationRepository{pool: pool, table: table}
}

func (r *eventRegistrationRepository) Create(ctx context.Context, reg model.EventRegistration) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	_, err := exec(ctx, r.pool, insertInto(r.table).Rows(goqu.Record{
		"id":            reg.ID.Hex(),
		"event_id":      reg.EventID.Hex(),
		"first_name":    reg.FirstName,
		"last_name":     reg.LastName,
		"email":         reg.Email,
		"status":        reg.Status,
		"registered_at": reg.RegisteredAt,
	}))
	return err
}

func (r *eventRegistrationRepository) ExistsByEmail(ctx context.Context, eventID objectid.ID, email string) (bool, error) {
	if err := ensurePool(r.pool); err != nil {
		return false, err
	}
	n, err := NewStore(r.pool).Count(ctx, r.table, goqu.Ex{"event_id": eventID.Hex(), "email": email})
	return n > 0, err
}

// ListByEvent returns the attendees of one event, newest first.
func (r *eventRegistrationRepository) ListByEvent(ctx context.Context, eventID objectid.ID, p repository.Page) ([]model.EventRegistration, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	ds := from(r.table).Select(eventRegistrationColumns...).
		Where(goqu.C("event_id").Eq(eventID.Hex())).
		Order(goqu.C("registered_at").Desc(), goqu.C("id").Desc())
	return collect[model.EventRegistration](ctx, r.pool, window(ds, p))
}

func (r *eventRegistrationRepository) DeleteByEvent(ctx context.Context, eventID objectid.ID) (int64, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	return exec(ctx, r.pool, deleteFrom(r.table).Where(goqu.C("event_id").Eq(eventID.Hex())))
}

type communityRegistrationRepository struct {
	pool  *pgxpool.Pool
	table string
}

func NewCommunityRegistrationRepository(pool *pgxpool.Pool, table string) repository.CommunityRegistrationRepository {
	return &communityRegistrationRepository{pool: pool, table: table}
}

func (r *communityRegistrationRepository) Create(ctx context.Context, reg model.CommunityRegistration) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	_, err := exec(ctx, r.pool, insertInto(r.table).Rows(goqu.Record{
		"id":              reg.ID.Hex(),
		"first_name":      reg.FirstName,
		"last_name":       reg.LastName,
		"email":           reg.Email,
		"department":      reg.Department,
		"level":           reg.Level,
		"campus":          reg.Campus,
		"tech_skills":     reg.TechSkills,
		"aspiring_skills": reg.AspiringSkills,
		"reason":          reg.Reason,
		"status":          reg.Status,
		"created_at":      reg.CreatedAt,
	}))
	return err
}

func (r *communityRegistrationRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := ensurePool(r.pool); err != nil {
		return false, err
	}
	n, err := NewStore(r.pool).Count(ctx, r.table, goqu.C("email").Eq(email))
	return n > 0, err
}

func (r *communityRegistrationRepository) List(ctx context.Context, p repository.Page) ([]model.CommunityRegistration, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	ds := from(r.table).Select(communityRegistrationColumns...).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc())
	return collect[model.CommunityRegistration](ctx, r.pool, window(ds, p))
}

// ListByStatus returns every member with the given status; it is the mailing list for announcements.
func (r *communityRegistrationRepository) ListByStatus(ctx context.Context, status string) ([]model.CommunityRegistration, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	return collect[model.CommunityRegistration](ctx, r.pool,
		from(r.table).Select(communityRegistrationColumns...).
			Where(goqu.C("status").Eq(status)).
			Order(goqu.C("created_at").Desc()))
}
