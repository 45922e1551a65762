package postgres

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
	"github.com/maxviazov/community-hub-service/internal/repository"
)

var coreTeamColumns = []any{
	"id", "name", "role", "about", "profile_image", "social_links", "created_at", "updated_at",
}

type coreTeamRepository struct {
	pool  *pgxpool.Pool
	table string
}

func NewCoreTeamRepository(pool *pgxpool.Pool, table string) repository.CoreTeamRepository {
	return &coreTeamRepository{pool: pool, table: table}
}

func (r *coreTeamRepository) Create(ctx context.Context, m model.CoreTeamMember) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	links, err := jsonb(m.SocialLinks)
	if err != nil {
		return err
	}
	_, err = exec(ctx, r.pool, insertInto(r.table).Rows(goqu.Record{
		"id":            m.ID.Hex(),
		"name":          m.Name,
		"role":          m.Role,
		"about":         m.About,
		"profile_image": m.ProfileImage,
		"social_links":  links,
		"created_at":    m.CreatedAt,
		"updated_at":    m.UpdatedAt,
	}))
	return err
}

func (r *coreTeamRepository) GetByID(ctx context.Context, id objectid.ID) (model.CoreTeamMember, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.CoreTeamMember{}, err
	}
	return collectOne[model.CoreTeamMember](ctx, r.pool,
		from(r.table).Select(coreTeamColumns...).Where(goqu.C("id").Eq(id.Hex())))
}

// ListAll returns the whole team, newest member first.
func (r *coreTeamRepository) ListAll(ctx context.Context) ([]model.CoreTeamMember, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	return collect[model.CoreTeamMember](ctx, r.pool,
		from(r.table).Select(coreTeamColumns...).Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()))
}

func (r *coreTeamRepository) Update(ctx context.Context, id objectid.ID, patch model.CoreTeamPatch) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	set := goqu.Record{"updated_at": patch.UpdatedAt}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}
	if patch.About != nil {
		set["about"] = *patch.About
	}
	if patch.ProfileImage != nil {
		set["profile_image"] = *patch.ProfileImage
	}
	if patch.SocialLinks != nil {
		links, err := jsonb(*patch.SocialLinks)
		if err != nil {
			return err
		}
		set["social_links"] = links
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

func (r *coreTeamRepository) Delete(ctx context.Context, id objectid.ID) error {
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
