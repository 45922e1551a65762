package postgres

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
	"github.com/maxviazov/community-hub-service/internal/repository"
)

var adminColumns = []any{
	"id", "email", "password_hash", "role", "is_active", "last_login", "created_at", "updated_at",
}

type adminRepository struct {
	pool  *pgxpool.Pool
	table string
}

func NewAdminRepository(pool *pgxpool.Pool, table string) repository.AdminRepository {
	return &adminRepository{pool: pool, table: table}
}

func (r *adminRepository) Create(ctx context.Context, u model.AdminUser) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	_, err := exec(ctx, r.pool, insertInto(r.table).Rows(goqu.Record{
		"id":            u.ID.Hex(),
		"email":         u.Email,
		"password_hash": u.PasswordHash,
		"role":          u.Role,
		"is_active":     u.IsActive,
		"last_login":    nullable(u.LastLogin),
		"created_at":    u.CreatedAt,
		"updated_at":    u.UpdatedAt,
	}))
	return err
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (model.AdminUser, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.AdminUser{}, err
	}
	return collectOne[model.AdminUser](ctx, r.pool,
		from(r.table).Select(adminColumns...).Where(goqu.C("email").Eq(email)))
}

func (r *adminRepository) TouchLastLogin(ctx context.Context, id objectid.ID, at time.Time) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	n, err := exec(ctx, r.pool, update(r.table).
		Set(goqu.Record{"last_login": at, "updated_at": at}).
		Where(goqu.C("id").Eq(id.Hex())))
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
