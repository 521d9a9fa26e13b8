package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/internal/notes/store"
)

const tenantColumns = `id, name, slug, plan, max_notes, is_active, created_at, updated_at`

type tenantsRepo struct {
	db dbtx
}

func (r *tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (`+tenantColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Slug, string(t.Plan), t.MaxNotes, t.IsActive,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *tenantsRepo) GetTenantByID(ctx context.Context, id string) (domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id)
	return scanTenant(row)
}

func (r *tenantsRepo) GetTenantBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE slug = ?`, slug)
	return scanTenant(row)
}

func (r *tenantsRepo) UpgradeToPro(ctx context.Context, id string) (domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE tenants SET plan = 'Pro', max_notes = ?, updated_at = ?
		 WHERE id = ? AND plan = 'Free'
		 RETURNING `+tenantColumns,
		domain.Unlimited, formatTime(time.Now()), id,
	)

	t, err := scanTenant(row)
	if !errors.Is(err, store.ErrNotFound) {
		return t, err
	}

	// Nothing matched: either the tenant is gone or it is not on Free.
	if _, err := r.GetTenantByID(ctx, id); err != nil {
		return domain.Tenant{}, err
	}
	return domain.Tenant{}, store.ErrConflict
}

func (r *tenantsRepo) DeleteTenant(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tenants WHERE id = ? AND NOT EXISTS (SELECT 1 FROM users WHERE tenant_id = ?)`,
		id, id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	if _, err := r.GetTenantByID(ctx, id); err != nil {
		return err
	}
	return store.ErrConflict
}

func (r *tenantsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func scanTenant(row scanner) (domain.Tenant, error) {
	var (
		t                    domain.Tenant
		plan                 string
		createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &plan, &t.MaxNotes, &t.IsActive, &createdAt, &updatedAt); err != nil {
		return domain.Tenant{}, mapNotFound(err)
	}
	t.Plan = domain.Plan(plan)

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Tenant{}, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Tenant{}, err
	}
	return t, nil
}
