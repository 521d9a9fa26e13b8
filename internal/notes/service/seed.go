package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/internal/notes/store"
	"github.com/aussiebroadwan/notes/pkg/cryptox"
	"github.com/aussiebroadwan/notes/pkg/idx"
	"github.com/aussiebroadwan/notes/pkg/slogx"
)

// DemoPassword is the password of every seeded demo account.
const DemoPassword = "password"

type SeedAccount struct {
	Email     string
	Role      domain.Role
	FirstName string
	LastName  string
}

type SeedTenant struct {
	Name     string
	Slug     string
	Accounts []SeedAccount
}

// DemoTenants are the acme and globex tenants used for local testing.
var DemoTenants = []SeedTenant{
	{
		Name: "Acme",
		Slug: "acme",
		Accounts: []SeedAccount{
			{Email: "admin@acme.test", Role: domain.RoleAdmin, FirstName: "Admin", LastName: "Acme"},
			{Email: "user@acme.test", Role: domain.RoleMember, FirstName: "User", LastName: "Acme"},
		},
	},
	{
		Name: "Globex",
		Slug: "globex",
		Accounts: []SeedAccount{
			{Email: "admin@globex.test", Role: domain.RoleAdmin, FirstName: "Admin", LastName: "Globex"},
			{Email: "user@globex.test", Role: domain.RoleMember, FirstName: "User", LastName: "Globex"},
		},
	},
}

type SeedService struct {
	Store store.Store
}

// SeedResult reports what a seed run created.
type SeedResult struct {
	TenantsCreated int
	UsersCreated   int
}

// Seed creates the given tenants on the Free plan with their accounts.
// Tenants and users that already exist are left alone, so running it twice
// is harmless.
func (s *SeedService) Seed(ctx context.Context, tenants []SeedTenant, password string) (SeedResult, error) {
	log := slogx.FromContext(ctx)
	var res SeedResult

	// 1. Hash the shared password once
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return res, err
	}

	for _, st := range tenants {
		err := s.Store.WithTx(ctx, func(tx store.Tx) error {
			now := domain.Now()

			// 2. Find or create the tenant
			tenant, err := tx.Tenants().GetTenantBySlug(ctx, st.Slug)
			switch {
			case errors.Is(err, store.ErrNotFound):
				tenant = domain.Tenant{
					ID:        idx.New().String(),
					Name:      st.Name,
					Slug:      st.Slug,
					Plan:      domain.PlanFree,
					MaxNotes:  domain.MaxNotesFor(domain.PlanFree),
					IsActive:  true,
					CreatedAt: now,
					UpdatedAt: now,
				}
				if err := tx.Tenants().CreateTenant(ctx, tenant); err != nil {
					return err
				}
				res.TenantsCreated++
			case err != nil:
				return err
			}

			// 3. Create missing accounts
			for _, acc := range st.Accounts {
				_, err := tx.Users().GetUserByEmail(ctx, acc.Email)
				if err == nil {
					continue
				}
				if !errors.Is(err, store.ErrNotFound) {
					return err
				}

				err = tx.Users().CreateUser(ctx, domain.User{
					ID:           idx.New().String(),
					Email:        acc.Email,
					PasswordHash: hash,
					Role:         acc.Role,
					TenantID:     tenant.ID,
					FirstName:    acc.FirstName,
					LastName:     acc.LastName,
					IsActive:     true,
					CreatedAt:    now,
					UpdatedAt:    now,
				})
				if err != nil {
					return err
				}
				res.UsersCreated++
			}
			return nil
		})
		if err != nil {
			log.Error("failed to seed tenant", slog.String("slug", st.Slug), slog.Any("error", err))
			return res, err
		}
	}

	log.Info("seed complete",
		slog.Int("tenants_created", res.TenantsCreated),
		slog.Int("users_created", res.UsersCreated),
	)
	return res, nil
}
