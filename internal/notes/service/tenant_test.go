package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/stretchr/testify/require"
)

func TestTenantInfo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "Acme", "admin@acme.test")
	member := f.invite(t, admin, "user@acme.test", domain.RoleMember)

	for range 3 {
		f.createNote(t, member, "n")
	}

	info, err := f.tenants.Info(ctx, member)
	require.NoError(t, err)
	require.Equal(t, 3, info.CurrentNotes)
	require.Equal(t, 3, info.Tenant.MaxNotes)
	require.False(t, info.CanCreate)
}

func TestUpgrade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "Acme", "admin@acme.test")
	member := f.invite(t, admin, "user@acme.test", domain.RoleMember)

	_, err := f.tenants.Upgrade(ctx, member)
	require.ErrorIs(t, err, ErrForbidden)

	tenant, err := f.tenants.Upgrade(ctx, admin)
	require.NoError(t, err)
	require.Equal(t, domain.PlanPro, tenant.Plan)
	require.Equal(t, domain.Unlimited, tenant.MaxNotes)

	_, err = f.tenants.Upgrade(ctx, admin)
	require.ErrorIs(t, err, ErrAlreadyPro)

	// Plan never moves back and the cap is gone.
	for range 5 {
		f.createNote(t, member, "n")
	}
	info, err := f.tenants.Info(ctx, admin)
	require.NoError(t, err)
	require.Equal(t, domain.PlanPro, info.Tenant.Plan)
	require.Equal(t, 5, info.CurrentNotes)
	require.True(t, info.CanCreate)
}

func TestTenantUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "Acme", "admin@acme.test")
	member := f.invite(t, admin, "user@acme.test", domain.RoleMember)
	f.register(t, "Globex", "admin@globex.test")

	tenant, users, err := f.tenants.Users(ctx, admin)
	require.NoError(t, err)
	require.Equal(t, "acme", tenant.Slug)
	require.Len(t, users, 2)

	_, _, err = f.tenants.Users(ctx, member)
	require.ErrorIs(t, err, ErrForbidden)
}
