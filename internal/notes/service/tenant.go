package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/internal/notes/policy"
	"github.com/aussiebroadwan/notes/internal/notes/store"
	"github.com/aussiebroadwan/notes/pkg/slogx"
)

type TenantService struct {
	Store    store.Store
	Recorder Recorder
}

// TenantInfo is a tenant with its current note usage.
type TenantInfo struct {
	Tenant       domain.Tenant
	CurrentNotes int
	CanCreate    bool
}

// Info returns the caller's tenant and its usage.
func (s *TenantService) Info(ctx context.Context, p domain.Principal) (TenantInfo, error) {
	if !policy.Can(p, policy.TenantRead) {
		return TenantInfo{}, ErrForbidden
	}
	return tenantInfo(ctx, s.Store, p.TenantID)
}

// Upgrade moves the caller's tenant from Free to Pro. There is no way back.
func (s *TenantService) Upgrade(ctx context.Context, p domain.Principal) (domain.Tenant, error) {
	log := slogx.FromContext(ctx)

	if !policy.Can(p, policy.TenantUpgrade) {
		return domain.Tenant{}, ErrForbidden
	}

	tenant, err := s.Store.Tenants().UpgradeToPro(ctx, p.TenantID)
	switch {
	case errors.Is(err, store.ErrConflict):
		return domain.Tenant{}, ErrAlreadyPro
	case errors.Is(err, store.ErrNotFound):
		return domain.Tenant{}, ErrTenantNotFound
	case err != nil:
		log.Error("failed to upgrade tenant", slog.String("tenant_id", p.TenantID), slog.Any("error", err))
		return domain.Tenant{}, err
	}

	recorderOrNop(s.Recorder).TenantUpgraded()
	log.Info("tenant upgraded",
		slog.String("tenant_id", tenant.ID),
		slog.String("slug", tenant.Slug),
		slog.String("by", p.UserID),
	)
	return tenant, nil
}

// Users lists the active users of the caller's tenant.
func (s *TenantService) Users(ctx context.Context, p domain.Principal) (domain.Tenant, []domain.User, error) {
	if !policy.Can(p, policy.TenantUsers) {
		return domain.Tenant{}, nil, ErrForbidden
	}

	tenant, err := s.Store.Tenants().GetTenantByID(ctx, p.TenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Tenant{}, nil, ErrTenantNotFound
		}
		return domain.Tenant{}, nil, err
	}

	users, err := s.Store.Users().ListActiveUsers(ctx, p.TenantID)
	if err != nil {
		return domain.Tenant{}, nil, err
	}
	return tenant, users, nil
}

func tenantInfo(ctx context.Context, st store.Store, tenantID string) (TenantInfo, error) {
	tenant, err := st.Tenants().GetTenantByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TenantInfo{}, ErrTenantNotFound
		}
		return TenantInfo{}, err
	}

	count, err := st.Notes().CountActiveNotes(ctx, tenantID)
	if err != nil {
		return TenantInfo{}, err
	}

	return TenantInfo{
		Tenant:       tenant,
		CurrentNotes: count,
		CanCreate:    tenant.CanCreateNote(count),
	}, nil
}
