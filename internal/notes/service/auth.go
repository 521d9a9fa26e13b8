package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/internal/notes/store"
	"github.com/aussiebroadwan/notes/pkg/jwtx"
	"github.com/aussiebroadwan/notes/pkg/slogx"
)

// AuthService issues session tokens and turns presented tokens back into a
// principal. The token is only a hint: user and tenant are always reloaded
// from the store.
type AuthService struct {
	Store    store.Store
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Issuer   string
	TTL      time.Duration

	now func() time.Time
}

func (s *AuthService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

// IssueToken signs a session token for u in t.
func (s *AuthService) IssueToken(u domain.User, t domain.Tenant) (string, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	claims := jwtx.NewSessionClaims(
		u.ID, u.Email, string(u.Role),
		t.ID, t.Slug,
		ttl, s.Issuer, s.clock(),
	)
	return s.Signer.Sign(claims)
}

// Authenticate resolves a raw bearer token to the calling principal and its
// tenant.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (domain.Principal, domain.Tenant, error) {
	log := slogx.FromContext(ctx)

	// 1. A token must be presented
	if raw == "" {
		return domain.Principal{}, domain.Tenant{}, ErrUnauthenticated
	}

	// 2. Verify signature, issuer and expiry
	claims, err := s.Verifier.Verify(raw)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return domain.Principal{}, domain.Tenant{}, ErrTokenExpired
		}
		log.Debug("token verification failed", slog.Any("error", err))
		return domain.Principal{}, domain.Tenant{}, ErrTokenInvalid
	}

	// 3. The user must still exist and be active
	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Principal{}, domain.Tenant{}, ErrUnauthenticated
		}
		return domain.Principal{}, domain.Tenant{}, err
	}
	if !user.IsActive {
		log.Info("token presented for deactivated user", slog.String("user_id", user.ID))
		return domain.Principal{}, domain.Tenant{}, ErrUnauthenticated
	}

	// 4. The tenant comes from the user record, never from the claim
	tenant, err := s.Store.Tenants().GetTenantByID(ctx, user.TenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Principal{}, domain.Tenant{}, ErrUnauthenticated
		}
		return domain.Principal{}, domain.Tenant{}, err
	}
	if !tenant.IsActive {
		log.Info("token presented for deactivated tenant", slog.String("tenant_id", tenant.ID))
		return domain.Principal{}, domain.Tenant{}, ErrUnauthenticated
	}

	return domain.Principal{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		TenantID:   tenant.ID,
		TenantSlug: tenant.Slug,
	}, tenant, nil
}
