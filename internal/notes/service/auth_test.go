package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.users.Register(ctx, RegisterInput{
		Name: "Ada", Email: "admin@acme.test", Password: "correct horse", CompanyName: "Acme",
	})
	require.NoError(t, err)

	p, tenant, err := f.auth.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	require.Equal(t, sess.User.ID, p.UserID)
	require.Equal(t, domain.RoleAdmin, p.Role)
	require.Equal(t, "acme", p.TenantSlug)
	require.Equal(t, sess.Tenant.ID, tenant.ID)
}

func TestAuthenticate_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "Acme", "admin@acme.test")
	member := f.invite(t, admin, "user@acme.test", domain.RoleMember)

	t.Run("missing token", func(t *testing.T) {
		_, _, err := f.auth.Authenticate(ctx, "")
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, _, err := f.auth.Authenticate(ctx, "abc.def.ghi")
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other, err := jwtx.NewHS256([]byte(strings.Repeat("z", 32)), "notes-test")
		require.NoError(t, err)
		token, err := other.Sign(jwtx.NewSessionClaims(admin.UserID, "", "", "", "", time.Hour, "notes-test", time.Now()))
		require.NoError(t, err)

		_, _, err = f.auth.Authenticate(ctx, token)
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := &AuthService{
			Store: f.store, Signer: f.auth.Signer, Verifier: f.auth.Verifier,
			Issuer: "notes-test", TTL: time.Minute,
			now: func() time.Time { return time.Now().Add(-time.Hour) },
		}
		user, err := f.store.Users().GetUserByID(ctx, admin.UserID)
		require.NoError(t, err)
		tenant, err := f.store.Tenants().GetTenantByID(ctx, admin.TenantID)
		require.NoError(t, err)

		token, err := expired.IssueToken(user, tenant)
		require.NoError(t, err)

		_, _, err = f.auth.Authenticate(ctx, token)
		require.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("unknown user", func(t *testing.T) {
		token, err := f.auth.Signer.Sign(jwtx.NewSessionClaims("01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", "", "Admin", admin.TenantID, "acme", time.Hour, "notes-test", time.Now()))
		require.NoError(t, err)

		_, _, err = f.auth.Authenticate(ctx, token)
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("deactivated user", func(t *testing.T) {
		user, err := f.store.Users().GetUserByID(ctx, member.UserID)
		require.NoError(t, err)
		tenant, err := f.store.Tenants().GetTenantByID(ctx, member.TenantID)
		require.NoError(t, err)
		token, err := f.auth.IssueToken(user, tenant)
		require.NoError(t, err)

		_, _, err = f.auth.Authenticate(ctx, token)
		require.NoError(t, err)

		require.NoError(t, f.users.Deactivate(ctx, admin, member.UserID))

		_, _, err = f.auth.Authenticate(ctx, token)
		require.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestAuthenticate_ClaimsAreNotTrusted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.register(t, "Acme", "admin@acme.test")
	member := f.invite(t, acme, "user@acme.test", domain.RoleMember)
	globex := f.register(t, "Globex", "admin@globex.test")

	// A Member token claiming Admin of another tenant still resolves to the
	// stored role and tenant.
	forged, err := f.auth.Signer.Sign(jwtx.NewSessionClaims(
		member.UserID, member.Email, "Admin", globex.TenantID, "globex",
		time.Hour, "notes-test", time.Now(),
	))
	require.NoError(t, err)

	p, tenant, err := f.auth.Authenticate(ctx, forged)
	require.NoError(t, err)
	require.Equal(t, domain.RoleMember, p.Role)
	require.Equal(t, acme.TenantID, p.TenantID)
	require.Equal(t, "acme", tenant.Slug)
}
