package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/internal/notes/service"
	"github.com/aussiebroadwan/notes/pkg/httpx"
	"github.com/aussiebroadwan/notes/pkg/slogx"
)

type ctxKey int

const (
	principalKey ctxKey = iota
	tenantKey
)

func principalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(domain.Principal)
	return p, ok
}

func tenantFromContext(ctx context.Context) (domain.Tenant, bool) {
	t, ok := ctx.Value(tenantKey).(domain.Tenant)
	return t, ok
}

// authenticate resolves the bearer token into a principal and stores it,
// along with the tenant, on the request context.
func authenticate(auth *service.AuthService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, _ := httpx.BearerToken(r)
			p, tenant, err := auth.Authenticate(ctx, token)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx = context.WithValue(ctx, principalKey, p)
			ctx = context.WithValue(ctx, tenantKey, tenant)
			ctx = httpx.WithUserID(ctx, p.UserID)
			ctx = slogx.With(ctx,
				slog.String("user_id", p.UserID),
				slog.String("tenant", p.TenantSlug),
			)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireRole admits principals holding one of roles. It must run after
// authenticate.
func requireRole(roles ...domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := principalFromContext(r.Context())
			if !ok {
				writeError(w, r, service.ErrUnauthenticated)
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, r, service.ErrForbidden)
		})
	}
}

func requireAdmin() httpx.Middleware {
	return requireRole(domain.RoleAdmin)
}

func requireMember() httpx.Middleware {
	return requireRole(domain.RoleAdmin, domain.RoleMember)
}

// requireTenantPath rejects requests whose {slug} path value is not the
// caller's tenant.
func requireTenantPath() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := principalFromContext(r.Context())
			if !ok {
				writeError(w, r, service.ErrUnauthenticated)
				return
			}
			if r.PathValue("slug") != p.TenantSlug {
				slogx.FromContext(r.Context()).Warn("tenant path mismatch", slog.String("slug", r.PathValue("slug")))
				writeError(w, r, service.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// mustPrincipal is for handlers mounted behind authenticate.
func mustPrincipal(r *http.Request) domain.Principal {
	p, ok := principalFromContext(r.Context())
	if !ok {
		panic("http: handler mounted without authenticate")
	}
	return p
}
