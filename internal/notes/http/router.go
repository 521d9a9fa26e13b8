package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/notes/internal/notes/metrics"
	"github.com/aussiebroadwan/notes/internal/notes/service"
	"github.com/aussiebroadwan/notes/internal/notes/store"
	"github.com/aussiebroadwan/notes/pkg/httpx"
	"github.com/aussiebroadwan/notes/pkg/slogx"

	_ "github.com/aussiebroadwan/notes/api/notes" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	metrics      *metrics.Metrics

	store         store.Store
	AuthService   *service.AuthService
	UserService   *service.UserService
	TenantService *service.TenantService
	NoteService   *service.NoteService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	m *metrics.Metrics,
	cors httpx.CORSConfig,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      m,
		logger:       logger,
	}

	// Metrics must wrap the mux directly so it can read the matched pattern.
	r.middlewares = []httpx.Middleware{
		httpx.Recover(),
		httpx.CORS(cors),
		slogx.HTTPMiddleware(r.logger),
	}
	if m != nil {
		r.middlewares = append(r.middlewares, m.HTTP.Middleware())
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerNotes()
	r.registerTenants()
	r.registerSystem()

	r.Mux.Handle("GET /swagger/",
		httpx.Chain(httpSwagger.Handler(),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Notes API
//	@version		1.0.0
//	@description	Multi-tenant notes backend. Each company is a tenant with its own users and notes.
//	@description
//	@description				Free tenants hold up to 3 active notes, Pro tenants are unlimited.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/notes
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token from register or login. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	// Credential endpoints, limited by IP and submitted email
	r.Mux.Handle("POST /users/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
	r.Mux.Handle("POST /users/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	r.Mux.Handle("POST /users/invite",
		httpx.Chain(http.HandlerFunc(h.HandleInvite),
			authenticate(r.AuthService),
			requireAdmin(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Any authenticated user, Admin or Member
	r.Mux.Handle("GET /profile",
		httpx.Chain(ProfileHandler(r.UserService),
			authenticate(r.AuthService),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerNotes() {
	h := &NotesHandler{NoteService: r.NoteService}

	member := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			authenticate(r.AuthService),
			requireMember(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("GET /notes", member(h.HandleList))
	r.Mux.Handle("POST /notes", member(h.HandleCreate))
	r.Mux.Handle("GET /notes/{id}", member(h.HandleGet))
	r.Mux.Handle("PUT /notes/{id}", member(h.HandleUpdate))
	r.Mux.Handle("DELETE /notes/{id}", member(h.HandleDelete))
}

func (r *Router) registerTenants() {
	h := &TenantsHandler{
		TenantService: r.TenantService,
		UserService:   r.UserService,
	}

	r.Mux.Handle("GET /tenants/{slug}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			authenticate(r.AuthService),
			requireMember(),
			requireTenantPath(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	admin := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			authenticate(r.AuthService),
			requireAdmin(),
			requireTenantPath(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /tenants/{slug}/upgrade", admin(h.HandleUpgrade))
	r.Mux.Handle("GET /tenants/{slug}/users", admin(h.HandleUsers))
	r.Mux.Handle("DELETE /tenants/{slug}/users/{id}", admin(h.HandleDeactivateUser))
}

func (r *Router) registerSystem() {
	// Probes and scrapes poll often
	r.Mux.Handle("GET /health",
		httpx.Chain(HealthHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.store),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	if r.metrics != nil {
		r.Mux.Handle("GET /metrics",
			httpx.Chain(r.metrics.Handler(),
				httpx.RateLimitByIP(httpx.PublicLimit),
			),
		)
	}

	// {$} keeps the index from catching every unmatched path
	r.Mux.Handle("GET /{$}",
		httpx.Chain(IndexHandler(r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
