package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/notes/internal/notes/store"
	"github.com/aussiebroadwan/notes/pkg/httpx"
	"github.com/aussiebroadwan/notes/pkg/notesdk"
)

// HealthHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Returns 200 while the process is running, with uptime in seconds and the build version.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	notesdk.HealthResponse
//	@Router			/health [get]
func HealthHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, notesdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Seconds(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Pings the backing store. Returns 503 while it is unreachable.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	notesdk.ReadyResponse
//	@Failure		503	{object}	notesdk.ReadyResponse
//	@Router			/readyz [get]
func ReadyzHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := notesdk.ReadyResponse{
			Status: "ok",
			Checks: map[string]string{"database": "ok"},
		}
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Checks["database"] = "error: " + err.Error()
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, resp)
	}
}

// IndexHandler godoc
//
//	@Summary		API index
//	@Description	Lists the available endpoints grouped by area.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	notesdk.IndexResponse
//	@Router			/ [get]
func IndexHandler(version string) http.HandlerFunc {
	endpoints := map[string]map[string]string{
		"auth": {
			"register": "POST /users/register",
			"login":    "POST /users/login",
			"invite":   "POST /users/invite",
			"profile":  "GET /profile",
		},
		"notes": {
			"list":   "GET /notes",
			"create": "POST /notes",
			"get":    "GET /notes/{id}",
			"update": "PUT /notes/{id}",
			"delete": "DELETE /notes/{id}",
		},
		"tenants": {
			"info":       "GET /tenants/{slug}",
			"upgrade":    "POST /tenants/{slug}/upgrade",
			"users":      "GET /tenants/{slug}/users",
			"deactivate": "DELETE /tenants/{slug}/users/{id}",
		},
		"system": {
			"health":  "GET /health",
			"ready":   "GET /readyz",
			"metrics": "GET /metrics",
			"docs":    "GET /swagger/",
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, notesdk.IndexResponse{
			Message:   "Notes API",
			Version:   version,
			Endpoints: endpoints,
		})
	}
}
