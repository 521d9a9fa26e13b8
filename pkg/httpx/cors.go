package httpx

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
	MaxAge           int // seconds
}

// CORS answers preflight requests and decorates responses for the origins
// in cfg. An empty origin list allows any origin without credentials.
func CORS(cfg CORSConfig) Middleware {
	origins := make([]string, 0, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	creds := cfg.AllowCredentials
	if len(origins) == 0 {
		origins = []string{"*"}
		creds = false
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: creds,
		MaxAge:           cfg.MaxAge,
	})
}
