package httpx_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/notes/pkg/httpx"
	"github.com/stretchr/testify/require"
)

// echoBody replies with the request body so tests can check it survived the
// limiter.
var echoBody = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	_, _ = w.Write(body)
})

func login(h http.Handler, remote, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(body))
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLoginLimitKeysOnIPAndEmail(t *testing.T) {
	h := httpx.Chain(echoBody, httpx.RateLimitByIPAndJSONField(
		httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}, "email"))

	ada := `{"email":"ada@acme.test","password":"x"}`
	for range 2 {
		rec := login(h, "10.0.0.1:5000", ada)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, ada, rec.Body.String(), "handler still sees the body")
	}

	t.Run("same email in another case is the same bucket", func(t *testing.T) {
		rec := login(h, "10.0.0.1:5001", `{"email":" ADA@Acme.Test ","password":"x"}`)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))

		var body httpx.ErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "rate_limit_exceeded", body.Error)
	})

	t.Run("other email from the same address", func(t *testing.T) {
		rec := login(h, "10.0.0.1:5000", `{"email":"bob@acme.test","password":"x"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("same email from another address", func(t *testing.T) {
		rec := login(h, "10.0.0.2:5000", ada)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestNotesLimitKeysOnUser(t *testing.T) {
	// Stands in for the authentication middleware.
	asUser := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := r.Header.Get("X-User"); id != "" {
				r = r.WithContext(httpx.WithUserID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
	h := httpx.Chain(echoBody, asUser,
		httpx.RateLimitByUser(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}))

	get := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/notes", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		req.Header.Set("X-User", user)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, get("user-1"))
	require.Equal(t, http.StatusTooManyRequests, get("user-1"))
	require.Equal(t, http.StatusOK, get("user-2"), "colleagues behind one address have their own budget")
	require.Equal(t, http.StatusOK, get(""))
	require.Equal(t, http.StatusTooManyRequests, get(""))
}

func TestJSONFieldKeyExtractor(t *testing.T) {
	extract := httpx.JSONFieldKeyExtractor("email")

	tests := []struct {
		name string
		body string
		want string
	}{
		{"normalized", `{"email":" Ada@Acme.Test "}`, "ada@acme.test"},
		{"missing", `{"password":"x"}`, ""},
		{"not a string", `{"email":42}`, ""},
		{"not json", `email=ada@acme.test`, ""},
		{"empty", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/users/register", strings.NewReader(tt.body))
			require.Equal(t, tt.want, extract(req))

			rest, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			require.Equal(t, tt.body, string(rest))
		})
	}
}

func TestIPKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.RemoteAddr = "192.0.2.7:4000"
	require.Equal(t, "192.0.2.7", httpx.IPKeyExtractor(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	require.Equal(t, "198.51.100.2", httpx.IPKeyExtractor(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	require.Equal(t, "203.0.113.9", httpx.IPKeyExtractor(req))
}

func TestLoadRateLimitProfiles(t *testing.T) {
	strict, lenient := httpx.StrictLimit, httpx.LenientLimit
	t.Cleanup(func() { httpx.StrictLimit, httpx.LenientLimit = strict, lenient })

	t.Setenv("RATELIMIT_STRICT_REQUESTS", "50")
	t.Setenv("RATELIMIT_STRICT_WINDOW_SEC", "30")
	t.Setenv("RATELIMIT_LENIENT_BURST", "-1")
	t.Setenv("RATELIMIT_LENIENT_REQUESTS", "lots")

	httpx.LoadRateLimitProfiles()

	require.Equal(t, httpx.RateLimitConfig{RequestsPerWindow: 50, Window: 30 * time.Second, Burst: strict.Burst}, httpx.StrictLimit)
	require.Equal(t, lenient, httpx.LenientLimit, "invalid values keep the defaults")
}
