package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/internal/notes/service"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var _ service.Recorder = (*Metrics)(nil)

func TestRecorder(t *testing.T) {
	m := New("test")

	m.NoteCreated(domain.PlanFree)
	m.NoteCreated(domain.PlanFree)
	m.NoteLimitRejected(domain.PlanFree)
	m.LoginFailed("bad_password")
	m.TenantRegistered()

	require.Equal(t, float64(2), testutil.ToFloat64(m.notesCreated.WithLabelValues("Free")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.limitRejections.WithLabelValues("Free")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.loginFailures.WithLabelValues("bad_password")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.tenantsRegistered))
	require.Equal(t, float64(0), testutil.ToFloat64(m.tenantsUpgraded))
}

func TestHandler(t *testing.T) {
	m := New("1.2.3")
	m.UserInvited(domain.RoleMember)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `notes_build_info{version="1.2.3"} 1`)
	require.Contains(t, body, `notes_users_invited_total{role="Member"} 1`)
	require.True(t, strings.Contains(body, "go_goroutines"))
}
