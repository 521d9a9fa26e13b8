// Package metrics exposes process, HTTP and domain metrics on a single
// Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/pkg/httpx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notes"

type Metrics struct {
	Registry *prometheus.Registry
	HTTP     *httpx.HTTPMetrics

	tenantsRegistered prometheus.Counter
	tenantsUpgraded   prometheus.Counter
	usersInvited      *prometheus.CounterVec
	loginFailures     *prometheus.CounterVec
	notesCreated      *prometheus.CounterVec
	limitRejections   *prometheus.CounterVec
}

func New(version string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	f := promauto.With(reg)
	f.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "build_info",
		Help:        "Build version of the running binary.",
		ConstLabels: prometheus.Labels{"version": version},
	}).Set(1)

	return &Metrics{
		Registry: reg,
		HTTP:     httpx.NewHTTPMetrics(reg, namespace),

		tenantsRegistered: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tenants_registered_total",
			Help:      "Tenants created through registration.",
		}),
		tenantsUpgraded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tenants_upgraded_total",
			Help:      "Tenants upgraded to the Pro plan.",
		}),
		usersInvited: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_invited_total",
			Help:      "Users invited by role.",
		}, []string{"role"}),
		loginFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_failures_total",
			Help:      "Rejected logins by reason.",
		}, []string{"reason"}),
		notesCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notes_created_total",
			Help:      "Notes created by tenant plan.",
		}, []string{"plan"}),
		limitRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "note_limit_rejections_total",
			Help:      "Note creations or restores refused by the plan cap.",
		}, []string{"plan"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) TenantRegistered() { m.tenantsRegistered.Inc() }
func (m *Metrics) TenantUpgraded()   { m.tenantsUpgraded.Inc() }

func (m *Metrics) UserInvited(role domain.Role) {
	m.usersInvited.WithLabelValues(string(role)).Inc()
}

func (m *Metrics) LoginFailed(reason string) {
	m.loginFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) NoteCreated(plan domain.Plan) {
	m.notesCreated.WithLabelValues(string(plan)).Inc()
}

func (m *Metrics) NoteLimitRejected(plan domain.Plan) {
	m.limitRejections.WithLabelValues(string(plan)).Inc()
}
