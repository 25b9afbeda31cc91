package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores the Prometheus collectors used across the service.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPLatency     *prometheus.HistogramVec
	WebhookPhases   *prometheus.CounterVec
	OAuthCallbacks  *prometheus.CounterVec
	Handshakes      *prometheus.CounterVec
	CreditsDebited  prometheus.Counter
	ReferralBonuses prometheus.Counter
	OutboundCalls   *prometheus.CounterVec
	OutboundLatency *prometheus.HistogramVec
	SweptVideos     prometheus.Counter
	Errors          *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = build(namespace)
		prometheus.MustRegister(metricsInstance.collectors()...)
	})
	return metricsInstance
}

// New builds unregistered collectors, for tests and custom registries.
func New(namespace string) *Metrics { return build(namespace) }

func build(namespace string) *Metrics {
	return &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"method", "route", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		WebhookPhases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "video_webhook_phases_total",
			Help:      "Inbound video webhooks by phase and result.",
		}, []string{"phase", "result"}),
		OAuthCallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oauth_callbacks_total",
			Help:      "OAuth callbacks by result.",
		}, []string{"result"}),
		Handshakes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oauth_handshakes_total",
			Help:      "Awaited consent flows by outcome kind.",
		}, []string{"kind"}),
		CreditsDebited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credits_debited_total",
			Help:      "Credits spent on video generation.",
		}),
		ReferralBonuses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "referral_bonuses_total",
			Help:      "Referral bonus credits granted.",
		}),
		OutboundCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbound_calls_total",
			Help:      "Outbound calls by target and status.",
		}, []string{"target", "status"}),
		OutboundLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbound_call_duration_seconds",
			Help:      "Outbound call latency by target.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"target"}),
		SweptVideos: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_videos_swept_total",
			Help:      "Rejected video ideas removed by the sweep.",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total errors grouped by component.",
		}, []string{"component"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.HTTPRequests, m.HTTPLatency, m.WebhookPhases, m.OAuthCallbacks, m.Handshakes,
		m.CreditsDebited, m.ReferralBonuses, m.OutboundCalls, m.OutboundLatency, m.SweptVideos, m.Errors,
	}
}

// Register adds the collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
