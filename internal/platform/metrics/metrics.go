package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for messaging operations.
type Metrics struct {
	IdentitiesRegistered prometheus.Counter
	KYCTransitions       *prometheus.CounterVec
	ThreadsCreated       prometheus.Counter
	ThreadsClosed        prometheus.Counter
	ActiveThreads        prometheus.Gauge
	MessagesSent         *prometheus.CounterVec
	MessagesExpired      prometheus.Counter
	ReceiptsRecorded     *prometheus.CounterVec
	Denials              *prometheus.CounterVec
	WalletTransfers      *prometheus.CounterVec
	EndpointLatency      *prometheus.HistogramVec
}

// New registers collectors on reg. Pass prometheus.DefaultRegisterer in the
// server and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		IdentitiesRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "ridelink_identities_registered_total",
			Help: "Total number of registered identities",
		}),
		KYCTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ridelink_kyc_transitions_total",
			Help: "KYC status changes, labeled by new status",
		}, []string{"status"}),
		ThreadsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "ridelink_threads_created_total",
			Help: "Total number of ride threads opened",
		}),
		ThreadsClosed: f.NewCounter(prometheus.CounterOpts{
			Name: "ridelink_threads_closed_total",
			Help: "Total number of ride threads deactivated",
		}),
		ActiveThreads: f.NewGauge(prometheus.GaugeOpts{
			Name: "ridelink_active_threads",
			Help: "Current number of active ride threads",
		}),
		MessagesSent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ridelink_messages_sent_total",
			Help: "Messages stored, labeled by kind",
		}, []string{"kind"}),
		MessagesExpired: f.NewCounter(prometheus.CounterOpts{
			Name: "ridelink_messages_expired_total",
			Help: "Messages removed by expiry",
		}),
		ReceiptsRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ridelink_receipts_recorded_total",
			Help: "Receipts recorded, labeled by status",
		}, []string{"status"}),
		Denials: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ridelink_denials_total",
			Help: "Rejected operations, labeled by operation and error code",
		}, []string{"operation", "code"}),
		WalletTransfers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ridelink_wallet_transfers_total",
			Help: "Wallet transfers, labeled by outcome",
		}, []string{"outcome"}),
		EndpointLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ridelink_endpoint_latency_seconds",
			Help:    "Latency of HTTP endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) ObserveEndpointLatency(endpoint string, seconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(seconds)
}

func (m *Metrics) IncrementDenial(operation, code string) {
	m.Denials.WithLabelValues(operation, code).Inc()
}
