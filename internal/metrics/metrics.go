// Package metrics provides Prometheus metrics for muti-ping.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "muti_ping"
)

// Metrics contains the Prometheus metrics of one ping session.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ProbesSent      prometheus.Counter
	RepliesReceived prometheus.Counter
	ProbeErrors     *prometheus.CounterVec
	RTT             prometheus.Histogram
	PacketLoss      prometheus.Gauge
}

// NewMetricsWithRegistry creates a Metrics instance registered with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ProbesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_sent_total",
			Help:      "Total number of echo requests transmitted",
		}),
		RepliesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_received_total",
			Help:      "Total number of matching echo replies received",
		}),
		ProbeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probe_errors_total",
			Help:      "Total probe failures and discarded datagrams by kind",
		}, []string{"kind"}),
		RTT: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rtt_seconds",
			Help:      "Histogram of echo round-trip times in seconds",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		PacketLoss: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "packet_loss_ratio",
			Help:      "Fraction of transmitted probes without a matching reply",
		}),
	}
}

// RecordProbeSent records a transmitted echo request.
func (m *Metrics) RecordProbeSent() {
	if m == nil {
		return
	}
	m.ProbesSent.Inc()
}

// RecordReply records a matching echo reply and its round-trip time.
func (m *Metrics) RecordReply(rtt time.Duration) {
	if m == nil {
		return
	}
	m.RepliesReceived.Inc()
	m.RTT.Observe(rtt.Seconds())
}

// RecordProbeError records a failed probe or a discarded datagram.
func (m *Metrics) RecordProbeError(kind string) {
	if m == nil {
		return
	}
	m.ProbeErrors.WithLabelValues(kind).Inc()
}

// SetPacketLoss sets the loss gauge from a percentage.
func (m *Metrics) SetPacketLoss(percent float64) {
	if m == nil {
		return
	}
	m.PacketLoss.Set(percent / 100)
}
