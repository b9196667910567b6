package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetricsWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg)

	if m == nil {
		t.Fatal("NewMetricsWithRegistry returned nil")
	}
	if m.ProbesSent == nil || m.RepliesReceived == nil || m.ProbeErrors == nil || m.RTT == nil || m.PacketLoss == nil {
		t.Fatal("metric field is nil")
	}

	// Vectors only show up once a label is used.
	m.RecordProbeError("timeout")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) != 5 {
		t.Errorf("registered families = %d, want 5", len(families))
	}
}

func TestRecordProbeSentAndReply(t *testing.T) {
	m := NewMetricsWithRegistry(prometheus.NewRegistry())

	m.RecordProbeSent()
	m.RecordProbeSent()
	m.RecordProbeSent()
	m.RecordReply(12 * time.Millisecond)
	m.RecordReply(30 * time.Millisecond)

	if got := testutil.ToFloat64(m.ProbesSent); got != 3 {
		t.Errorf("ProbesSent = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.RepliesReceived); got != 2 {
		t.Errorf("RepliesReceived = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(m.RTT); got != 1 {
		t.Errorf("RTT series = %d, want 1", got)
	}
}

func TestRecordProbeError(t *testing.T) {
	m := NewMetricsWithRegistry(prometheus.NewRegistry())

	m.RecordProbeError("timeout")
	m.RecordProbeError("timeout")
	m.RecordProbeError("checksum_mismatch")

	if got := testutil.ToFloat64(m.ProbeErrors.WithLabelValues("timeout")); got != 2 {
		t.Errorf("ProbeErrors{timeout} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ProbeErrors.WithLabelValues("checksum_mismatch")); got != 1 {
		t.Errorf("ProbeErrors{checksum_mismatch} = %v, want 1", got)
	}
}

func TestSetPacketLoss(t *testing.T) {
	m := NewMetricsWithRegistry(prometheus.NewRegistry())

	m.SetPacketLoss(40)
	if got := testutil.ToFloat64(m.PacketLoss); got != 0.4 {
		t.Errorf("PacketLoss = %v, want 0.4", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	// Must not panic.
	m.RecordProbeSent()
	m.RecordReply(time.Millisecond)
	m.RecordProbeError("send")
	m.SetPacketLoss(100)
}
