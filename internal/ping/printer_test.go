package ping

import (
	"bytes"
	"net/netip"
	"testing"
	"time"
)

func TestPrinter_Lines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	dst := netip.MustParseAddr("192.0.2.10")

	p.Header("example.test", dst, 56)
	p.Reply(64, dst, 3, 57, 1500*time.Microsecond)
	p.Timeout(4, 0)
	p.Timeout(5, 2)

	want := "PING example.test (192.0.2.10): 56 data bytes\n" +
		"64 bytes from 192.0.2.10: icmp_seq=3 ttl=57 time=1.500 ms\n" +
		"Request timeout for icmp_seq 4\n" +
		"Request timeout for icmp_seq 5 (2 datagrams discarded)\n"
	if buf.String() != want {
		t.Errorf("output =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestPrinter_Summary(t *testing.T) {
	var stats Statistics
	for _, rtt := range []time.Duration{time.Millisecond, 3 * time.Millisecond} {
		stats.RecordTransmit()
		stats.RecordReply(rtt)
	}
	stats.RecordTransmit()

	var buf bytes.Buffer
	NewPrinter(&buf, false).Summary("example.test", &stats)

	want := "\n--- example.test ping statistics ---\n" +
		"3 packets transmitted, 2 received, 33.3% loss\n" +
		"round-trip min/avg/max/stddev = 1.000/2.000/3.000/1.000 ms\n"
	if buf.String() != want {
		t.Errorf("output =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestPrinter_SummaryWithoutReplies(t *testing.T) {
	var stats Statistics
	stats.RecordTransmit()

	var buf bytes.Buffer
	NewPrinter(&buf, false).Summary("example.test", &stats)

	want := "\n--- example.test ping statistics ---\n" +
		"1 packets transmitted, 0 received, 100.0% loss\n"
	if buf.String() != want {
		t.Errorf("output =\n%q\nwant\n%q", buf.String(), want)
	}
}
