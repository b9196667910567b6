//go:build unix

package icmp

import (
	"errors"
	"net/netip"
	"testing"
	"time"
)

func openTestSocket(t *testing.T, timeout time.Duration) *Socket {
	t.Helper()

	s, err := OpenSocket(64, timeout)
	if err != nil {
		if errors.Is(err, ErrSocketCreate) {
			t.Skipf("OpenSocket() failed (needs root or CAP_NET_RAW): %v", err)
		}
		t.Fatalf("OpenSocket() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSocket_ReceiveTimeout(t *testing.T) {
	s := openTestSocket(t, 20*time.Millisecond)

	buf := make([]byte, 1500)
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		start := time.Now()
		_, _, err := s.Receive(buf)
		if err == nil {
			// Unrelated ICMP traffic on the host; try again.
			continue
		}
		if !errors.Is(err, ErrReceiveTimeout) {
			t.Fatalf("Receive() error = %v, want ErrReceiveTimeout", err)
		}
		if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
			t.Errorf("Receive() took %v, want about 20ms", elapsed)
		}
		return
	}
	t.Skip("host too busy with ICMP traffic to observe a timeout")
}

func TestSocket_LoopbackEcho(t *testing.T) {
	s := openTestSocket(t, 200*time.Millisecond)

	const id, seq = 0x7a7a, 9
	pkt := EncodeEchoRequest(id, seq, Payload(16))

	n, err := s.Send(pkt, netip.MustParseAddr("127.0.0.1"))
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if n != len(pkt) {
		t.Fatalf("Send() = %d bytes, want %d", n, len(pkt))
	}

	buf := make([]byte, 1500)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		n, src, err := s.Receive(buf)
		if err != nil {
			continue
		}
		_, body, err := StripIPv4Header(buf[:n])
		if err != nil {
			continue
		}
		msg, err := Decode(body)
		if err != nil || !msg.IsEchoReply() {
			continue
		}
		echo, _ := msg.Echo()
		if echo.ID != id || echo.Seq != seq {
			continue
		}
		if src != netip.MustParseAddr("127.0.0.1") {
			t.Errorf("source = %v, want 127.0.0.1", src)
		}
		return
	}
	t.Skip("no echo reply from loopback (ICMP echo may be disabled)")
}

func TestSocket_SendRejectsIPv6(t *testing.T) {
	s := openTestSocket(t, 10*time.Millisecond)

	_, err := s.Send(EncodeEchoRequest(1, 1, nil), netip.MustParseAddr("::1"))
	if !errors.Is(err, ErrSend) {
		t.Errorf("Send(::1) error = %v, want ErrSend", err)
	}
}

func TestSocket_CloseIsIdempotent(t *testing.T) {
	s := openTestSocket(t, 10*time.Millisecond)

	if err := s.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}

	if _, err := s.Send(nil, netip.MustParseAddr("127.0.0.1")); !errors.Is(err, ErrSocketClosed) {
		t.Errorf("Send() after Close error = %v, want ErrSocketClosed", err)
	}
	if _, _, err := s.Receive(make([]byte, 64)); !errors.Is(err, ErrSocketClosed) {
		t.Errorf("Receive() after Close error = %v, want ErrSocketClosed", err)
	}
	if err := s.SetReceiveTimeout(time.Second); !errors.Is(err, ErrSocketClosed) {
		t.Errorf("SetReceiveTimeout() after Close error = %v, want ErrSocketClosed", err)
	}
}

func TestSockaddrToAddr(t *testing.T) {
	if got := sockaddrToAddr(nil); got.IsValid() {
		t.Errorf("sockaddrToAddr(nil) = %v, want invalid", got)
	}
}
