//go:build !unix

package icmp

import (
	"fmt"
	"net/netip"
	"time"
)

// Socket is unavailable on this platform.
type Socket struct{}

// OpenSocket always fails on platforms without raw socket support.
func OpenSocket(ttl uint8, timeout time.Duration) (*Socket, error) {
	return nil, fmt.Errorf("%w: %w", ErrSocketCreate, ErrUnsupportedPlatform)
}

// SetReceiveTimeout always fails.
func (s *Socket) SetReceiveTimeout(timeout time.Duration) error {
	return ErrSocketClosed
}

// Send always fails.
func (s *Socket) Send(b []byte, dst netip.Addr) (int, error) {
	return 0, ErrSocketClosed
}

// Receive always fails.
func (s *Socket) Receive(buf []byte) (int, netip.Addr, error) {
	return 0, netip.Addr{}, ErrSocketClosed
}

// Close is a no-op.
func (s *Socket) Close() error {
	return nil
}
