//go:build unix

package icmp

import (
	"errors"
	"fmt"
	"net/netip"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Socket is a raw IPv4 socket bound to the ICMP protocol. It owns exactly
// one file descriptor, released by Close.
type Socket struct {
	mu      sync.Mutex
	fd      int
	timeout time.Duration
	closed  bool
}

// OpenSocket creates a raw ICMP socket with the given TTL and receive
// timeout. A timeout of zero blocks receives indefinitely.
func OpenSocket(ttl uint8, timeout time.Duration) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_RAW, unix.IPPROTO_ICMP)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSocketCreate, err)
	}

	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_TTL, int(ttl)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: set TTL %d: %w", ErrSocketConfigure, ttl, err)
	}

	s := &Socket{fd: fd}
	if err := s.setReceiveTimeout(timeout); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return s, nil
}

// SetReceiveTimeout changes how long Receive blocks waiting for a datagram.
func (s *Socket) SetReceiveTimeout(timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSocketClosed
	}
	return s.setReceiveTimeout(timeout)
}

func (s *Socket) setReceiveTimeout(timeout time.Duration) error {
	if timeout < 0 {
		timeout = 0
	}
	// A zero timeval means "no timeout", so round sub-microsecond budgets up.
	if timeout > 0 && timeout < time.Microsecond {
		timeout = time.Microsecond
	}

	if err := setsockoptTimeout(s.fd, timeout); err != nil {
		return err
	}
	s.timeout = timeout
	return nil
}

func setsockoptTimeout(fd int, timeout time.Duration) error {
	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return fmt.Errorf("%w: set receive timeout %v: %w", ErrSocketConfigure, timeout, err)
	}
	return nil
}

// Send writes b to dst and returns the number of bytes sent.
func (s *Socket) Send(b []byte, dst netip.Addr) (int, error) {
	fd, err := s.descriptor()
	if err != nil {
		return 0, err
	}
	if !dst.Is4() && !dst.Is4In6() {
		return 0, fmt.Errorf("%w: %s is not an IPv4 address", ErrSend, dst)
	}

	sa := &unix.SockaddrInet4{Addr: dst.Unmap().As4()}
	n, err := unix.SendmsgN(fd, b, nil, sa, 0)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrSend, err)
	}
	return n, nil
}

// Receive reads one datagram into buf. The datagram still carries its IPv4
// header. It blocks at most for the receive timeout and returns
// ErrReceiveTimeout if nothing arrived.
//
// A signal interrupting the read does not restart the timeout: the read is
// resumed with whatever is left of it.
func (s *Socket) Receive(buf []byte) (int, netip.Addr, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, netip.Addr{}, ErrSocketClosed
	}
	fd, timeout := s.fd, s.timeout
	s.mu.Unlock()

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	rearmed := false
	defer func() {
		if rearmed {
			setsockoptTimeout(fd, timeout)
		}
	}()

	for {
		n, from, err := unix.Recvfrom(fd, buf, 0)
		switch {
		case err == nil:
			return n, sockaddrToAddr(from), nil
		case errors.Is(err, unix.EINTR):
			if deadline.IsZero() {
				continue
			}
			remaining := time.Until(deadline)
			if remaining < time.Microsecond {
				return 0, netip.Addr{}, ErrReceiveTimeout
			}
			if err := setsockoptTimeout(fd, remaining); err != nil {
				return 0, netip.Addr{}, err
			}
			rearmed = true
		case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EWOULDBLOCK):
			return 0, netip.Addr{}, ErrReceiveTimeout
		default:
			return 0, netip.Addr{}, fmt.Errorf("%w: %w", ErrReceive, err)
		}
	}
}

// Close releases the socket. Only the first call closes the descriptor;
// later calls return nil.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := unix.Close(s.fd); err != nil {
		return fmt.Errorf("close raw ICMP socket: %w", err)
	}
	return nil
}

func (s *Socket) descriptor() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return -1, ErrSocketClosed
	}
	return s.fd, nil
}

func sockaddrToAddr(sa unix.Sockaddr) netip.Addr {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrFrom4(a.Addr)
	case *unix.SockaddrInet6:
		return netip.AddrFrom16(a.Addr).Unmap()
	default:
		return netip.Addr{}
	}
}
