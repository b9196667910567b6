package icmp

import "errors"

// Codec errors.
var (
	// ErrMalformedPacket is returned when a buffer is too short to hold the
	// ICMP header or the IPv4 header in front of it.
	ErrMalformedPacket = errors.New("malformed packet")

	// ErrUnsupportedType is returned for ICMP types other than echo request/reply.
	ErrUnsupportedType = errors.New("unsupported ICMP type")

	// ErrChecksumMismatch is returned when the stored checksum does not match
	// the recomputed one.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Transport errors.
var (
	// ErrSocketCreate is returned when the OS refuses to create the raw socket.
	ErrSocketCreate = errors.New("create raw ICMP socket (requires root or CAP_NET_RAW)")

	// ErrSocketConfigure is returned when TTL or receive timeout cannot be applied.
	ErrSocketConfigure = errors.New("configure raw ICMP socket")

	// ErrSend is returned on any OS-level send failure.
	ErrSend = errors.New("send ICMP packet")

	// ErrReceive is returned on any OS-level receive failure other than a timeout.
	ErrReceive = errors.New("receive ICMP packet")

	// ErrReceiveTimeout is returned when no datagram arrived within the receive timeout.
	ErrReceiveTimeout = errors.New("receive timeout")

	// ErrSocketClosed is returned by operations on a closed socket.
	ErrSocketClosed = errors.New("socket closed")

	// ErrUnsupportedPlatform is wrapped by ErrSocketCreate on platforms
	// without raw socket support.
	ErrUnsupportedPlatform = errors.New("raw ICMP sockets are not supported on this platform")
)
