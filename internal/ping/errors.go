package ping

import (
	"errors"

	"github.com/postalsys/muti-ping/internal/icmp"
)

var (
	// ErrResolution is returned when a host cannot be resolved to an IPv4 address.
	ErrResolution = errors.New("resolve host")

	// ErrIncompleteSend is returned when the socket accepted fewer bytes than the probe holds.
	ErrIncompleteSend = errors.New("incomplete send")

	// ErrReplyMismatch is returned for a datagram that is not the reply to
	// the outstanding probe: wrong source, identifier, sequence or type.
	ErrReplyMismatch = errors.New("reply mismatch")
)

// Error kinds, used as log attribute and metric label.
const (
	KindTimeout         = "timeout"
	KindSend            = "send"
	KindIncompleteSend  = "incomplete_send"
	KindReceive         = "receive"
	KindConfigure       = "configure"
	KindMalformed       = "malformed"
	KindUnsupportedType = "unsupported_type"
	KindChecksum        = "checksum_mismatch"
	KindReplyMismatch   = "reply_mismatch"
	KindOther           = "other"
)

// ErrorKind classifies a per-probe error.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, icmp.ErrReceiveTimeout):
		return KindTimeout
	case errors.Is(err, icmp.ErrSend):
		return KindSend
	case errors.Is(err, ErrIncompleteSend):
		return KindIncompleteSend
	case errors.Is(err, icmp.ErrReceive):
		return KindReceive
	case errors.Is(err, icmp.ErrSocketConfigure):
		return KindConfigure
	case errors.Is(err, icmp.ErrMalformedPacket):
		return KindMalformed
	case errors.Is(err, icmp.ErrUnsupportedType):
		return KindUnsupportedType
	case errors.Is(err, icmp.ErrChecksumMismatch):
		return KindChecksum
	case errors.Is(err, ErrReplyMismatch):
		return KindReplyMismatch
	default:
		return KindOther
	}
}
