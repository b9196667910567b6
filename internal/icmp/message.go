package icmp

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/net/ipv4"
)

// HeaderSize is the size of the ICMP echo header in bytes.
const HeaderSize = 8

// PayloadPattern is the byte the sender fills echo payloads with.
const PayloadPattern byte = 0xFF

// Type is the ICMP message type.
type Type uint8

// Supported message types.
const (
	TypeEchoReply   = Type(ipv4.ICMPTypeEchoReply)
	TypeEchoRequest = Type(ipv4.ICMPTypeEcho)
)

// CodeEcho is the only code defined for echo messages.
const CodeEcho uint8 = 0

// String returns a human-readable name for the type.
func (t Type) String() string {
	switch t {
	case TypeEchoReply:
		return "ECHO_REPLY"
	case TypeEchoRequest:
		return "ECHO_REQUEST"
	default:
		return fmt.Sprintf("TYPE_%d", uint8(t))
	}
}

// Body is the type-specific part of a message: the second header word and
// the payload. The concrete type is selected by the message type.
type Body interface {
	isBody()
}

// Echo is the body of Echo-Request and Echo-Reply messages.
type Echo struct {
	ID   uint16
	Seq  uint16
	Data []byte
}

func (*Echo) isBody() {}

// Message is a decoded ICMP message.
type Message struct {
	Type     Type
	Code     uint8
	Checksum uint16
	Body     Body
}

// IsEchoReply reports whether the message is an Echo-Reply.
func (m *Message) IsEchoReply() bool {
	return m.Type == TypeEchoReply && m.Code == CodeEcho
}

// Echo returns the echo body if the message carries one.
func (m *Message) Echo() (*Echo, bool) {
	e, ok := m.Body.(*Echo)
	return e, ok
}

// Payload returns a payload of size bytes filled with PayloadPattern.
func Payload(size int) []byte {
	if size <= 0 {
		return nil
	}
	return bytes.Repeat([]byte{PayloadPattern}, size)
}

// EncodeEchoRequest builds an Echo-Request with the given identifier,
// sequence and payload. The checksum covers header and payload.
func EncodeEchoRequest(id, seq uint16, payload []byte) []byte {
	return encodeEcho(TypeEchoRequest, id, seq, payload)
}

// EncodeEchoReply builds an Echo-Reply. The pinger itself never sends one;
// it exists to build replies in tests and tools.
func EncodeEchoReply(id, seq uint16, payload []byte) []byte {
	return encodeEcho(TypeEchoReply, id, seq, payload)
}

func encodeEcho(t Type, id, seq uint16, payload []byte) []byte {
	buf := make([]byte, HeaderSize+len(payload))

	buf[0] = byte(t)
	buf[1] = CodeEcho
	binary.BigEndian.PutUint16(buf[4:6], id)
	binary.BigEndian.PutUint16(buf[6:8], seq)
	copy(buf[HeaderSize:], payload)

	binary.BigEndian.PutUint16(buf[2:4], Checksum(buf))

	return buf
}

// Decode parses and validates an ICMP message. The checksum is verified
// before any field past the type byte is read. The returned payload
// references b.
func Decode(b []byte) (*Message, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedPacket, len(b), HeaderSize)
	}

	t := Type(b[0])
	if t != TypeEchoReply && t != TypeEchoRequest {
		return nil, fmt.Errorf("%w: %s code %d", ErrUnsupportedType, t, b[1])
	}

	stored := binary.BigEndian.Uint16(b[2:4])
	if actual := checksumZeroed(b); actual != stored {
		return nil, fmt.Errorf("%w: stored 0x%04x, computed 0x%04x", ErrChecksumMismatch, stored, actual)
	}

	return &Message{
		Type:     t,
		Code:     b[1],
		Checksum: stored,
		Body: &Echo{
			ID:   binary.BigEndian.Uint16(b[4:6]),
			Seq:  binary.BigEndian.Uint16(b[6:8]),
			Data: b[HeaderSize:],
		},
	}, nil
}

// checksumZeroed computes the checksum of b with the checksum field treated
// as zero, without modifying b.
func checksumZeroed(b []byte) uint16 {
	tmp := make([]byte, len(b))
	copy(tmp, b)
	tmp[2], tmp[3] = 0, 0
	return Checksum(tmp)
}
