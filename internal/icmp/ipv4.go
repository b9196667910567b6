package icmp

import (
	"fmt"

	"golang.org/x/net/ipv4"
)

// ProtocolNumber is the IANA protocol number for ICMP.
const ProtocolNumber = 1

// StripIPv4Header parses the IPv4 header in front of a datagram read from
// a raw socket and returns it together with the ICMP bytes that follow.
// The header length is taken from the IHL field, so headers carrying IP
// options are skipped correctly.
func StripIPv4Header(datagram []byte) (*ipv4.Header, []byte, error) {
	hdr, err := ipv4.ParseHeader(datagram)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: ipv4 header: %v", ErrMalformedPacket, err)
	}
	if hdr.Version != ipv4.Version {
		return nil, nil, fmt.Errorf("%w: ip version %d", ErrMalformedPacket, hdr.Version)
	}
	if hdr.Len < ipv4.HeaderLen || hdr.Len > len(datagram) {
		return nil, nil, fmt.Errorf("%w: ipv4 header length %d", ErrMalformedPacket, hdr.Len)
	}
	if hdr.Protocol != ProtocolNumber {
		return nil, nil, fmt.Errorf("%w: ip protocol %d", ErrMalformedPacket, hdr.Protocol)
	}

	return hdr, datagram[hdr.Len:], nil
}
