// Package icmp implements the ICMP echo wire codec and the raw IPv4 socket
// used to carry it.
//
// # Wire format
//
// Every message starts with the 8-byte ICMP header:
//
//	Type       [1 byte]
//	Code       [1 byte]
//	Checksum   [2 bytes] - Internet checksum (RFC 1071), big-endian
//	Identifier [2 bytes] - big-endian, echo messages only
//	Sequence   [2 bytes] - big-endian, echo messages only
//
// followed by the payload. Only Echo-Request (8/0) and Echo-Reply (0/0)
// messages are modelled; anything else is rejected by Decode with
// ErrUnsupportedType.
//
// # Raw sockets
//
// OpenSocket creates a SOCK_RAW/IPPROTO_ICMP socket. This needs root or the
// CAP_NET_RAW capability on Linux:
//
//	sudo setcap cap_net_raw+ep ./muti-ping
//
// Datagrams read from the socket still carry their IPv4 header. Use
// StripIPv4Header before handing the bytes to Decode.
package icmp
