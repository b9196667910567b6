package icmp

// Checksum computes the Internet checksum (RFC 1071) of b.
//
// b is summed as big-endian 16-bit words, an odd trailing byte is padded
// with a zero low byte, carries are folded back into the low 16 bits and
// the result is complemented. The returned value is in host order and must
// be written to the wire big-endian.
func Checksum(b []byte) uint16 {
	var sum uint32

	n := len(b)
	for i := 0; i+1 < n; i += 2 {
		sum += uint32(b[i])<<8 | uint32(b[i+1])
	}
	if n%2 == 1 {
		sum += uint32(b[n-1]) << 8
	}

	for sum>>16 != 0 {
		sum = sum&0xffff + sum>>16
	}

	return ^uint16(sum)
}
