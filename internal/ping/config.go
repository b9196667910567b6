package ping

import (
	"fmt"
	"strings"
	"time"
)

// MaxPayloadSize is the largest payload that fits in one IPv4 datagram
// together with a 20-byte IP header and the 8-byte ICMP header.
const MaxPayloadSize = 65535 - 20 - 8

// Config holds the parameters of one ping session.
type Config struct {
	// Interval between two probes.
	Interval time.Duration

	// Timeout bounds the wait for a reply to each probe. It is also the
	// longest a session takes to stop after cancellation.
	Timeout time.Duration

	// TTL is the IP time-to-live of outgoing probes.
	TTL uint8

	// PayloadSize is the number of payload bytes after the ICMP header.
	PayloadSize int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    time.Second,
		Timeout:     time.Second,
		TTL:         64,
		PayloadSize: 56,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	var errs []string

	if c.Interval <= 0 {
		errs = append(errs, "interval must be positive")
	}
	if c.Timeout <= 0 {
		errs = append(errs, "timeout must be positive")
	}
	if c.TTL == 0 {
		errs = append(errs, "ttl must be between 1 and 255")
	}
	if c.PayloadSize < 0 || c.PayloadSize > MaxPayloadSize {
		errs = append(errs, fmt.Sprintf("payload size must be between 0 and %d", MaxPayloadSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid ping config: %s", strings.Join(errs, "; "))
	}
	return nil
}
