package ping

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
)

type resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// Resolve turns a host name or literal address into one IPv4 address.
// Literal addresses are used as is; names are looked up once.
func Resolve(ctx context.Context, host string) (netip.Addr, error) {
	return resolveWith(ctx, net.DefaultResolver, host)
}

func resolveWith(ctx context.Context, r resolver, host string) (netip.Addr, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return netip.Addr{}, fmt.Errorf("%w: empty host", ErrResolution)
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		addr = addr.Unmap()
		if !addr.Is4() {
			return netip.Addr{}, fmt.Errorf("%w: %s is not an IPv4 address", ErrResolution, host)
		}
		return addr, nil
	}

	addrs, err := r.LookupNetIP(ctx, "ip4", host)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %s: %w", ErrResolution, host, err)
	}
	for _, addr := range addrs {
		if addr = addr.Unmap(); addr.Is4() {
			return addr, nil
		}
	}

	return netip.Addr{}, fmt.Errorf("%w: %s has no IPv4 address", ErrResolution, host)
}
