package ping

import (
	"fmt"
	"io"
	"net/netip"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes the user-facing ping output.
type Printer struct {
	w      io.Writer
	styled bool
	bold   lipgloss.Style
}

// NewPrinter creates a Printer. With styled set, the header and summary
// title are rendered bold.
func NewPrinter(w io.Writer, styled bool) *Printer {
	return &Printer{
		w:      w,
		styled: styled,
		bold:   lipgloss.NewRenderer(w).NewStyle().Bold(true),
	}
}

func (p *Printer) title(s string) string {
	if !p.styled {
		return s
	}
	return p.bold.Render(s)
}

// Header prints the line announcing the session.
func (p *Printer) Header(host string, dst netip.Addr, payloadSize int) {
	fmt.Fprintln(p.w, p.title(fmt.Sprintf("PING %s (%s): %d data bytes", host, dst, payloadSize)))
}

// Reply prints one matched reply. size is the ICMP message length.
func (p *Printer) Reply(size int, src netip.Addr, seq uint16, ttl int, rtt time.Duration) {
	fmt.Fprintf(p.w, "%d bytes from %s: icmp_seq=%d ttl=%d time=%.3f ms\n",
		size, src, seq, ttl, millis(rtt))
}

// Timeout prints a probe that got no reply in time, with the number of
// datagrams discarded while waiting for it.
func (p *Printer) Timeout(seq uint16, discarded int) {
	if discarded > 0 {
		fmt.Fprintf(p.w, "Request timeout for icmp_seq %d (%d datagrams discarded)\n", seq, discarded)
		return
	}
	fmt.Fprintf(p.w, "Request timeout for icmp_seq %d\n", seq)
}

// Summary prints the closing statistics block.
func (p *Printer) Summary(host string, stats *Statistics) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.title(fmt.Sprintf("--- %s ping statistics ---", host)))
	fmt.Fprintf(p.w, "%d packets transmitted, %d received, %.1f%% loss\n",
		stats.Transmitted(), stats.Received(), stats.Loss())

	if sum, ok := stats.Summary(); ok {
		fmt.Fprintf(p.w, "round-trip min/avg/max/stddev = %.3f/%.3f/%.3f/%.3f ms\n",
			millis(sum.Min), millis(sum.Avg), millis(sum.Max), millis(sum.StdDev))
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
