package ping

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/netip"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/postalsys/muti-ping/internal/icmp"
	"github.com/postalsys/muti-ping/internal/logging"
	"github.com/postalsys/muti-ping/internal/metrics"
)

// maxIPv4HeaderSize is the IPv4 header length with the maximum IHL of 15.
const maxIPv4HeaderSize = 60

// A raw socket sees every ICMP datagram the host receives. Warnings about
// discarded ones are limited to this rate; the rest go to debug and are
// counted on the timeout line.
const (
	discardWarnRate  = rate.Limit(1)
	discardWarnBurst = 5
)

// Conn is the datagram transport a Session probes over. *icmp.Socket
// implements it.
type Conn interface {
	// Send writes one ICMP message to dst and returns the bytes sent.
	Send(b []byte, dst netip.Addr) (int, error)

	// Receive reads one IPv4 datagram, header included.
	Receive(buf []byte) (int, netip.Addr, error)

	// SetReceiveTimeout bounds how long Receive blocks.
	SetReceiveTimeout(d time.Duration) error

	Close() error
}

// Options holds the optional collaborators of a Session.
type Options struct {
	// Output receives per-probe lines and the summary. Defaults to os.Stdout.
	Output io.Writer

	// Styled renders the header and summary title bold.
	Styled bool

	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger *slog.Logger

	// Metrics is optional; nil disables metrics.
	Metrics *metrics.Metrics
}

// Session sends Echo-Requests to one destination at a fixed interval,
// matches replies and accumulates statistics.
type Session struct {
	host string
	dst  netip.Addr
	id   uint16
	seq  uint16
	cfg  Config

	running atomic.Bool

	conn      Conn
	closeOnce sync.Once
	closeErr  error

	payload []byte
	buf     []byte

	// discarded counts datagrams skipped while waiting for the current reply.
	discarded int

	stats       Statistics
	printer     *Printer
	logger      *slog.Logger
	metrics     *metrics.Metrics
	discardWarn *rate.Limiter
}

// reply is a datagram accepted as the answer to the outstanding probe.
type reply struct {
	size int
	src  netip.Addr
	ttl  int
}

// Dial resolves host, opens a raw ICMP socket and returns a Session ready
// to Run. The session owns the socket.
func Dial(ctx context.Context, host string, cfg Config, opts Options) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dst, err := Resolve(ctx, host)
	if err != nil {
		return nil, err
	}

	sock, err := icmp.OpenSocket(cfg.TTL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return NewSession(host, dst, sock, cfg, opts), nil
}

// NewSession creates a Session over an already open Conn. The identifier
// is derived from the process ID.
func NewSession(host string, dst netip.Addr, conn Conn, cfg Config, opts Options) *Session {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}

	bufSize := max(1500, maxIPv4HeaderSize+icmp.HeaderSize+cfg.PayloadSize)

	return &Session{
		host:    host,
		dst:     dst,
		id:      uint16(os.Getpid()),
		cfg:     cfg,
		conn:    conn,
		payload: icmp.Payload(cfg.PayloadSize),
		buf:     make([]byte, bufSize),
		printer: NewPrinter(opts.Output, opts.Styled),
		logger: opts.Logger.With(
			logging.KeyComponent, "ping",
			logging.KeyHost, host,
			logging.KeyDestination, dst.String(),
		),
		metrics:     opts.Metrics,
		discardWarn: rate.NewLimiter(discardWarnRate, discardWarnBurst),
	}
}

// ID returns the ICMP identifier of the session.
func (s *Session) ID() uint16 { return s.id }

// Destination returns the resolved destination address.
func (s *Session) Destination() netip.Addr { return s.dst }

// IsRunning reports whether the probe loop is active. It is safe to call
// from any goroutine.
func (s *Session) IsRunning() bool { return s.running.Load() }

// Statistics returns the accumulated statistics. Read it only after Run
// has returned.
func (s *Session) Statistics() *Statistics { return &s.stats }

// Run probes until ctx is cancelled, then prints the summary and closes
// the transport. The first probe is sent immediately. Cancellation takes
// effect at most one receive timeout after it is requested. Run must be
// called at most once.
func (s *Session) Run(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return errors.Join(err, s.Close())
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	return s.run(ctx, ticker.C, true)
}

func (s *Session) run(ctx context.Context, ticks <-chan time.Time, probeNow bool) (err error) {
	s.running.Store(true)
	defer s.running.Store(false)
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()

	s.printer.Header(s.host, s.dst, s.cfg.PayloadSize)
	s.logger.Info("ping session started",
		logging.KeyIdentifier, s.id,
		logging.KeyTTL, s.cfg.TTL,
		logging.KeyBytes, s.cfg.PayloadSize,
	)

	if probeNow {
		select {
		case <-ctx.Done():
		default:
			s.probe()
		}
	}

	for {
		select {
		case <-ctx.Done():
			s.printer.Summary(s.host, &s.stats)
			s.logger.Info("ping session stopped",
				"transmitted", s.stats.Transmitted(),
				"received", s.stats.Received(),
			)
			return nil
		case <-ticks:
			s.probe()
		}
	}
}

// Close releases the transport. It is safe to call more than once; the
// first result is returned each time.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if err := s.conn.Close(); err != nil {
			s.logger.Error("failed to close transport", logging.KeyError, err)
			s.closeErr = err
		}
	})
	return s.closeErr
}

// probe sends one Echo-Request and waits for its reply.
func (s *Session) probe() {
	seq := s.seq
	s.seq++

	s.discarded = 0
	pkt := icmp.EncodeEchoRequest(s.id, seq, s.payload)
	start := time.Now()

	n, err := s.conn.Send(pkt, s.dst)
	if err == nil && n != len(pkt) {
		err = fmt.Errorf("%w: sent %d of %d bytes", ErrIncompleteSend, n, len(pkt))
	}
	if err != nil {
		s.report("probe not sent", seq, err, slog.LevelWarn)
		return
	}

	s.stats.RecordTransmit()
	s.metrics.RecordProbeSent()
	defer func() { s.metrics.SetPacketLoss(s.stats.Loss()) }()

	r, rtt, err := s.awaitReply(seq, start)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, icmp.ErrReceiveTimeout) {
			s.printer.Timeout(seq, s.discarded)
			level = slog.LevelDebug
		}
		s.report("no reply", seq, err, level)
		return
	}

	s.stats.RecordReply(rtt)
	s.metrics.RecordReply(rtt)
	s.printer.Reply(r.size, r.src, seq, r.ttl, rtt)
	s.logger.Debug("reply received",
		logging.KeySequence, seq,
		logging.KeySource, r.src.String(),
		logging.KeyTTL, r.ttl,
		logging.KeyRTT, rtt,
	)
}

// awaitReply reads datagrams until the reply to seq arrives or the
// receive timeout, counted from start, runs out. Datagrams that do not
// match are reported and skipped.
func (s *Session) awaitReply(seq uint16, start time.Time) (*reply, time.Duration, error) {
	deadline := start.Add(s.cfg.Timeout)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, 0, icmp.ErrReceiveTimeout
		}
		if err := s.conn.SetReceiveTimeout(remaining); err != nil {
			return nil, 0, err
		}

		n, src, err := s.conn.Receive(s.buf)
		if err != nil {
			return nil, 0, err
		}
		rtt := time.Since(start)

		r, err := s.match(s.buf[:n], src, seq)
		switch {
		case err == nil:
			return r, rtt, nil
		case errors.Is(err, errOwnRequest):
			s.logger.Debug("skipped own echo request", logging.KeySequence, seq)
		default:
			s.discarded++
			level := slog.LevelWarn
			if !s.discardWarn.Allow() {
				level = slog.LevelDebug
			}
			s.report("datagram discarded", seq, err, level)
		}
	}
}

// errOwnRequest marks the copy of our own Echo-Request that a raw socket
// sees when probing a local address.
var errOwnRequest = errors.New("own echo request")

func (s *Session) match(datagram []byte, src netip.Addr, seq uint16) (*reply, error) {
	if src != s.dst {
		return nil, fmt.Errorf("%w: datagram from %s, expected %s", ErrReplyMismatch, src, s.dst)
	}

	hdr, body, err := icmp.StripIPv4Header(datagram)
	if err != nil {
		return nil, err
	}

	msg, err := icmp.Decode(body)
	if err != nil {
		return nil, err
	}
	echo, _ := msg.Echo()

	if msg.Type == icmp.TypeEchoRequest && echo.ID == s.id {
		return nil, errOwnRequest
	}
	if !msg.IsEchoReply() {
		return nil, fmt.Errorf("%w: %s code %d is not an echo reply", ErrReplyMismatch, msg.Type, msg.Code)
	}
	if echo.ID != s.id {
		return nil, fmt.Errorf("%w: identifier %d, expected %d", ErrReplyMismatch, echo.ID, s.id)
	}
	if echo.Seq != seq {
		return nil, fmt.Errorf("%w: sequence %d, expected %d", ErrReplyMismatch, echo.Seq, seq)
	}

	return &reply{size: len(body), src: src, ttl: hdr.TTL}, nil
}

// report logs and counts a per-probe error. None of them end the session.
func (s *Session) report(msg string, seq uint16, err error, level slog.Level) {
	kind := ErrorKind(err)
	s.metrics.RecordProbeError(kind)

	s.logger.Log(context.Background(), level, msg,
		logging.KeySequence, seq,
		logging.KeyKind, kind,
		logging.KeyError, err,
	)
}
