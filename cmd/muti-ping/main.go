// Package main provides the CLI entry point for muti-ping.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/postalsys/muti-ping/internal/config"
	"github.com/postalsys/muti-ping/internal/health"
	"github.com/postalsys/muti-ping/internal/logging"
	"github.com/postalsys/muti-ping/internal/metrics"
	"github.com/postalsys/muti-ping/internal/ping"
	"github.com/postalsys/muti-ping/internal/recovery"
)

var (
	// Version is set at build time
	Version = "dev"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// flags holds command-line overrides. Only flags the user set are applied
// on top of the configuration file.
type flags struct {
	configPath  string
	interval    time.Duration
	timeout     time.Duration
	ttl         int
	size        string
	logLevel    string
	logFormat   string
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:   "muti-ping <host>",
		Short: "Send ICMP echo requests to a host",
		Long: `muti-ping sends ICMP Echo-Request packets to a host at a fixed
interval, matches the replies and prints round-trip times. Press
Ctrl-C to stop and print the statistics.

A raw socket is used, so it must run as root or with CAP_NET_RAW.`,
		Version:       Version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return runPing(cmd.Context(), cmd.OutOrStdout(), args[0], cfg)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "Path to configuration file")
	pf.DurationVarP(&f.interval, "interval", "i", time.Second, "Time between probes")
	pf.DurationVarP(&f.timeout, "timeout", "W", time.Second, "Time to wait for each reply")
	pf.IntVarP(&f.ttl, "ttl", "t", 64, "IP time-to-live of outgoing probes")
	pf.StringVarP(&f.size, "size", "s", "56", "Payload size (e.g. 56, 1KiB)")
	pf.StringVar(&f.logLevel, "log-level", "warn", "Log level: debug, info, warn, error (debug logs every discarded datagram)")
	pf.StringVar(&f.logFormat, "log-format", "text", "Log format: text, json")
	pf.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	rootCmd.AddCommand(configCmd(f))

	return rootCmd
}

func configCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  "Print the configuration that results from defaults, the configuration file and flags, as YAML.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cfg.String())
			return nil
		},
	}
}

// loadConfig applies defaults, then the configuration file, then flags.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("interval") {
		cfg.Ping.Interval = f.interval
	}
	if changed("timeout") {
		cfg.Ping.Timeout = f.timeout
	}
	if changed("ttl") {
		cfg.Ping.TTL = f.ttl
	}
	if changed("size") {
		size, err := config.ParseSize(f.size)
		if err != nil {
			return nil, fmt.Errorf("--size: %w", err)
		}
		cfg.Ping.PayloadSize = size
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}
	if changed("metrics-addr") {
		cfg.Metrics.Enabled = f.metricsAddr != ""
		cfg.Metrics.Address = f.metricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runPing(ctx context.Context, out io.Writer, host string, cfg *config.Config) error {
	logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := notifyContext(ctx, logger)
	defer stop()

	reg := prometheus.NewRegistry()
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetricsWithRegistry(reg)
	}

	sess, err := ping.Dial(ctx, host, cfg.ToPing(), ping.Options{
		Output:  out,
		Styled:  isTerminal(out),
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		srv := health.NewServer(health.ServerConfig{
			Address:      cfg.Metrics.Address,
			ReadTimeout:  cfg.Metrics.ReadTimeout,
			WriteTimeout: cfg.Metrics.WriteTimeout,
		}, reg, sess, logger)
		if err := srv.Start(); err != nil {
			sess.Close()
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer srv.Stop()
	}

	return sess.Run(ctx)
}

// notifyContext returns a context cancelled on SIGINT or SIGTERM. Signals
// arriving after the first are dropped.
func notifyContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	recovery.Go(logger, "signal relay", func() {
		select {
		case sig := <-sigCh:
			logger.Debug("received signal, stopping", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	})

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
