package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"buffdev/bufdev"
	"buffdev/internal/config"
	"buffdev/internal/logger"
	"buffdev/internal/metrics"
	"buffdev/internal/shell"
)

// RootOptions holds the flags that are not config keys
type RootOptions struct {
	ConfigFile string
}

// flag name -> config key
var flagKeys = map[string]string{
	"name":         "device.name",
	"pages":        "device.pages",
	"page-size":    "device.pageSize",
	"seek-end":     "device.seekEnd",
	"log-level":    "log.level",
	"metrics-addr": "metrics.addr",
}

// NewRootCommand creates the buffdev command
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "buffdev",
		Short: "Interactive client for an in-memory buffer device",
		Long: `buffdev allocates a fixed-size memory region behind open/read/write/seek/close
semantics and reads commands from stdin:

  open | read <size> | write <size> | seek <pos> [start|current|end] | close | help | quit`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.ConfigFile, "config", "c", os.Getenv("BUFFDEV_CONFIG"), "path to YAML config file")
	f.String("name", bufdev.DefaultName, "device name")
	f.Int("pages", bufdev.Pages, "region size in pages")
	f.Int("page-size", bufdev.PageSize, "page size in bytes")
	f.String("seek-end", bufdev.SeekEndReference.String(), "seek-from-end mode (reference|conventional)")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	return cmd
}

func loadConfig(cmd *cobra.Command, opts *RootOptions) (*config.Config, error) {
	v := config.New()
	if err := config.ReadFile(v, opts.ConfigFile); err != nil {
		return nil, err
	}
	for name, key := range flagKeys {
		// only explicitly set flags override file and env values
		if fl := cmd.Flags().Lookup(name); fl != nil && fl.Changed {
			if err := v.BindPFlag(key, fl); err != nil {
				return nil, err
			}
		}
	}
	return config.Decode(v)
}

func run(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger.Init(cfg.Log.Level, cmd.ErrOrStderr())
	log := logger.WithComponent("main")

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	if cfg.Metrics.Addr != "" {
		srv := startMetricsServer(cfg.Metrics.Addr, registry, log)
		defer closeLogged(log, "metrics server shutdown", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		})
	}

	store, err := bufdev.New(cfg.Capacity(),
		bufdev.WithName(cfg.Device.Name),
		bufdev.WithLogger(logger.WithComponent("bufdev")),
		bufdev.WithObserver(collector),
		bufdev.WithSeekEnd(cfg.SeekEndMode()),
	)
	if err != nil {
		return err
	}
	defer closeLogged(log, "device release", store.Release)

	b := shell.Babble(store, cmd.OutOrStdout(), logger.WithComponent("shell"))
	defer closeLogged(log, "shell shutdown", b.Shutdown)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() { done <- b.Run(cmd.InOrStdin()) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
		return nil
	}
}

// closeLogged runs a teardown step and logs its error; it never changes
// the command's result.
func closeLogged(log zerolog.Logger, what string, fn func() error) {
	if err := fn(); err != nil {
		log.Warn().Err(err).Msgf("%s failed", what)
	}
}

func startMetricsServer(addr string, g prometheus.Gatherer, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(g))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", addr).Msg("starting metrics server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return srv
}
