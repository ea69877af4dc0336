// Package cli implements the chef command line.
package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/chef-innovativo/server/internal/core"
	logx "github.com/chef-innovativo/server/pkg/logger"
)

type rootOptions struct {
	envFile     string
	metricsAddr string
	logLevel    string
}

// session carries the App built for the running command.
type session struct {
	factory AppFactory
	opts    rootOptions
	app     *App
	server  *http.Server
}

// NewRootCommand returns the chef command tree. factory is called once per
// invocation to build the collaborators.
func NewRootCommand(factory AppFactory) *cobra.Command {
	s := &session{factory: factory}

	root := &cobra.Command{
		Use:   "chef",
		Short: "Innovative Chef turns a food wish into an original recipe",
		Long: `Innovative Chef searches the web for a base recipe, looks up flavour
pairings in a reference book and writes an innovative recipe in your language.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return s.close()
		},
	}

	root.PersistentFlags().StringVar(&s.opts.envFile, "env-file", ".env", "Environment file loaded before the process environment")
	root.PersistentFlags().StringVar(&s.opts.metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :9090)")
	root.PersistentFlags().StringVar(&s.opts.logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")

	chat := newChatCommand(s)
	root.AddCommand(chat, newAskCommand(s), newIndexCommand(s), newHistoryCommand(s))

	// chat is the default command
	root.RunE = chat.RunE
	root.Flags().AddFlagSet(chat.Flags())
	return root
}

func (s *session) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := LoadConfig(s.opts.envFile)
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if s.opts.logLevel != "" {
		level = s.opts.logLevel
	}
	logx.Init(logx.LoggerOpts{
		Environment: core.ParseEnvironment(cfg.Environment),
		Level:       level,
	})

	reg := prometheus.NewRegistry()
	app, err := s.factory(ctx, cfg, reg)
	if err != nil {
		return err
	}
	s.app = app

	if s.opts.metricsAddr != "" {
		s.serveMetrics(reg)
	}
	return nil
}

func (s *session) serveMetrics(reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	s.server = &http.Server{Addr: s.opts.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logx.Info().Str("addr", s.opts.metricsAddr).Msg("serving metrics")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Error().Err(err).Msg("metrics server stopped")
		}
	}()
}

func (s *session) close() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctx)
	}
	if s.app == nil {
		return nil
	}
	return s.app.Close()
}
