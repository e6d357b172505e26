package main

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cooldogedev/prism"
	"github.com/cooldogedev/prism/api"
	"github.com/cooldogedev/prism/metrics"
	"github.com/cooldogedev/prism/packet"
	"github.com/cooldogedev/prism/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func serveCmd(logger func() *slog.Logger) *cobra.Command {
	var config string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept players and relay their chat messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := prism.DefaultOpts()
			if config != "" {
				var err error
				if opts, err = prism.LoadOpts(config); err != nil {
					return err
				}
			}
			return serve(opts, logger())
		},
	}
	cmd.Flags().StringVarP(&config, "config", "c", "", "Path to the YAML configuration file")
	return cmd
}

func serve(opts *prism.Opts, logger *slog.Logger) error {
	descriptor, err := opts.Descriptor()
	if err != nil {
		return err
	}
	t, err := prism.NewServerTransport(opts.Transport, logger)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if opts.MetricsAddr != "" {
		registry := prometheus.NewRegistry()
		m = metrics.New(registry)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(opts.MetricsAddr, mux); err != nil {
				logger.Error("metrics server stopped", "err", err)
			}
		}()
	}

	registry := session.NewRegistry()
	if opts.APIAddr != "" {
		a := api.NewAPI(registry, logger, api.NewSecretBasedAuthentication(opts.APIToken))
		if err := a.Listen(opts.APIAddr); err != nil {
			return err
		}
		defer a.Close()
		go func() {
			for {
				if err := a.Accept(); err != nil {
					if !errors.Is(err, net.ErrClosed) {
						logger.Error("api stopped accepting", "err", err)
					}
					return
				}
			}
		}()
	}

	l, err := prism.Listen(opts.Addr, descriptor, prism.ListenConfig{
		Transport:      t,
		Logger:         logger,
		Metrics:        m,
		StatusProvider: prism.NewStatusProvider(opts.ServerName, "prism", opts.ProtocolVersion, descriptor.GameVersion),
		MaxPlayers:     opts.MaxPlayers,
		LoginTimeout:   opts.LoginDeadline(),
	})
	if err != nil {
		return err
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		_ = l.Close()
	}()

	handler := &chatHandler{registry: registry, logger: logger}
	for {
		c, err := l.Accept()
		if err != nil {
			for _, s := range registry.GetSessions() {
				s.Disconnect("server closed")
			}
			return nil
		}
		session.New(c, handler, session.Opts{FlushRate: opts.FlushInterval(), Registry: registry})
	}
}

// chatHandler relays chat messages to every player connected.
type chatHandler struct {
	registry *session.Registry
	logger   *slog.Logger
}

// HandlePacket ...
func (h *chatHandler) HandlePacket(s *session.Session, pk packet.Packet) {
	text, ok := pk.(*packet.Text)
	if !ok || text.TextType != packet.TextTypeChat {
		return
	}
	identity := s.Conn().IdentityData()
	message := &packet.Text{
		TextType:   packet.TextTypeChat,
		SourceName: identity.DisplayName,
		Message:    text.Message,
		XUID:       identity.XUID,
	}
	h.logger.Info("chat", "name", identity.DisplayName, "message", text.Message)
	for _, other := range h.registry.GetSessions() {
		if err := other.WritePacket(message); err != nil {
			h.logger.Debug("failed to relay chat message", "name", other.Conn().IdentityData().DisplayName, "err", err)
		}
	}
}

// HandleDisconnect ...
func (h *chatHandler) HandleDisconnect(s *session.Session, reason string) {
	h.logger.Info("player left", "name", s.Conn().IdentityData().DisplayName, "reason", reason)
}
