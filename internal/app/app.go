package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/securecomm-server/internal/auth"
	"github.com/vovakirdan/securecomm-server/internal/callengine/livekit"
	"github.com/vovakirdan/securecomm-server/internal/config"
	"github.com/vovakirdan/securecomm-server/internal/core"
	applog "github.com/vovakirdan/securecomm-server/internal/log"
	"github.com/vovakirdan/securecomm-server/internal/store"
	"github.com/vovakirdan/securecomm-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/securecomm-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	journal         store.Journal
	recorder        *store.Recorder
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	policy, err := core.ParseReconnectPolicy(cfg.Presence.ReconnectPolicy)
	if err != nil {
		return nil, fmt.Errorf("presence: %w", err)
	}

	a := &App{
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}
	opts := []core.Option{core.WithLogger(applog.Component(logger, "core"))}
	var deps transporthttp.Deps

	if cfg.SessionsEnabled() {
		sessions, err := newSessions(cfg, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, core.WithSessions(sessions, policy))
		deps.Sessions = sessions
		logger.Info().Str("policy", string(policy)).Dur("ttl", cfg.Session.TTL).Msg("session tokens enabled")
	}

	if cfg.Journal.Path != "" {
		journal, err := sqlite.New(cfg.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("init journal: %w", err)
		}
		a.journal = journal
		a.recorder = store.NewRecorder(journal, 0, applog.Component(logger, "journal"))
		opts = append(opts, core.WithLifecycleHook(a.recorder.Observe))
		deps.Journal = journal
		logger.Info().Str("path", cfg.Journal.Path).Msg("room journal initialized")
	}

	if cfg.LiveKit.Enabled() {
		deps.Calls = livekit.New(cfg.LiveKit.APIKey, cfg.LiveKit.APISecret, cfg.LiveKit.URL)
		logger.Info().Str("url", cfg.LiveKit.URL).Msg("livekit call engine enabled")
	}

	coord := core.NewCoordinator(opts...)
	a.hub = core.NewHub(coord, applog.Component(logger, "hub"))
	a.server = transporthttp.NewServer(a.hub, deps, cfg, applog.Component(logger, "http"))

	return a, nil
}

func newSessions(cfg *config.Config, logger *zerolog.Logger) (*auth.Sessions, error) {
	secret := []byte(cfg.Session.Secret)
	if len(secret) == 0 {
		generated, err := auth.RandomSecret()
		if err != nil {
			return nil, err
		}
		secret = generated
		logger.Warn().Msg("session.secret is not set; using a random key, tokens will not survive a restart")
	}

	sessions, err := auth.NewSessions(&auth.JWTConfig{
		Secret: secret,
		Issuer: cfg.Session.Issuer,
		TTL:    cfg.Session.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("init sessions: %w", err)
	}
	return sessions, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() stdhttp.Handler {
	return a.server.Handler
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.hub.Run(hubCtx)

	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	defer stopRecorder()
	if a.recorder != nil {
		go a.recorder.Run(recorderCtx)
	}

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup(stopHub, stopRecorder)
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup(stopHub, stopRecorder)
			return err
		}

		a.cleanup(stopHub, stopRecorder)
		return <-serverErr
	}
}

// cleanup stops the hub, then the journal writer, then closes the database.
func (a *App) cleanup(stopHub, stopRecorder context.CancelFunc) {
	stopHub()
	<-a.hub.Done()

	stopRecorder()
	if a.recorder != nil {
		a.recorder.Wait()
	}

	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close journal")
		} else {
			a.log.Info().Msg("journal closed")
		}
	}
}
