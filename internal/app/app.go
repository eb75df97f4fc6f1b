package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomhub/internal/config"
	"github.com/vovakirdan/roomhub/internal/core"
	"github.com/vovakirdan/roomhub/internal/store"
	"github.com/vovakirdan/roomhub/internal/store/redis"
	"github.com/vovakirdan/roomhub/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/roomhub/internal/transport/http"
)

const dialTimeout = 5 * time.Second

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	sink            *core.Sink
	store           store.MessageStore
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := openStore(cfg.Sink)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	var sink *core.Sink
	if st != nil {
		sink = core.NewSink(st, cfg.Sink.QueueSize, cfg.Sink.Timeout, logger)
		logger.Info().Str("driver", cfg.Sink.Driver).Msg("message sink initialized")
	} else {
		logger.Info().Msg("message persistence disabled")
	}

	hub := core.NewHub(sink, logger)
	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		sink:            sink,
		store:           st,
		log:             logger,
	}, nil
}

// openStore returns nil for the "none" driver.
func openStore(cfg config.Sink) (store.MessageStore, error) {
	switch cfg.Driver {
	case config.SinkSQLite:
		return sqlite.New(cfg.DatabasePath)
	case config.SinkRedis:
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		defer cancel()
		return redis.Dial(ctx, cfg.RedisAddr, cfg.RedisStream, cfg.RedisMaxLen)
	case config.SinkNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown sink driver %q", cfg.Driver)
	}
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	sinkCtx, stopSink := context.WithCancel(context.Background())
	defer stopSink()

	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		a.hub.Run(hubCtx)
	}()
	sinkDone := make(chan struct{})
	go func() {
		defer close(sinkDone)
		if a.sink != nil {
			a.sink.Run(sinkCtx)
		}
	}()

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	var err error
	select {
	case err = <-serverErr:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if shutdownErr := a.server.Shutdown(shutdownCtx); shutdownErr != nil {
			err = shutdownErr
		} else {
			err = <-serverErr
		}
	}

	// The hub outlives the listener so in-flight unregisters are applied.
	// The sink stops only once the hub can no longer enqueue.
	stopHub()
	<-hubDone
	stopSink()
	<-sinkDone
	a.cleanup()
	return err
}

// cleanup closes the message store.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
