// Package server hosts the events API: historical queries, ingestion,
// and the realtime SSE feed.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Santhoshkumar2302/langfuse/internal/config"
	"github.com/Santhoshkumar2302/langfuse/pkg/logger"
	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

// EventStore is the persistence the server reads and writes.
type EventStore interface {
	InsertEvent(ctx context.Context, e model.Event) error
	FetchEvents(ctx context.Context, f model.Filter) ([]model.Event, error)
	Ping(ctx context.Context) error
}

// Server wires the router, the event store, and the SSE hub.
type Server struct {
	cfg    config.ServerConfig
	store  EventStore
	hub    *Hub
	engine *gin.Engine
	log    *slog.Logger
}

// New builds the server and its routes.
func New(cfg config.ServerConfig, store EventStore, log *slog.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		cfg:    cfg,
		store:  store,
		hub:    NewHub(),
		engine: engine,
		log:    log,
	}

	engine.Use(recovery(log), requestID(), corsAllowAll(), metrics())

	engine.GET("/healthz", s.health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	api.GET("/events", s.listEvents)
	api.POST("/events", s.ingestEvents)

	engine.GET("/events/stream", s.streamEvents)

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Hub exposes the SSE fan-out so in-process producers (the tracker in
// serve mode) can publish without going through HTTP.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:     s.engine,
		ReadTimeout: s.cfg.ReadTimeout,
		// No write timeout: /events/stream connections are long-lived.
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	return g.Wait()
}

func (s *Server) health(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
