/*
The api package defines a JSON API for the system, using gin. Every clustering
run lives in a session (core/session), and each step, reset or manual
centroid placement is one request, so a browser (or any other host) renders
between steps. See routes in ./handler.go.

Responses are JSON unless the request accepts application/x-msgpack.
*/
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kmviz/core/dataset"
	"kmviz/core/logutil"
	"kmviz/core/session"
	"kmviz/pkg/kmeans"
)

// APIConfig is used as args to the New and Start funcs.
type APIConfig struct {
	// Addr specifies the address of the server.
	Addr string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// StepDelay is the pause between steps pushed by the stream endpoint.
	StepDelay time.Duration
	// MaxSteps bounds the stream endpoint, 0 is unbounded. The converge
	// endpoint is bounded by the engine options of Table instead.
	MaxSteps int

	// Defaults used for new sessions.
	Defaults kmeans.Config

	// Source is the shared data set, used by /get_data, /new_data and for
	// sessions created without data.
	Source *dataset.Source
	// Table keeps all sessions.
	Table *session.Table

	// L defaults to the global logger.
	L *zap.Logger
}

func (cfg *APIConfig) check() error {
	if cfg.Source == nil {
		return errors.New("unexpected nil for Source field in APIConfig")
	}
	if cfg.Table == nil {
		return errors.New("unexpected nil for Table field in APIConfig")
	}
	if cfg.L == nil {
		cfg.L = logutil.GetGlobalLogger()
	}
	return nil
}

// New creates the http.Handler of the API.
func New(cfg APIConfig) (http.Handler, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), logRequests(cfg.L))

	h := handler{cfg: cfg}
	h.setRoutes(router)
	return router, nil
}

// Start starts a http.Server with the API, and shuts it down once ctx is done.
func Start(ctx context.Context, cfg APIConfig) error {
	router, err := New(cfg)
	if err != nil {
		return err
	}

	s := http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		cfg.L.Info("api listening", zap.String("addr", cfg.Addr))
		errCh <- s.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// logRequests is a gin middleware logging each request with zap.
func logRequests(l *zap.Logger) gin.HandlerFunc {
	l = l.Named("api")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
