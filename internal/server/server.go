package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/vijayKota2776/Codeplay/internal/config"
)

var ErrServerClosed = http.ErrServerClosed

// Server wraps the HTTP listener with context-driven shutdown.
type Server struct {
	cfg  config.HTTP
	http *http.Server
}

func New(cfg config.HTTP, handler http.Handler) *Server {
	return &Server{
		cfg:  cfg,
		http: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests within
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return ErrServerClosed
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ErrServerClosed
}

func (s *Server) Addr() string {
	return s.http.Addr
}
