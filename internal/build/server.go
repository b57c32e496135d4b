package build

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stellar/go/support/log"

	"github.com/real-comp/mvr-common/internal/metrics"
)

const metricsServerShutdownTimeout = 5 * time.Second

// NewMetricsHandler exposes the registry of metricsService while a run is in progress.
func NewMetricsHandler(metricsService metrics.MetricsService) http.Handler {
	mux := chi.NewRouter()
	mux.Get("/health", func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		_, _ = rw.Write([]byte(`{"status":"ok"}`))
	})
	mux.Get("/metrics", promhttp.HandlerFor(
		metricsService.GetRegistry(),
		promhttp.HandlerOpts{},
	).ServeHTTP)
	return mux
}

type metricsServer struct {
	server   *http.Server
	listener net.Listener
}

func startMetricsServer(ctx context.Context, addr string, metricsService metrics.MetricsService) (*metricsServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}

	s := &metricsServer{
		server: &http.Server{
			Handler:           NewMetricsHandler(metricsService),
			ReadHeaderTimeout: 5 * time.Second,
		},
		listener: listener,
	}
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Ctx(ctx).Errorf("serving metrics: %v", err)
		}
	}()
	log.Ctx(ctx).Infof("Serving metrics on http://%s/metrics", listener.Addr())
	return s, nil
}

func (s *metricsServer) Addr() string {
	return s.listener.Addr().String()
}

func (s *metricsServer) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsServerShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down metrics server: %w", err)
	}
	return nil
}
