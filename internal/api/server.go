package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-timedata/internal/channel"
	"github.com/nerrad567/gray-logic-timedata/internal/edge"
	"github.com/nerrad567/gray-logic-timedata/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-timedata/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-timedata/internal/timedata"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HistoryQuerier answers historical queries. *history.Service implements it.
type HistoryQuerier interface {
	QueryRange(ctx context.Context, edgeName string, from, to time.Time, channels []channel.Address, res timedata.Resolution) (*timedata.Table, error)
	QueryEnergyTotal(ctx context.Context, edgeName string, from, to time.Time, channels []channel.Address) (timedata.Values, error)
	QueryEnergyPerPeriod(ctx context.Context, edgeName string, from, to time.Time, channels []channel.Address, res timedata.Resolution) (*timedata.Table, error)
	QueryFirstValueBefore(ctx context.Context, edgeName string, instant time.Time, channels []channel.Address) (timedata.Values, error)
}

// EdgeDirectory resolves and lists edges. *edge.Directory implements it.
type EdgeDirectory interface {
	Lookup(ctx context.Context, name string) (edge.Edge, error)
	List(ctx context.Context) ([]edge.Edge, error)
	SetTimezone(ctx context.Context, name, tz string) error
}

// AvailabilityView exposes the per-channel availability of an edge.
type AvailabilityView interface {
	Snapshot(edgeID int) map[string]int64
}

// HealthCheck is one component probed by /api/v1/health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config       config.APIConfig
	Metrics      config.MetricsConfig
	Logger       *logging.Logger
	History      HistoryQuerier
	Edges        EdgeDirectory
	Availability AvailabilityView

	// MetricsHandler serves Prometheus scrapes; nil disables the endpoint.
	MetricsHandler http.Handler

	// Status is optional; it adds ingest and storage details to /api/v1/status.
	Status StatusSource

	HealthChecks []HealthCheck
	Version      string
}

// Server is the HTTP admin and query server.
type Server struct {
	cfg          config.APIConfig
	metricsCfg   config.MetricsConfig
	logger       *logging.Logger
	history      HistoryQuerier
	edges        EdgeDirectory
	availability AvailabilityView
	metrics      http.Handler
	status       StatusSource
	checks       []HealthCheck
	version      string
	started      time.Time
	server       *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.History == nil {
		return nil, fmt.Errorf("history service is required")
	}
	if deps.Edges == nil {
		return nil, fmt.Errorf("edge directory is required")
	}

	return &Server{
		cfg:          deps.Config,
		metricsCfg:   deps.Metrics,
		logger:       deps.Logger,
		history:      deps.History,
		edges:        deps.Edges,
		availability: deps.Availability,
		metrics:      deps.MetricsHandler,
		status:       deps.Status,
		checks:       deps.HealthChecks,
		version:      deps.Version,
		started:      time.Now(),
	}, nil
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
