package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ghostlink/ghostlink/pkg/logger"
)

// PrometheusConfig holds Prometheus server configuration
type PrometheusConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// PrometheusHandler handles Prometheus metrics HTTP requests
type PrometheusHandler struct {
	collector *Collector
}

// NewPrometheusHandler creates a new Prometheus handler
func NewPrometheusHandler(collector *Collector) *PrometheusHandler {
	return &PrometheusHandler{
		collector: collector,
	}
}

// ServeHTTP handles HTTP requests for metrics
func (h *PrometheusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	var output strings.Builder

	output.WriteString("# HELP ghostlink_frames_processed_total Total frames processed\n")
	output.WriteString("# TYPE ghostlink_frames_processed_total counter\n")
	output.WriteString(fmt.Sprintf("ghostlink_frames_processed_total %d\n", h.collector.GetFramesProcessed()))

	output.WriteString("# HELP ghostlink_frames_failed_total Total frames that failed processing\n")
	output.WriteString("# TYPE ghostlink_frames_failed_total counter\n")
	output.WriteString(fmt.Sprintf("ghostlink_frames_failed_total %d\n", h.collector.GetFramesFailed()))

	output.WriteString("# HELP ghostlink_lines_scrambled_total Total active lines transformed\n")
	output.WriteString("# TYPE ghostlink_lines_scrambled_total counter\n")
	output.WriteString(fmt.Sprintf("ghostlink_lines_scrambled_total %d\n", h.collector.GetLinesScrambled()))

	output.WriteString("# HELP ghostlink_lines_passed_total Total blanking lines passed through\n")
	output.WriteString("# TYPE ghostlink_lines_passed_total counter\n")
	output.WriteString(fmt.Sprintf("ghostlink_lines_passed_total %d\n", h.collector.GetLinesPassed()))

	output.WriteString("# HELP ghostlink_samples_processed_total Total samples processed\n")
	output.WriteString("# TYPE ghostlink_samples_processed_total counter\n")
	output.WriteString(fmt.Sprintf("ghostlink_samples_processed_total %d\n", h.collector.GetSamplesProcessed()))

	output.WriteString("# HELP ghostlink_keystream_bytes_total Total keystream bytes consumed\n")
	output.WriteString("# TYPE ghostlink_keystream_bytes_total counter\n")
	output.WriteString(fmt.Sprintf("ghostlink_keystream_bytes_total %d\n", h.collector.GetKeystreamBytes()))

	output.WriteString("# HELP ghostlink_sessions_started_total Total sessions started\n")
	output.WriteString("# TYPE ghostlink_sessions_started_total counter\n")
	output.WriteString(fmt.Sprintf("ghostlink_sessions_started_total %d\n", h.collector.GetSessionsStarted()))

	output.WriteString("# HELP ghostlink_sessions_completed_total Total sessions completed\n")
	output.WriteString("# TYPE ghostlink_sessions_completed_total counter\n")
	output.WriteString(fmt.Sprintf("ghostlink_sessions_completed_total %d\n", h.collector.GetSessionsCompleted()))

	output.WriteString("# HELP ghostlink_processing_seconds_total Cumulative processing time in seconds\n")
	output.WriteString("# TYPE ghostlink_processing_seconds_total counter\n")
	output.WriteString(fmt.Sprintf("ghostlink_processing_seconds_total %.3f\n", h.collector.GetProcessingTime().Seconds()))

	w.Write([]byte(output.String()))
}

// PrometheusServer is an HTTP server for Prometheus metrics
type PrometheusServer struct {
	config    PrometheusConfig
	collector *Collector
	log       *logger.Logger
	server    *http.Server
}

// NewPrometheusServer creates a new Prometheus metrics server
func NewPrometheusServer(config PrometheusConfig, collector *Collector, log *logger.Logger) *PrometheusServer {
	if log == nil {
		log = logger.New(logger.Config{Level: "info"})
	}

	return &PrometheusServer{
		config:    config,
		collector: collector,
		log:       log.WithComponent("metrics"),
	}
}

// Start starts the Prometheus metrics server
func (s *PrometheusServer) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Info("Prometheus metrics server disabled")
		return nil
	}

	handler := NewPrometheusHandler(s.collector)
	mux := http.NewServeMux()
	mux.Handle(s.config.Path, handler)

	// Use a listener to get the actual port (useful for testing with port 0)
	addr := fmt.Sprintf(":%d", s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	actualPort := listener.Addr().(*net.TCPAddr).Port

	s.server = &http.Server{
		Handler: mux,
	}

	s.log.Info("Starting Prometheus metrics server",
		logger.Int("port", actualPort),
		logger.String("path", s.config.Path))

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Shutting down Prometheus metrics server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown error: %w", err)
		}
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

// Stop stops the Prometheus metrics server
func (s *PrometheusServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}
}
