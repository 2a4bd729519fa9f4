// Package session orchestrates one scramble or descramble run: the
// frame pipeline plus the optional monitor server and history ledger
// around it.
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ghostlink/ghostlink/pkg/anlg"
	"github.com/ghostlink/ghostlink/pkg/config"
	"github.com/ghostlink/ghostlink/pkg/history"
	"github.com/ghostlink/ghostlink/pkg/keystream"
	"github.com/ghostlink/ghostlink/pkg/logger"
	"github.com/ghostlink/ghostlink/pkg/metrics"
	"github.com/ghostlink/ghostlink/pkg/scramble"
	"github.com/ghostlink/ghostlink/pkg/web"
)

// Options describes one run
type Options struct {
	Tool       string // "scramble" or "descramble"
	Input      string
	Output     string
	Key        keystream.KeyMaterial
	Backend    string
	StreamID   uint64
	Segments   int
	Flags      scramble.Flags
	Transform  scramble.FrameTransformer
	OutputMeta anlg.Metadata
}

// keystreamMeter is implemented by transforms that track how many
// keystream bytes they have drawn
type keystreamMeter interface {
	KeystreamBytes() uint64
}

// Runner wires the pipeline to the monitor and history sidecars
type Runner struct {
	cfg       *config.Config
	log       *logger.Logger
	collector *metrics.Collector
}

// NewRunner creates a runner for the given configuration
func NewRunner(cfg *config.Config, log *logger.Logger) *Runner {
	return &Runner{
		cfg:       cfg,
		log:       log,
		collector: metrics.NewCollector(),
	}
}

// Run processes every frame of the input container into the output
// container, reporting progress to the monitor and recording the run in
// the history ledger when those are enabled. It returns the number of
// frames written.
func (r *Runner) Run(ctx context.Context, reader *anlg.Reader, opts Options) (int, error) {
	meta := reader.Metadata()
	activeLines := meta.ActiveLines
	blankLines := meta.LinesPerFrame - meta.ActiveLines

	// Optional history ledger
	var repo *history.SessionRepository
	var sess *history.Session
	if r.cfg.History.Enabled {
		db, err := history.NewDB(history.Config{Path: r.cfg.History.Path}, r.log.WithComponent("history"))
		if err != nil {
			return 0, fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()

		repo = history.NewSessionRepository(db)
		sess = &history.Session{
			Tool:           opts.Tool,
			InputPath:      opts.Input,
			OutputPath:     opts.Output,
			Standard:       meta.Standard,
			Segments:       opts.Segments,
			Permutation:    opts.Flags.Permutation,
			Inversion:      opts.Flags.Inversion,
			Shift:          opts.Flags.Shift,
			Backend:        opts.Backend,
			KeyFingerprint: opts.Key.Fingerprint(),
			StreamID:       opts.StreamID,
		}
		if err := repo.Create(sess); err != nil {
			return 0, fmt.Errorf("failed to record session: %w", err)
		}
	}

	// Optional monitor server
	var hub *web.WebSocketHub
	var api *web.API
	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	if r.cfg.Monitor.Enabled {
		srv := web.NewServer(r.cfg.Monitor, r.collector, r.log.WithComponent("monitor"))
		hub = srv.GetHub()
		api = srv.GetAPI()
		go func() {
			if err := srv.Start(monitorCtx); err != nil && err != context.Canceled && err != http.ErrServerClosed {
				r.log.Error("Monitor server error", logger.Error(err))
			}
		}()

		if repo != nil {
			api.SetSessionStore(repo)
		}
		api.SetRun(web.RunState{
			Tool:      opts.Tool,
			Input:     opts.Input,
			Output:    opts.Output,
			Standard:  meta.Standard,
			Frames:    reader.FrameCount(),
			StartedAt: time.Now(),
			Running:   true,
		})
		hub.BroadcastSessionStarted(opts.Tool, opts.Input, opts.Output, meta.Standard, reader.FrameCount())
	}

	// Optional Prometheus exposition
	if r.cfg.Metrics.Enabled {
		promSrv := metrics.NewPrometheusServer(metrics.PrometheusConfig{
			Enabled: true,
			Port:    r.cfg.Metrics.Port,
			Path:    r.cfg.Metrics.Path,
		}, r.collector, r.log)
		go func() {
			if err := promSrv.Start(monitorCtx); err != nil && err != context.Canceled && err != http.ErrServerClosed {
				r.log.Error("Prometheus metrics server error", logger.Error(err))
			}
		}()
	}

	writer, err := anlg.Create(opts.Output, opts.OutputMeta)
	if err != nil {
		return 0, err
	}

	r.collector.SessionStarted()
	start := time.Now()

	meter, _ := opts.Transform.(keystreamMeter)
	var metered uint64

	pipeline := scramble.NewPipeline(opts.Transform, r.log.WithComponent(opts.Tool))
	pipeline.OnProgress(func(p scramble.Progress) {
		r.collector.FrameProcessed(activeLines, blankLines, meta.SamplesPerFrame)
		if meter != nil {
			total := meter.KeystreamBytes()
			r.collector.KeystreamConsumed(int(total - metered))
			metered = total
		}
		if hub != nil {
			hub.BroadcastProgress(p.Frame, p.Frames, p.Elapsed)
			api.UpdateProgress(p.Frame)
		}
	})

	frames, runErr := pipeline.Run(ctx, reader, writer)

	if closeErr := writer.Close(); closeErr != nil && runErr == nil {
		runErr = closeErr
	}

	elapsed := time.Since(start)
	if runErr == nil {
		r.collector.SessionCompleted(elapsed)
	} else {
		r.collector.FrameFailed()
	}

	if hub != nil {
		hub.BroadcastSessionFinished(opts.Tool, frames, elapsed, runErr == nil)
		api.FinishRun()
	}

	if repo != nil && runErr == nil {
		if err := repo.Finish(sess, frames); err != nil {
			r.log.Warn("Failed to finalize session record", logger.Error(err))
		}
	}

	return frames, runErr
}

// Collector exposes the run's metrics counters
func (r *Runner) Collector() *metrics.Collector {
	return r.collector
}
