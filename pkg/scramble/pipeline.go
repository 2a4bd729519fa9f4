package scramble

import (
	"context"
	"io"
	"time"

	"github.com/ghostlink/ghostlink/pkg/anlg"
	"github.com/ghostlink/ghostlink/pkg/logger"
)

// FrameTransformer is the frame-level contract shared by Scrambler and
// Descrambler
type FrameTransformer interface {
	Frame(frame []float32, frameNum uint64) ([]float32, error)
}

// Progress reports pipeline state after each completed frame
type Progress struct {
	Frame   int
	Frames  int
	Elapsed time.Duration
}

// Pipeline streams frames from a container through a transform into
// another container. Cancellation is coarse-grained: the pipeline stops
// between frames, and every frame already written is complete.
type Pipeline struct {
	transform  FrameTransformer
	log        *logger.Logger
	onProgress func(Progress)
}

// NewPipeline creates a pipeline around a frame transform
func NewPipeline(t FrameTransformer, log *logger.Logger) *Pipeline {
	return &Pipeline{transform: t, log: log}
}

// OnProgress registers a callback invoked after every frame
func (p *Pipeline) OnProgress(fn func(Progress)) {
	p.onProgress = fn
}

// Run processes every frame from r into w. It returns the number of
// frames written, which on cancellation may be fewer than the input
// holds.
func (p *Pipeline) Run(ctx context.Context, r *anlg.Reader, w *anlg.Writer) (int, error) {
	start := time.Now()
	total := r.FrameCount()

	frameNum := 0
	for {
		select {
		case <-ctx.Done():
			p.log.Warn("processing cancelled",
				logger.Int("frames_done", frameNum),
				logger.Int("frames_total", total))
			return frameNum, ctx.Err()
		default:
		}

		frame, err := r.ReadFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			return frameNum, err
		}

		out, err := p.transform.Frame(frame, uint64(frameNum))
		if err != nil {
			return frameNum, err
		}
		if err := w.WriteFrame(out); err != nil {
			return frameNum, err
		}

		frameNum++
		if frameNum%30 == 0 {
			p.log.Info("processed frames",
				logger.Int("frames", frameNum),
				logger.Int("total", total))
		}
		if p.onProgress != nil {
			p.onProgress(Progress{Frame: frameNum, Frames: total, Elapsed: time.Since(start)})
		}
	}

	p.log.Info("processing complete",
		logger.Int("frames", frameNum),
		logger.Duration("elapsed", time.Since(start)))
	return frameNum, nil
}
