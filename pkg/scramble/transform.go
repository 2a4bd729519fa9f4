package scramble

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ghostlink/ghostlink/pkg/keystream"
	"github.com/ghostlink/ghostlink/pkg/waveform"
)

// Config holds the session parameters shared by scrambler and
// descrambler. Both ends must agree on every field (and the key) for
// the transform to invert; a mismatch completes without error but does
// not recover the signal.
type Config struct {
	Key      keystream.KeyMaterial
	Backend  string // keystream backend, see keystream.NewSource
	StreamID uint64
	Segments int
	Flags    Flags
	Workers  int // parallel line workers per frame; <=1 means sequential
}

// core holds state shared by the forward and inverse transforms
type core struct {
	src      keystream.Source
	streamID uint64
	segments int
	segLen   int // base segment length; remainder goes to the last segment
	flags    Flags
	framer   *waveform.Framer
	mid      float32
	bounds   [][2]int
	workers  int

	consumed atomic.Uint64 // keystream bytes drawn across all lines
}

func newCore(cfg Config, framer *waveform.Framer, levels waveform.Levels) (*core, error) {
	activeLen := framer.Timing.ActiveSamples
	if cfg.Segments <= 0 {
		return nil, &ParameterError{Reason: fmt.Sprintf("segment count %d is not positive", cfg.Segments)}
	}
	if cfg.Segments > 256 {
		return nil, &ParameterError{Reason: fmt.Sprintf("segment count %d exceeds 256", cfg.Segments)}
	}
	if cfg.Segments > activeLen {
		return nil, &ParameterError{Reason: fmt.Sprintf(
			"segment count %d exceeds active line length %d", cfg.Segments, activeLen)}
	}

	src, err := keystream.NewSource(cfg.Backend, cfg.Key)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	return &core{
		src:      src,
		streamID: cfg.StreamID,
		segments: cfg.Segments,
		segLen:   activeLen / cfg.Segments,
		flags:    cfg.Flags,
		framer:   framer,
		mid:      float32(levels.InversionLevel()),
		bounds:   segmentBounds(activeLen, cfg.Segments),
		workers:  workers,
	}, nil
}

// segmentBounds partitions [0,activeLen) into n segments of equal base
// length, with remainder samples appended to the final segment. The
// policy is fixed and identical on both ends.
func segmentBounds(activeLen, n int) [][2]int {
	segLen := activeLen / n
	bounds := make([][2]int, n)
	for i := 0; i < n; i++ {
		bounds[i] = [2]int{i * segLen, (i + 1) * segLen}
	}
	bounds[n-1][1] = activeLen
	return bounds
}

func (c *core) deriveLine(frame uint64, line int) (Params, error) {
	nonce := keystream.Nonce{StreamID: c.streamID, Frame: frame, Line: uint32(line)}
	cur := keystream.NewCursor(c.src, nonce)
	p, err := DeriveParams(cur, c.segments, c.segLen, c.flags)
	if err == nil {
		c.consumed.Add(uint64(cur.Consumed()))
	}
	return p, err
}

// KeystreamBytes reports the total keystream bytes drawn so far
func (c *core) KeystreamBytes() uint64 {
	return c.consumed.Load()
}

// processFrame copies the frame and rewrites the active region of every
// active line through lineOp. Sync, blanking, porch, and vertical
// blanking lines pass through bit-identical. Lines are independent, so
// they are fanned out across workers when configured.
func (c *core) processFrame(frame []float32, frameNum uint64, lineOp func(active []float32, p Params, scratch []float32)) ([]float32, error) {
	if err := c.framer.CheckFrame(frame); err != nil {
		return nil, err
	}

	out := make([]float32, len(frame))
	copy(out, frame)

	if c.workers == 1 {
		scratch := make([]float32, c.framer.Timing.ActiveSamples)
		for li := 0; li < c.framer.LinesPerFrame; li++ {
			if !c.framer.IsActiveLine(li) {
				continue
			}
			p, err := c.deriveLine(frameNum, li)
			if err != nil {
				return nil, err
			}
			lineOp(c.framer.Line(out, li).Active(), p, scratch)
		}
		return out, nil
	}

	var wg sync.WaitGroup
	errCh := make(chan error, c.workers)
	lines := make(chan int, c.framer.LinesPerFrame)

	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scratch := make([]float32, c.framer.Timing.ActiveSamples)
			for li := range lines {
				p, err := c.deriveLine(frameNum, li)
				if err != nil {
					select {
					case errCh <- err:
					default:
					}
					return
				}
				lineOp(c.framer.Line(out, li).Active(), p, scratch)
			}
		}()
	}

	for li := 0; li < c.framer.LinesPerFrame; li++ {
		if c.framer.IsActiveLine(li) {
			lines <- li
		}
	}
	close(lines)
	wg.Wait()

	select {
	case err := <-errCh:
		return nil, err
	default:
	}
	return out, nil
}

// invertAbout mirrors every sample about the inversion level.
// Self-inverse, and bit-exact when the level is zero (a sign flip).
func invertAbout(seg []float32, mid float32) {
	for i, y := range seg {
		seg[i] = mid - (y - mid)
	}
}

func reverse(s []float32) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// rotateLeft rotates the segment left by k samples in place
func rotateLeft(s []float32, k int) {
	k %= len(s)
	if k == 0 {
		return
	}
	reverse(s[:k])
	reverse(s[k:])
	reverse(s)
}

// rotateRight rotates the segment right by k samples in place
func rotateRight(s []float32, k int) {
	k %= len(s)
	rotateLeft(s, len(s)-k)
}

// Scrambler applies the forward transform
type Scrambler struct {
	*core
}

// NewScrambler builds a forward scrambler for the given framing
func NewScrambler(cfg Config, framer *waveform.Framer, levels waveform.Levels) (*Scrambler, error) {
	c, err := newCore(cfg, framer, levels)
	if err != nil {
		return nil, err
	}
	return &Scrambler{core: c}, nil
}

// Frame scrambles one frame, returning a new frame of identical shape.
// Scrambling never fails for a frame that passes the geometry check.
func (s *Scrambler) Frame(frame []float32, frameNum uint64) ([]float32, error) {
	return s.processFrame(frame, frameNum, s.scrambleLine)
}

// scrambleLine applies permutation, then inversion, then shift. The
// output is assembled segment by segment: output position i receives
// input segment Perm[i], then position i's inversion and shift.
func (s *Scrambler) scrambleLine(active []float32, p Params, scratch []float32) {
	pos := 0
	for i := 0; i < s.segments; i++ {
		b := s.bounds[p.Perm[i]]
		n := b[1] - b[0]
		seg := scratch[pos : pos+n]
		copy(seg, active[b[0]:b[1]])

		if p.Invert[i] {
			invertAbout(seg, s.mid)
		}
		if p.Shifts[i] > 0 {
			rotateLeft(seg, p.Shifts[i])
		}
		pos += n
	}
	copy(active, scratch[:pos])
}

// Descrambler applies the exact inverse transform
type Descrambler struct {
	*core
}

// NewDescrambler builds the inverse transform. Key, segment count, and
// flags must match what the scrambler used; the transform cannot detect
// a mismatch from the waveform alone.
func NewDescrambler(cfg Config, framer *waveform.Framer, levels waveform.Levels) (*Descrambler, error) {
	c, err := newCore(cfg, framer, levels)
	if err != nil {
		return nil, err
	}
	return &Descrambler{core: c}, nil
}

// Frame descrambles one frame, returning a new frame of identical shape
func (d *Descrambler) Frame(frame []float32, frameNum uint64) ([]float32, error) {
	return d.processFrame(frame, frameNum, d.descrambleLine)
}

// descrambleLine undoes shift, then inversion, then permutation. The
// scrambled line's segment boundaries follow the permuted segment
// lengths, which both ends compute from the same Perm.
func (d *Descrambler) descrambleLine(active []float32, p Params, scratch []float32) {
	pos := 0
	for i := 0; i < d.segments; i++ {
		b := d.bounds[p.Perm[i]]
		n := b[1] - b[0]
		seg := scratch[b[0]:b[1]]
		copy(seg, active[pos:pos+n])

		if p.Shifts[i] > 0 {
			rotateRight(seg, p.Shifts[i])
		}
		if p.Invert[i] {
			invertAbout(seg, d.mid)
		}
		pos += n
	}
	copy(active, scratch[:len(active)])
}
