package waveform

import "fmt"

// FramingError reports waveform geometry that is inconsistent with the
// declared metadata.
type FramingError struct {
	Reason string
}

func (e *FramingError) Error() string {
	return "framing error: " + e.Reason
}

// Timing holds the per-line sample offsets computed once per waveform.
// Offsets partition a line as: h-sync, back porch, active video, front
// porch (plus any trailing slack at blanking level).
type Timing struct {
	SamplesPerLine  int
	SyncSamples     int
	ActiveStart     int // first active sample (after sync + back porch)
	ActiveSamples   int
	FrontPorchStart int // ActiveStart + ActiveSamples
}

// NewTiming computes line timing for a standard at a sample rate
func NewTiming(std Standard, sampleRate int) Timing {
	sr := float64(sampleRate)
	syncSamples := int(std.HSyncUS * 1e-6 * sr)
	backPorch := int(std.BackPorchUS * 1e-6 * sr)
	active := int(std.ActiveUS * 1e-6 * sr)

	t := Timing{
		SamplesPerLine: std.SamplesPerLine(sampleRate),
		SyncSamples:    syncSamples,
		ActiveStart:    syncSamples + backPorch,
		ActiveSamples:  active,
	}
	t.FrontPorchStart = t.ActiveStart + t.ActiveSamples
	return t
}

// Line is a window into one scan line of a frame. Prefix and Tail are
// timing-critical and must never be modified; Active is the read/write
// region for scrambling.
type Line struct {
	samples []float32
	timing  Timing
}

// Active returns the writable active-video sub-range of the line
func (l Line) Active() []float32 {
	return l.samples[l.timing.ActiveStart:l.timing.FrontPorchStart]
}

// Prefix returns the sync + back porch samples preceding active video
func (l Line) Prefix() []float32 {
	return l.samples[:l.timing.ActiveStart]
}

// Tail returns the front porch and trailing blanking samples
func (l Line) Tail() []float32 {
	return l.samples[l.timing.FrontPorchStart:]
}

// All returns the complete line
func (l Line) All() []float32 {
	return l.samples
}

// Framer interprets a flat frame of samples as scan lines. It never
// copies samples; every Line is a view into the underlying slice.
type Framer struct {
	Timing        Timing
	LinesPerFrame int
	ActiveLines   int

	vblankTop int
}

// NewFramer builds a framer and validates the declared geometry against
// the actual per-frame sample count.
func NewFramer(std Standard, sampleRate, activeLines, samplesPerFrame int) (*Framer, error) {
	t := NewTiming(std, sampleRate)
	if t.SamplesPerLine <= 0 {
		return nil, &FramingError{Reason: fmt.Sprintf("non-positive samples per line at rate %d", sampleRate)}
	}
	if samplesPerFrame != t.SamplesPerLine*std.LinesPerFrame {
		return nil, &FramingError{Reason: fmt.Sprintf(
			"sample count %d is not %d lines of %d samples",
			samplesPerFrame, std.LinesPerFrame, t.SamplesPerLine)}
	}
	if activeLines <= 0 || activeLines > std.LinesPerFrame {
		return nil, &FramingError{Reason: fmt.Sprintf(
			"active lines %d outside frame of %d lines", activeLines, std.LinesPerFrame)}
	}

	return &Framer{
		Timing:        t,
		LinesPerFrame: std.LinesPerFrame,
		ActiveLines:   activeLines,
		vblankTop:     (std.LinesPerFrame - activeLines) / 2,
	}, nil
}

// Line returns a window into line i of the given frame samples
func (f *Framer) Line(frame []float32, i int) Line {
	start := i * f.Timing.SamplesPerLine
	return Line{
		samples: frame[start : start+f.Timing.SamplesPerLine],
		timing:  f.Timing,
	}
}

// IsActiveLine reports whether line i carries picture information.
// Lines in the vertical blanking interval pass through untouched.
func (f *Framer) IsActiveLine(i int) bool {
	return i >= f.vblankTop && i < f.vblankTop+f.ActiveLines
}

// CheckFrame validates that a frame slice matches the framer geometry
func (f *Framer) CheckFrame(frame []float32) error {
	want := f.Timing.SamplesPerLine * f.LinesPerFrame
	if len(frame) != want {
		return &FramingError{Reason: fmt.Sprintf("frame has %d samples, expected %d", len(frame), want)}
	}
	return nil
}
