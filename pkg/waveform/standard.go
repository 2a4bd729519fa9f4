package waveform

import "fmt"

// Levels holds the composite voltage levels in normalized volts.
type Levels struct {
	SyncTip  float64
	Blanking float64
	Black    float64
	White    float64
}

// InversionLevel returns the voltage active samples are reflected
// about during segment inversion. Reflection about the blanking level
// is a sign flip at the standard levels, which keeps the inversion
// bit-exact in float arithmetic.
func (v Levels) InversionLevel() float64 {
	return v.Blanking
}

// Standard defines an analog video timing profile
type Standard struct {
	Name          string
	LinesPerFrame int
	FPS           float64

	// Horizontal timing in microseconds
	LineDurationUS float64
	HSyncUS        float64
	BackPorchUS    float64
	FrontPorchUS   float64
	ActiveUS       float64

	Levels Levels
}

// Supported timing profiles
var (
	NTSC = Standard{
		Name:           "NTSC",
		LinesPerFrame:  525,
		FPS:            29.97,
		LineDurationUS: 63.556,
		HSyncUS:        4.7,
		BackPorchUS:    4.7,
		FrontPorchUS:   1.5,
		ActiveUS:       52.656,
		Levels:         Levels{SyncTip: -0.3, Blanking: 0.0, Black: 0.05, White: 0.7},
	}

	PAL = Standard{
		Name:           "PAL",
		LinesPerFrame:  625,
		FPS:            25.0,
		LineDurationUS: 64.0,
		HSyncUS:        4.7,
		BackPorchUS:    5.7,
		FrontPorchUS:   1.65,
		ActiveUS:       51.95,
		Levels:         Levels{SyncTip: -0.3, Blanking: 0.0, Black: 0.05, White: 0.7},
	}
)

// ByName looks up a timing profile by its standard tag
func ByName(name string) (Standard, error) {
	switch name {
	case "NTSC":
		return NTSC, nil
	case "PAL":
		return PAL, nil
	default:
		return Standard{}, fmt.Errorf("unknown video standard: %q", name)
	}
}

// SamplesPerLine returns the number of samples in one horizontal line
// at the given sample rate.
func (s Standard) SamplesPerLine(sampleRate int) int {
	return int(s.LineDurationUS * 1e-6 * float64(sampleRate))
}

// SamplesPerFrame returns the number of samples in one complete frame
// at the given sample rate.
func (s Standard) SamplesPerFrame(sampleRate int) int {
	return s.SamplesPerLine(sampleRate) * s.LinesPerFrame
}
