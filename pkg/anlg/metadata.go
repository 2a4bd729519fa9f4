// Package anlg reads and writes the ANLG container: a magic token,
// a version number, a length-prefixed JSON metadata block, then a flat
// sequence of little-endian float32 samples with no further framing.
package anlg

import "fmt"

const (
	// Magic is the container signature
	Magic = "ANLG"
	// Version is the container version written and accepted
	Version = 1

	headerFixedSize = 4 + 4 + 4 // magic + version + metadata length
)

// FormatError reports a malformed or unrecognized container
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "invalid ANLG container: " + e.Reason
}

// VoltageLevels holds the composite signal levels recorded in metadata
type VoltageLevels struct {
	SyncTip  float64 `json:"sync_tip"`
	Blanking float64 `json:"blanking"`
	Black    float64 `json:"black"`
	White    float64 `json:"white"`
}

// Operations records which scrambling operations were applied, so a
// descrambler can auto-configure from the container alone.
type Operations struct {
	Permutation bool `json:"permutation"`
	Inversion   bool `json:"inversion"`
	Shift       bool `json:"shift"`
}

// Metadata is the structured record carried in the container header.
// Segment remainder policy: when the active-line length is not evenly
// divisible by segments_per_line, the remainder samples belong to the
// final segment (container version 1).
type Metadata struct {
	Standard        string        `json:"standard"`
	SampleRate      int           `json:"sample_rate"`
	Resolution      [2]int        `json:"resolution"`
	LinesPerFrame   int           `json:"lines_per_frame"`
	FPS             float64       `json:"fps"`
	SamplesPerLine  int           `json:"samples_per_line"`
	SamplesPerFrame int           `json:"samples_per_frame"`
	ActiveLines     int           `json:"active_lines"`
	BandwidthMHz    float64       `json:"bandwidth_mhz,omitempty"`
	Voltages        VoltageLevels `json:"voltage_levels"`
	Timestamp       string        `json:"timestamp,omitempty"`

	// Scrambling state
	Scrambled        bool        `json:"scrambled,omitempty"`
	ScramblingMethod string      `json:"scrambling_method,omitempty"`
	SegmentsPerLine  int         `json:"segments_per_line,omitempty"`
	Operations       *Operations `json:"operations,omitempty"`
}

// Validate checks internal consistency of the metadata geometry
func (m *Metadata) Validate() error {
	if m.SampleRate <= 0 {
		return &FormatError{Reason: fmt.Sprintf("non-positive sample rate %d", m.SampleRate)}
	}
	if m.LinesPerFrame <= 0 || m.SamplesPerLine <= 0 {
		return &FormatError{Reason: fmt.Sprintf(
			"bad geometry: %d lines of %d samples", m.LinesPerFrame, m.SamplesPerLine)}
	}
	if m.SamplesPerFrame != m.SamplesPerLine*m.LinesPerFrame {
		return &FormatError{Reason: fmt.Sprintf(
			"samples_per_frame %d does not match %d lines of %d samples",
			m.SamplesPerFrame, m.LinesPerFrame, m.SamplesPerLine)}
	}
	if m.ActiveLines < 0 || m.ActiveLines > m.LinesPerFrame {
		return &FormatError{Reason: fmt.Sprintf(
			"active_lines %d outside frame of %d lines", m.ActiveLines, m.LinesPerFrame)}
	}
	return nil
}
