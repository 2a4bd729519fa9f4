package anlg

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func testMetadata() Metadata {
	return Metadata{
		Standard:        "NTSC",
		SampleRate:      10_000_000,
		Resolution:      [2]int{640, 480},
		LinesPerFrame:   525,
		FPS:             29.97,
		SamplesPerLine:  635,
		SamplesPerFrame: 635 * 525,
		ActiveLines:     480,
		Voltages:        VoltageLevels{SyncTip: -0.3, Blanking: 0.0, Black: 0.05, White: 0.7},
	}
}

func TestContainer_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.analog")
	meta := testMetadata()
	meta.Scrambled = true
	meta.ScramblingMethod = "crypto"
	meta.SegmentsPerLine = 16
	meta.Operations = &Operations{Permutation: true, Inversion: true, Shift: false}

	w, err := Create(path, meta)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	frame := make([]float32, meta.SamplesPerFrame)
	for i := range frame {
		frame[i] = float32(i%100) / 100
	}
	for i := 0; i < 3; i++ {
		if err := w.WriteFrame(frame); err != nil {
			t.Fatalf("WriteFrame %d failed: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	got := r.Metadata()
	if got.Standard != "NTSC" || got.SamplesPerLine != 635 || got.ActiveLines != 480 {
		t.Errorf("metadata mismatch: %+v", got)
	}
	if !got.Scrambled || got.SegmentsPerLine != 16 {
		t.Errorf("scrambling metadata not preserved: %+v", got)
	}
	if got.Operations == nil || !got.Operations.Permutation || got.Operations.Shift {
		t.Errorf("operations not preserved: %+v", got.Operations)
	}
	if got.Timestamp == "" {
		t.Error("expected timestamp to be stamped on create")
	}
	if r.FrameCount() != 3 {
		t.Errorf("expected 3 frames, got %d", r.FrameCount())
	}

	for i := 0; i < 3; i++ {
		samples, err := r.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame %d failed: %v", i, err)
		}
		if len(samples) != meta.SamplesPerFrame {
			t.Fatalf("frame %d has %d samples, expected %d", i, len(samples), meta.SamplesPerFrame)
		}
		for j := 0; j < 200; j++ {
			if samples[j] != frame[j] {
				t.Fatalf("frame %d sample %d: got %v, want %v", i, j, samples[j], frame[j])
			}
		}
	}

	if _, err := r.ReadFrame(); err != io.EOF {
		t.Errorf("expected io.EOF past last frame, got %v", err)
	}
}

func TestOpen_BadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.analog")
	if err := os.WriteFile(path, []byte("JUNKxxxxxxxxxxxx"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(path)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FormatError, got %v", err)
	}
}

func TestOpen_BadVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v9.analog")
	header := make([]byte, headerFixedSize)
	copy(header[0:4], []byte(Magic))
	binary.LittleEndian.PutUint32(header[4:8], 9)
	binary.LittleEndian.PutUint32(header[8:12], 0)
	if err := os.WriteFile(path, header, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(path)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FormatError for unsupported version, got %v", err)
	}
}

func TestOpen_TruncatedPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trunc.analog")

	w, err := Create(path, testMetadata())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := w.WriteFrame(make([]float32, 635*525)); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Chop off the last sample of the only frame
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Truncate(path, info.Size()-4); err != nil {
		t.Fatal(err)
	}

	_, err = Open(path)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FormatError for partial frame, got %v", err)
	}
}

func TestCreate_RejectsBadGeometry(t *testing.T) {
	meta := testMetadata()
	meta.SamplesPerFrame = 1000 // not lines * samples-per-line

	path := filepath.Join(t.TempDir(), "never.analog")
	_, err := Create(path, meta)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FormatError, got %v", err)
	}

	// Nothing must be written on a fatal error
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no output file after geometry rejection")
	}
}

func TestWriteFrame_WrongSampleCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.analog")
	w, err := Create(path, testMetadata())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer w.Close()

	if err := w.WriteFrame(make([]float32, 10)); err == nil {
		t.Fatal("expected error for short frame")
	}
}
