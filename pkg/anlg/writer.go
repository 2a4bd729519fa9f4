package anlg

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"
)

// Writer writes frames of samples to an ANLG container
type Writer struct {
	file          *os.File
	w             *bufio.Writer
	meta          Metadata
	framesWritten int
	buf           []byte
}

// Create creates an ANLG file and writes its header. The metadata is
// validated first; nothing is written for inconsistent geometry.
func Create(path string, meta Metadata) (*Writer, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if meta.Timestamp == "" {
		meta.Timestamp = time.Now().Format(time.RFC3339)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create analog file: %w", err)
	}

	w := &Writer{file: f, w: bufio.NewWriterSize(f, 1<<16), meta: meta}
	if err := w.writeHeader(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader() error {
	metaBytes, err := json.MarshalIndent(&w.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	header := make([]byte, headerFixedSize)
	copy(header[0:4], []byte(Magic))
	binary.LittleEndian.PutUint32(header[4:8], Version)
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(metaBytes)))

	if _, err := w.w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.w.Write(metaBytes); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// WriteFrame writes one frame of samples. The sample count must match
// the declared frame geometry.
func (w *Writer) WriteFrame(samples []float32) error {
	if len(samples) != w.meta.SamplesPerFrame {
		return &FormatError{Reason: fmt.Sprintf(
			"frame has %d samples, metadata declares %d", len(samples), w.meta.SamplesPerFrame)}
	}

	n := len(samples) * 4
	if cap(w.buf) < n {
		w.buf = make([]byte, n)
	}
	buf := w.buf[:n]
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(s))
	}

	if _, err := w.w.Write(buf); err != nil {
		return fmt.Errorf("failed to write frame %d: %w", w.framesWritten, err)
	}
	w.framesWritten++
	return nil
}

// FramesWritten returns the number of frames written so far
func (w *Writer) FramesWritten() int {
	return w.framesWritten
}

// Close flushes and closes the file
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush analog file: %w", err)
	}
	return w.file.Close()
}
