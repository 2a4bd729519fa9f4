package anlg

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// Reader reads frames of samples from an ANLG container
type Reader struct {
	file       *os.File
	meta       Metadata
	frameCount int
	framesRead int
	buf        []byte
}

// Open opens an ANLG file, parses and validates its header, and checks
// that the payload size matches the declared frame geometry.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open analog file: %w", err)
	}

	r := &Reader{file: f}
	if err := r.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) readHeader() error {
	var fixed [headerFixedSize]byte
	if _, err := io.ReadFull(r.file, fixed[:]); err != nil {
		return &FormatError{Reason: "truncated header"}
	}

	if string(fixed[0:4]) != Magic {
		return &FormatError{Reason: fmt.Sprintf("bad magic %q", fixed[0:4])}
	}
	if v := binary.LittleEndian.Uint32(fixed[4:8]); v != Version {
		return &FormatError{Reason: fmt.Sprintf("unsupported version %d", v)}
	}

	metaLen := binary.LittleEndian.Uint32(fixed[8:12])
	metaBytes := make([]byte, metaLen)
	if _, err := io.ReadFull(r.file, metaBytes); err != nil {
		return &FormatError{Reason: "truncated metadata block"}
	}

	if err := json.Unmarshal(metaBytes, &r.meta); err != nil {
		return &FormatError{Reason: fmt.Sprintf("malformed metadata: %v", err)}
	}
	if err := r.meta.Validate(); err != nil {
		return err
	}

	// Payload must be a whole number of frames
	info, err := r.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat analog file: %w", err)
	}
	payload := info.Size() - int64(headerFixedSize) - int64(metaLen)
	frameBytes := int64(r.meta.SamplesPerFrame) * 4
	if payload < 0 || payload%frameBytes != 0 {
		return &FormatError{Reason: fmt.Sprintf(
			"payload of %d bytes is not a whole number of %d-byte frames", payload, frameBytes)}
	}
	r.frameCount = int(payload / frameBytes)

	return nil
}

// Metadata returns the container metadata
func (r *Reader) Metadata() Metadata {
	return r.meta
}

// FrameCount returns the number of complete frames in the container
func (r *Reader) FrameCount() int {
	return r.frameCount
}

// ReadFrame reads the next frame of samples. It returns io.EOF once all
// frames have been read.
func (r *Reader) ReadFrame() ([]float32, error) {
	n := r.meta.SamplesPerFrame * 4
	if cap(r.buf) < n {
		r.buf = make([]byte, n)
	}
	buf := r.buf[:n]

	if _, err := io.ReadFull(r.file, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read frame %d: %w", r.framesRead, err)
	}

	samples := make([]float32, r.meta.SamplesPerFrame)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	r.framesRead++
	return samples, nil
}

// Close closes the underlying file
func (r *Reader) Close() error {
	return r.file.Close()
}
