package metrics

import (
	"testing"
	"time"
)

// TestNewCollector tests creating a new metrics collector
func TestNewCollector(t *testing.T) {
	collector := NewCollector()
	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
}

// TestCollector_FrameMetrics tests frame and line counters
func TestCollector_FrameMetrics(t *testing.T) {
	collector := NewCollector()

	collector.FrameProcessed(480, 45, 333375)
	collector.FrameProcessed(480, 45, 333375)

	if got := collector.GetFramesProcessed(); got != 2 {
		t.Errorf("Expected 2 frames processed, got %d", got)
	}
	if got := collector.GetLinesScrambled(); got != 960 {
		t.Errorf("Expected 960 scrambled lines, got %d", got)
	}
	if got := collector.GetLinesPassed(); got != 90 {
		t.Errorf("Expected 90 passed lines, got %d", got)
	}
	if got := collector.GetSamplesProcessed(); got != 666750 {
		t.Errorf("Expected 666750 samples, got %d", got)
	}

	collector.FrameFailed()
	if got := collector.GetFramesFailed(); got != 1 {
		t.Errorf("Expected 1 failed frame, got %d", got)
	}
}

// TestCollector_KeystreamMetrics tests keystream byte accounting
func TestCollector_KeystreamMetrics(t *testing.T) {
	collector := NewCollector()

	collector.KeystreamConsumed(64)
	collector.KeystreamConsumed(128)

	if got := collector.GetKeystreamBytes(); got != 192 {
		t.Errorf("Expected 192 keystream bytes, got %d", got)
	}
}

// TestCollector_SessionMetrics tests session lifecycle counters
func TestCollector_SessionMetrics(t *testing.T) {
	collector := NewCollector()

	collector.SessionStarted()
	collector.SessionStarted()
	collector.SessionCompleted(250 * time.Millisecond)

	if got := collector.GetSessionsStarted(); got != 2 {
		t.Errorf("Expected 2 sessions started, got %d", got)
	}
	if got := collector.GetSessionsCompleted(); got != 1 {
		t.Errorf("Expected 1 session completed, got %d", got)
	}
	if got := collector.GetProcessingTime(); got != 250*time.Millisecond {
		t.Errorf("Expected 250ms processing time, got %v", got)
	}
}

// TestCollector_Concurrent tests concurrent access
func TestCollector_Concurrent(t *testing.T) {
	collector := NewCollector()

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			collector.FrameProcessed(480, 45, 333375)
			collector.KeystreamConsumed(100)
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	if collector.GetFramesProcessed() != 10 {
		t.Error("Expected 10 frames processed")
	}
	if collector.GetKeystreamBytes() != 1000 {
		t.Error("Expected 1000 keystream bytes")
	}
}
