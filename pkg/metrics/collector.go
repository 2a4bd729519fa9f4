// Package metrics collects processing counters and exposes them in
// Prometheus text format.
package metrics

import (
	"sync"
	"time"
)

// Collector collects scrambling pipeline metrics
type Collector struct {
	mu sync.RWMutex

	// Frame metrics
	framesProcessed uint64
	framesFailed    uint64

	// Line metrics
	linesScrambled uint64
	linesPassed    uint64 // vertical blanking lines copied untouched

	// Sample metrics
	samplesProcessed uint64

	// Keystream metrics
	keystreamBytes uint64

	// Session metrics
	sessionsStarted   uint64
	sessionsCompleted uint64

	processingTime time.Duration
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{}
}

// FrameProcessed records one completed frame and its active/blanking line split
func (c *Collector) FrameProcessed(activeLines, blankingLines, samples int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.framesProcessed++
	c.linesScrambled += uint64(activeLines)
	c.linesPassed += uint64(blankingLines)
	c.samplesProcessed += uint64(samples)
}

// FrameFailed records a frame that could not be processed
func (c *Collector) FrameFailed() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.framesFailed++
}

// KeystreamConsumed records bytes drawn from the keystream
func (c *Collector) KeystreamConsumed(bytes int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.keystreamBytes += uint64(bytes)
}

// SessionStarted records the start of a scramble or descramble run
func (c *Collector) SessionStarted() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessionsStarted++
}

// SessionCompleted records a run that finished and its wall-clock duration
func (c *Collector) SessionCompleted(elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessionsCompleted++
	c.processingTime += elapsed
}

// Getters for metrics

// GetFramesProcessed returns total frames processed
func (c *Collector) GetFramesProcessed() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.framesProcessed
}

// GetFramesFailed returns total frames that failed
func (c *Collector) GetFramesFailed() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.framesFailed
}

// GetLinesScrambled returns total active lines transformed
func (c *Collector) GetLinesScrambled() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.linesScrambled
}

// GetLinesPassed returns total blanking lines passed through
func (c *Collector) GetLinesPassed() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.linesPassed
}

// GetSamplesProcessed returns total samples processed
func (c *Collector) GetSamplesProcessed() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.samplesProcessed
}

// GetKeystreamBytes returns total keystream bytes consumed
func (c *Collector) GetKeystreamBytes() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.keystreamBytes
}

// GetSessionsStarted returns total sessions started
func (c *Collector) GetSessionsStarted() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionsStarted
}

// GetSessionsCompleted returns total sessions completed
func (c *Collector) GetSessionsCompleted() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionsCompleted
}

// GetProcessingTime returns cumulative processing time across sessions
func (c *Collector) GetProcessingTime() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.processingTime
}
