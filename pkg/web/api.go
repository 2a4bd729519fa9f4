package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ghostlink/ghostlink/pkg/history"
	"github.com/ghostlink/ghostlink/pkg/logger"
	"github.com/ghostlink/ghostlink/pkg/metrics"
)

// SessionStore is the read side of the session history exposed by the
// monitor
type SessionStore interface {
	Recent(limit int) ([]history.Session, error)
	ByFingerprint(fp string, limit int) ([]history.Session, error)
}

// RunState describes the run currently being monitored
type RunState struct {
	Tool      string    `json:"tool"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Standard  string    `json:"standard"`
	Frame     int       `json:"frame"`
	Frames    int       `json:"frames"`
	StartedAt time.Time `json:"started_at"`
	Running   bool      `json:"running"`
}

// API handles REST API endpoints
type API struct {
	logger    *logger.Logger
	collector *metrics.Collector

	mu       sync.RWMutex
	state    RunState
	sessions SessionStore
}

// NewAPI creates a new API instance
func NewAPI(log *logger.Logger, collector *metrics.Collector) *API {
	return &API{
		logger:    log,
		collector: collector,
	}
}

// SetSessionStore attaches the history ledger the /api/sessions
// endpoint reads from
func (a *API) SetSessionStore(store SessionStore) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions = store
}

// SetRun records the run the monitor is tracking
func (a *API) SetRun(state RunState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = state
}

// UpdateProgress advances the tracked run's frame counter
func (a *API) UpdateProgress(frame int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Frame = frame
}

// FinishRun marks the tracked run as stopped
func (a *API) FinishRun() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Running = false
}

// HandleStatus handles the /api/status endpoint
func (a *API) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	a.mu.RLock()
	state := a.state
	a.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]interface{}{
		"service": "ghostlink",
		"run":     state,
	}

	json.NewEncoder(w).Encode(response)
}

// HandleStats handles the /api/stats endpoint
func (a *API) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	stats := map[string]interface{}{
		"frames_processed":  a.collector.GetFramesProcessed(),
		"frames_failed":     a.collector.GetFramesFailed(),
		"lines_scrambled":   a.collector.GetLinesScrambled(),
		"lines_passed":      a.collector.GetLinesPassed(),
		"samples_processed": a.collector.GetSamplesProcessed(),
		"keystream_bytes":   a.collector.GetKeystreamBytes(),
	}

	json.NewEncoder(w).Encode(stats)
}

// HandleSessions handles the /api/sessions endpoint. Optional query
// parameters: limit (default 20) and fingerprint (filter by key
// fingerprint).
func (a *API) HandleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	a.mu.RLock()
	store := a.sessions
	a.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")

	if store == nil {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode([]history.Session{})
		return
	}

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	var (
		sessions []history.Session
		err      error
	)
	if fp := r.URL.Query().Get("fingerprint"); fp != "" {
		sessions, err = store.ByFingerprint(fp, limit)
	} else {
		sessions, err = store.Recent(limit)
	}
	if err != nil {
		a.logger.Warn("Failed to query session history", logger.Error(err))
		http.Error(w, "session query failed", http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []history.Session{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(sessions)
}
