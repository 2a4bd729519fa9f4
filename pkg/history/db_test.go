package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ghostlink/ghostlink/pkg/logger"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Output: os.Stderr})
	db, err := NewDB(Config{Path: filepath.Join(t.TempDir(), "test.db")}, log)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionCreateAndFinish(t *testing.T) {
	repo := NewSessionRepository(testDB(t))

	s := &Session{
		Tool:           "scramble",
		InputPath:      "in.anlg",
		OutputPath:     "out.anlg",
		Standard:       "NTSC",
		Segments:       16,
		Permutation:    true,
		Inversion:      true,
		Shift:          true,
		Backend:        "chacha20",
		KeyFingerprint: "deadbeef",
		StreamID:       7,
	}
	if err := repo.Create(s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.ID == 0 {
		t.Fatal("expected session ID to be assigned")
	}
	if s.Completed {
		t.Error("new session should not be completed")
	}

	time.Sleep(10 * time.Millisecond)
	if err := repo.Finish(s, 30); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	got, err := repo.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 session, got %d", len(got))
	}
	if !got[0].Completed {
		t.Error("session should be completed")
	}
	if got[0].Frames != 30 {
		t.Errorf("frames = %d, want 30", got[0].Frames)
	}
	if got[0].DurationMS <= 0 {
		t.Errorf("duration = %d, want > 0", got[0].DurationMS)
	}
}

func TestSessionRecentOrder(t *testing.T) {
	repo := NewSessionRepository(testDB(t))

	for i := 0; i < 3; i++ {
		s := &Session{Tool: "scramble", KeyFingerprint: "aa"}
		if err := repo.Create(s); err != nil {
			t.Fatalf("Create: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	got, err := repo.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(got))
	}
	if !got[0].StartedAt.After(got[1].StartedAt) {
		t.Error("sessions not ordered newest first")
	}
}

func TestSessionByFingerprint(t *testing.T) {
	repo := NewSessionRepository(testDB(t))

	for _, fp := range []string{"aaaa", "bbbb", "aaaa"} {
		if err := repo.Create(&Session{Tool: "descramble", KeyFingerprint: fp}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.ByFingerprint("aaaa", 10)
	if err != nil {
		t.Fatalf("ByFingerprint: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 sessions for fingerprint, got %d", len(got))
	}
}
