package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// capture redirects console output for one test.
func capture(t *testing.T, verbose bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verbose)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
		_ = Close()
		now = time.Now
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	if IsVerbose() {
		t.Fatal("expected quiet by default")
	}
	SetVerbose(true)
	if !IsVerbose() {
		t.Fatal("expected verbose after SetVerbose(true)")
	}
}

func TestConsoleOutput(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		log     func()
		want    string
	}{
		{"debug verbose", true, func() { Debug("fetched page %d", 2) }, "[DEBUG] fetched page 2\n"},
		{"debug quiet", false, func() { Debug("fetched page %d", 2) }, ""},
		{"info verbose", true, func() { Info("Plan: %d creates", 3) }, "[INFO] Plan: 3 creates\n"},
		{"info quiet", false, func() { Info("Plan: %d creates", 3) }, ""},
		{"section verbose", true, func() { Section("Sync run-1") }, "\n=== Sync run-1 ===\n"},
		{"section quiet", false, func() { Section("Sync run-1") }, ""},
		{"warn verbose", true, func() { Warn("row %s has no term", "A") }, "[WARN] row A has no term\n"},
		{"warn quiet", false, func() { Warn("row %s has no term", "A") }, "[WARN] row A has no term\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, tt.verbose)
			tt.log()
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetFile_MirrorsEveryLevel(t *testing.T) {
	buf := capture(t, false)
	now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }

	path := filepath.Join(t.TempDir(), "logs", "lexisync.log")
	if err := SetFile(path, 1); err != nil {
		t.Fatalf("SetFile: %v", err)
	}

	Debug("hidden %d", 1)
	Warn("shown")
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	want := "2024-05-01T09:00:00Z [DEBUG] hidden 1\n2024-05-01T09:00:00Z [WARN] shown\n"
	if string(data) != want {
		t.Errorf("file content %q, want %q", string(data), want)
	}
	if buf.String() != "[WARN] shown\n" {
		t.Errorf("console output %q", buf.String())
	}
}

func TestSetFile_EmptyPathStopsFileLogging(t *testing.T) {
	capture(t, false)

	path := filepath.Join(t.TempDir(), "lexisync.log")
	if err := SetFile(path, 0); err != nil {
		t.Fatalf("SetFile: %v", err)
	}
	Warn("first")
	if err := SetFile("", 0); err != nil {
		t.Fatalf("SetFile empty: %v", err)
	}
	Warn("second")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if bytes.Contains(data, []byte("second")) {
		t.Errorf("message written after file logging stopped: %q", string(data))
	}
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, false)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			SetVerbose(n%2 == 0)
			Debug("concurrent %d", n)
			Warn("concurrent %d", n)
			_ = IsVerbose()
		}(i)
	}
	wg.Wait()
}
