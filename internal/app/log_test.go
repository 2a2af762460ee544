package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCTHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		runID   string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			runID:   "run-123",
			level:   slog.LevelInfo,
			message: "archive created",
			want:    "2024-06-15T14:30:45Z\tINFO\trun-123\tarchive created\n",
		},
		{
			name:    "debug level",
			runID:   "run-456",
			level:   slog.LevelDebug,
			message: "ignoring entry",
			want:    "2024-06-15T14:30:45Z\tDEBUG\trun-456\tignoring entry\n",
		},
		{
			name:    "with record attrs",
			runID:   "run-789",
			level:   slog.LevelInfo,
			message: "extracting archive",
			attrs:   []slog.Attr{slog.String("path", "/docs/a.tar.gz.age"), slog.Int("items", 2)},
			want:    "2024-06-15T14:30:45Z\tINFO\trun-789\textracting archive\tpath=/docs/a.tar.gz.age\titems=2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := newCTHandler(&buf, slog.LevelDebug, tt.runID)

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestCTHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := newCTHandler(&buf, slog.LevelDebug, "run-1")

	// Add pre-set attrs
	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "archive")}).(*ctHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "creating archive", 0)
	r.AddAttrs(slog.String("key", "abc"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=archive") {
		t.Errorf("expected pre-set attr component=archive, got: %q", got)
	}
	if !strings.Contains(got, "key=abc") {
		t.Errorf("expected record attr key=abc, got: %q", got)
	}
}

func TestCTHandler_WithAttrs_doesNotMutateOriginal(t *testing.T) {
	var buf bytes.Buffer
	h := newCTHandler(&buf, slog.LevelDebug, "run-1")
	h.attrs = []slog.Attr{slog.String("a", "1")}

	h2 := h.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*ctHandler)

	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}
	if len(h2.attrs) != 2 {
		t.Errorf("new handler attrs: got %d, want 2", len(h2.attrs))
	}
}

func TestCTHandler_Enabled(t *testing.T) {
	tests := []struct {
		name  string
		min   slog.Level
		level slog.Level
		want  bool
	}{
		{name: "debug at debug", min: slog.LevelDebug, level: slog.LevelDebug, want: true},
		{name: "error at debug", min: slog.LevelDebug, level: slog.LevelError, want: true},
		{name: "debug at info", min: slog.LevelInfo, level: slog.LevelDebug, want: false},
		{name: "warn at info", min: slog.LevelInfo, level: slog.LevelWarn, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newCTHandler(io.Discard, tt.min, "run")
			if got := h.Enabled(context.Background(), tt.level); got != tt.want {
				t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("quiet writes only to the file", func(t *testing.T) {
		dir := t.TempDir()
		var stderr bytes.Buffer

		logger, f, err := newLogger(dir, "run-quiet", false, &stderr)
		if err != nil {
			t.Fatalf("newLogger() error = %v", err)
		}
		logger.Info("archive created", "path", "a.tar.gz.age")
		logger.Debug("noise")
		f.Close()

		if stderr.Len() != 0 {
			t.Errorf("stderr = %q, want nothing", stderr.String())
		}
		data, err := os.ReadFile(filepath.Join(dir, "ct.log"))
		if err != nil {
			t.Fatalf("reading log file: %v", err)
		}
		if !strings.Contains(string(data), "\tINFO\trun-quiet\tarchive created\tpath=a.tar.gz.age\n") {
			t.Errorf("log file = %q", data)
		}
		if strings.Contains(string(data), "noise") {
			t.Errorf("debug record written without verbose: %q", data)
		}
	})

	t.Run("verbose mirrors to stderr", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "log")
		var stderr bytes.Buffer

		logger, f, err := newLogger(dir, "run-loud", true, &stderr)
		if err != nil {
			t.Fatalf("newLogger() error = %v", err)
		}
		defer f.Close()
		logger.Debug("details")

		if !strings.Contains(stderr.String(), "\tDEBUG\trun-loud\tdetails\n") {
			t.Errorf("stderr = %q, want the debug record", stderr.String())
		}
	})
}
