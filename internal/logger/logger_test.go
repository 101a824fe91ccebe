package logger

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConsoleHandler_Structural(t *testing.T) {
	var buf bytes.Buffer
	opts := &slog.HandlerOptions{Level: LevelDebug}
	l := slog.New(NewConsoleHandler(&buf, opts, false))

	t.Run("WithAttrs", func(t *testing.T) {
		buf.Reset()
		l.With("launch_id", "abc-123").Info("launch dispatched", "target", "a.dby")

		output := buf.String()
		if !strings.Contains(output, "launch_id=abc-123") {
			t.Errorf("output missing persistent attr: %q", output)
		}
		if !strings.Contains(output, "target=a.dby") {
			t.Errorf("output missing record attr: %q", output)
		}
		if !strings.Contains(output, "\tINFO \tlaunch dispatched") {
			t.Errorf("output missing tab separated level/message: %q", output)
		}
	})

	t.Run("WithGroup", func(t *testing.T) {
		buf.Reset()
		l.WithGroup("catalog").With("root", "/data").Info("scan", "entries", 2)

		output := buf.String()
		if !strings.Contains(output, "catalog.root=/data") {
			t.Errorf("output missing grouped persistent attr: %q", output)
		}
		if !strings.Contains(output, "catalog.entries=2") {
			t.Errorf("output missing grouped record attr: %q", output)
		}
	})

	t.Run("AttrsBeforeGroupStayUngrouped", func(t *testing.T) {
		buf.Reset()
		l.With("outer", 1).WithGroup("g").Info("msg", "inner", 2)

		output := buf.String()
		if !strings.Contains(output, " outer=1") || !strings.Contains(output, "g.inner=2") {
			t.Errorf("unexpected grouping: %q", output)
		}
	})

	t.Run("LevelFilter", func(t *testing.T) {
		buf.Reset()
		quiet := slog.New(NewConsoleHandler(&buf, &slog.HandlerOptions{Level: LevelWarn}, false))
		quiet.Info("hidden")
		if buf.Len() != 0 {
			t.Errorf("info record should be filtered: %q", buf.String())
		}
	})
}

func TestRedactAttr(t *testing.T) {
	t.Run("KeyBasedRedaction", func(t *testing.T) {
		got := RedactAttr(nil, slog.String("password", "hunter2"))
		if got.Value.String() != "[REDACTED]" {
			t.Fatalf("expected redaction, got %q", got.Value.String())
		}
	})

	t.Run("ValuePatternRedaction", func(t *testing.T) {
		got := RedactAttr(nil, slog.String("args", "--password=hunter2"))
		if got.Value.String() != "[REDACTED]" {
			t.Fatalf("expected redaction, got %q", got.Value.String())
		}
	})

	t.Run("PathValuesAreNotRedacted", func(t *testing.T) {
		for _, key := range []string{"path", "target", "executable", "root", "backup"} {
			value := "/data/files/secret: plans.dby"
			got := RedactAttr(nil, slog.String(key, value))
			if got.Value.String() != value {
				t.Fatalf("%s: unexpected redaction: %q", key, got.Value.String())
			}
		}
		if got := RedactAttr(nil, slog.String("args", "secret: plans")); got.Value.String() != "[REDACTED]" {
			t.Fatalf("non-path values must still be checked, got %q", got.Value.String())
		}
	})

	t.Run("SettingKeysAreNotRedacted", func(t *testing.T) {
		got := RedactAttr(nil, slog.String("setting", "executable_path"))
		if got.Value.String() != "executable_path" {
			t.Fatalf("unexpected redaction: %q", got.Value.String())
		}
	})
}

func TestFileName(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	got := FileName("logs", "0.6.0", `CORP\alice`, now)
	want := filepath.Join("logs", "2026.10.17_0.6.0_CORP_alice.log")
	if got != want {
		t.Fatalf("FileName() = %q, want %q", got, want)
	}
	if got := FileName("logs", "", "", now); got != filepath.Join("logs", "2026.10.17.log") {
		t.Fatalf("FileName() without identity = %q", got)
	}
}

func TestInit_WritesJSONToLogFile(t *testing.T) {
	prevIsTerminal := isTerminal
	isTerminal = func(_ int) bool { return false }
	defer func() { isTerminal = prevIsTerminal }()

	prevStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	defer func() { os.Stderr = prevStderr }()

	var logBuf bytes.Buffer
	Init(LevelInfo, &logBuf)
	defer Init(LevelInfo, nil)
	Info("catalog scanned", "entries", 3)

	_ = w.Close()
	out, _ := io.ReadAll(r)
	if strings.Contains(string(out), "\033[") {
		t.Fatalf("unexpected ANSI codes in output: %q", string(out))
	}

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(logBuf.Bytes()), &rec); err != nil {
		t.Fatalf("log file is not JSON: %v (%q)", err, logBuf.String())
	}
	if rec["msg"] != "catalog scanned" || rec["entries"] != float64(3) {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestConsoleHandler_NoColorWhenNotTTY(t *testing.T) {
	prevIsTerminal := isTerminal
	isTerminal = func(_ int) bool { return false }
	defer func() { isTerminal = prevIsTerminal }()

	prevStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	defer func() { os.Stderr = prevStderr }()

	Init(LevelInfo, nil)
	Info("test message", "path", "/tmp/x")

	_ = w.Close()
	out, _ := io.ReadAll(r)
	if strings.Contains(string(out), "\033[") {
		t.Fatalf("unexpected ANSI codes in output: %q", string(out))
	}
}
