package logger

import (
	"bytes"
	"os"
	"testing"
)

// reset restores package state after a test.
func reset(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
}

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	reset(t)
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)
	return &buf
}

func TestSetVerbose(t *testing.T) {
	reset(t)

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose off")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose on after SetVerbose(true)")
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose off after SetVerbose(false)")
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := capture(t)

	Debug("ingesting %s", "notes.md")

	if got := buf.String(); got != "[DEBUG] ingesting notes.md\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	reset(t)

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("should be silent")

	if buf.Len() > 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestSection(t *testing.T) {
	buf := capture(t)

	Section("Query")

	if got := buf.String(); got != "\n=== Query ===\n" {
		t.Errorf("unexpected section output: %q", got)
	}
}

func TestInfo(t *testing.T) {
	buf := capture(t)

	Info("indexed %d chunks", 7)

	if got := buf.String(); got != "[INFO] indexed 7 chunks\n" {
		t.Errorf("unexpected info output: %q", got)
	}
}

func TestWarn(t *testing.T) {
	buf := capture(t)

	Warn("embedding provider unreachable")

	if got := buf.String(); got != "[WARN] embedding provider unreachable\n" {
		t.Errorf("unexpected warn output: %q", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	reset(t)

	var buf bytes.Buffer
	SetOutput(&buf)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(n int) {
			SetVerbose(true)
			Debug("worker %d", n)
			IsVerbose()
			SetVerbose(false)
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
