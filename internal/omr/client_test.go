package omr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"scoreflow/internal/logging"
	"scoreflow/internal/services"
	"scoreflow/internal/testsupport"
)

func newTestEngine(t *testing.T, binary string, timeout time.Duration) *Engine {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.OMRBinary = binary
	cfg.OMRTimeout = int(timeout / time.Second)
	return NewEngine(cfg, logging.NewNop())
}

func TestConvertMissingBinaryIsDegradable(t *testing.T) {
	eng := newTestEngine(t, "no-such-omr-binary", time.Minute)
	err := eng.Convert(context.Background(), "/tmp/in.pdf", "/tmp/out.musicxml")
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !services.Degradable(err) {
		t.Error("missing binary must be absorbable")
	}
}

func TestConvertSuccess(t *testing.T) {
	dir := t.TempDir()
	testsupport.StubBinary(t, "stub-omr", "#!/bin/sh\ncp \"$1\" \"$2\"\n")

	input := filepath.Join(dir, "in.pdf")
	output := filepath.Join(dir, "out.musicxml")
	testsupport.WriteFile(t, input, 2048)

	eng := newTestEngine(t, "stub-omr", time.Minute)
	if err := eng.Convert(context.Background(), input, output); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestConvertNonZeroExit(t *testing.T) {
	testsupport.StubBinary(t, "stub-omr-fail", "#!/bin/sh\necho boom >&2\nexit 3\n")

	eng := newTestEngine(t, "stub-omr-fail", time.Minute)
	err := eng.Convert(context.Background(), "/tmp/in.pdf", "/tmp/never.musicxml")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if !services.Degradable(err) {
		t.Error("non-zero exit must be absorbable")
	}
}

func TestConvertMissingOutputFile(t *testing.T) {
	dir := t.TempDir()
	testsupport.StubBinary(t, "stub-omr-noop", "#!/bin/sh\nexit 0\n")

	eng := newTestEngine(t, "stub-omr-noop", time.Minute)
	err := eng.Convert(context.Background(), filepath.Join(dir, "in.pdf"), filepath.Join(dir, "out.musicxml"))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool for missing output, got %v", err)
	}
}

func TestConvertTimeout(t *testing.T) {
	testsupport.StubBinary(t, "stub-omr-slow", "#!/bin/sh\nsleep 5\n")

	eng := newTestEngine(t, "stub-omr-slow", time.Second)
	err := eng.Convert(context.Background(), "/tmp/in.pdf", "/tmp/out.musicxml")
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if !services.Degradable(err) {
		t.Error("timeout must be absorbable, identical to process failure")
	}
}
