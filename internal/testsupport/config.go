package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"scoreflow/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options. The engine
// binaries keep names that are never on PATH so tests exercise the degraded
// path unless they stub engines explicitly.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.ScratchRoot = filepath.Join(base, "scratch")
	cfgVal.LogDir = filepath.Join(base, "logs")
	cfgVal.APIBind = "127.0.0.1:0"
	cfgVal.APIToken = "test-token"
	cfgVal.OMRBinary = "scoreflow-test-omr"
	cfgVal.RenderBinary = "scoreflow-test-render"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithToken overrides the API bearer token on the test config.
func WithToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.APIToken = token
	}
}

// WithStubbedEngines writes always-succeed stubs for the configured engine
// binaries and prepends them to PATH for the duration of the test. The stubs
// copy their input to their output, which is enough to satisfy the engines'
// success contract.
func WithStubbedEngines() ConfigOption {
	return func(b *configBuilder) {
		script := "#!/bin/sh\ncp \"$1\" \"$2\"\n"
		StubBinary(b.t, b.cfg.OMRBinary, script)
		StubBinary(b.t, b.cfg.RenderBinary, script)
	}
}

// StubBinary writes an executable shell script under a temp bin directory and
// prepends that directory to PATH. Tests use it to impersonate the external
// engines with scripted behavior.
func StubBinary(t testing.TB, name, script string) string {
	t.Helper()

	binDir := filepath.Join(t.TempDir(), "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}

	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.ScratchRoot)
}
