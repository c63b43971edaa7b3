package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scoreflow/internal/config"
	"scoreflow/internal/daemon"
	"scoreflow/internal/logging"
	"scoreflow/internal/sessions"
	"scoreflow/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	daemon     *daemon.Daemon
	address    string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	store, err := sessions.Open(cfg)
	if err != nil {
		t.Fatalf("sessions.Open: %v", err)
	}

	d, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	t.Cleanup(func() {
		cancel()
		_ = d.Close()
	})

	return &cliTestEnv{
		cfg:        cfg,
		daemon:     d,
		address:    d.Addr(),
		configPath: configPath,
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"scratch_root = %q\nlog_dir = %q\napi_bind = %q\napi_token = %q\n",
		cfg.ScratchRoot,
		cfg.LogDir,
		cfg.APIBind,
		cfg.APIToken,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, env *cliTestEnv) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--config", env.configPath, "--address", env.address}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output missing %q:\n%s", want, output)
	}
}

func TestCLIHealthCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"health"}, env)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	requireContains(t, out, "Status:        ok")
	requireContains(t, out, "unavailable (placeholder output)")
}

func TestCLIProcessAndSessionsCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	scorePath := filepath.Join(t.TempDir(), "etude.pdf")
	if err := os.WriteFile(scorePath, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatalf("write score: %v", err)
	}
	outputDir := filepath.Join(t.TempDir(), "previews")

	out, _, err := runCLI(t, []string{"process", scorePath, "--output-dir", outputDir}, env)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	requireContains(t, out, "Measures:  1 in 1 groups")
	requireContains(t, out, "Saved:")

	if _, err := os.Stat(filepath.Join(outputDir, "etude.musicxml")); err != nil {
		t.Errorf("notation document not saved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "etude-measures-1-1.png")); err != nil {
		t.Errorf("preview image not saved: %v", err)
	}

	out, _, err = runCLI(t, []string{"sessions"}, env)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	requireContains(t, out, "etude")
	requireContains(t, out, "assembled")
}

func TestCLIConfigInit(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, env)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// Refuses to clobber without --overwrite.
	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, env)
	if err == nil {
		t.Fatal("expected error for existing config file")
	}
}
