// Package omr wraps the external optical-music-recognition engine behind the
// process contract (inputPath, outputPath) -> exit code. Success is a zero
// exit and an existing output file; everything else is classified so the
// orchestrator can degrade to a placeholder document.
package omr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"scoreflow/internal/config"
	"scoreflow/internal/deps"
	"scoreflow/internal/logging"
	"scoreflow/internal/services"
)

var commandContext = exec.CommandContext

// Engine invokes the configured OMR binary.
type Engine struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewEngine constructs an engine client from configuration.
func NewEngine(cfg *config.Config, logger *slog.Logger) *Engine {
	eng := &Engine{
		binary: cfg.OMRBinary,
		logger: logging.NewComponentLogger(logger, "omr"),
	}
	eng.timeout = cfg.OMRTimeoutDuration()
	return eng
}

// Available reports whether the engine binary resolves to an executable.
func (e *Engine) Available() bool {
	return deps.Available(e.binary)
}

// Convert runs the engine against inputPath so that outputPath contains a
// notation document afterwards. Every engine-side failure mode (missing
// binary, non-zero exit, timeout, missing output) returns an error that
// services.Degradable classifies as absorbable.
func (e *Engine) Convert(ctx context.Context, inputPath, outputPath string) error {
	if strings.TrimSpace(inputPath) == "" || strings.TrimSpace(outputPath) == "" {
		return services.Wrap(services.ErrConfiguration, "conversion", "convert", "input and output paths required", nil)
	}
	if !e.Available() {
		return services.Wrap(services.ErrUnavailable, "conversion", "convert",
			fmt.Sprintf("omr binary %q not found", e.binary), nil)
	}

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	started := time.Now()
	cmd := commandContext(runCtx, e.binary, inputPath, outputPath) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "conversion", "convert",
				fmt.Sprintf("omr engine exceeded %s", e.timeout), runCtx.Err())
		}
		detail := strings.TrimSpace(string(output))
		return services.Wrap(services.ErrExternalTool, "conversion", "convert", detail, err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "conversion", "convert",
			"engine exited cleanly but produced no output file", err)
	}

	e.logger.Debug("omr conversion complete",
		logging.String("input", inputPath),
		logging.String("output", outputPath),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}
