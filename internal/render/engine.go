package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"scoreflow/internal/deps"
	"scoreflow/internal/services"
)

var commandContext = exec.CommandContext

// Engine invokes the external score-rendering binary with the process
// contract (inputDocumentPath, outputImagePath) -> exit code. Success is a
// zero exit and an existing output file.
type Engine struct {
	binary  string
	timeout time.Duration
}

// NewEngine constructs an engine client for the given binary and per-call bound.
func NewEngine(binary string, timeout time.Duration) *Engine {
	return &Engine{binary: binary, timeout: timeout}
}

// Available reports whether the engine binary resolves to an executable.
func (e *Engine) Available() bool {
	return deps.Available(e.binary)
}

// Render produces an image for the given notation document. All engine-side
// failures classify as absorbable so a group can degrade to a placeholder.
func (e *Engine) Render(ctx context.Context, documentPath, imagePath string) error {
	if strings.TrimSpace(documentPath) == "" || strings.TrimSpace(imagePath) == "" {
		return services.Wrap(services.ErrConfiguration, "render", "render", "document and image paths required", nil)
	}
	if !e.Available() {
		return services.Wrap(services.ErrUnavailable, "render", "render",
			fmt.Sprintf("render binary %q not found", e.binary), nil)
	}

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := commandContext(runCtx, e.binary, documentPath, imagePath) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "render", "render",
				fmt.Sprintf("render engine exceeded %s", e.timeout), runCtx.Err())
		}
		detail := strings.TrimSpace(string(output))
		return services.Wrap(services.ErrExternalTool, "render", "render", detail, err)
	}

	if _, err := os.Stat(imagePath); err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "render",
			"engine exited cleanly but produced no image file", err)
	}
	return nil
}
