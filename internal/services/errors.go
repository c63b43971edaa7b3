package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool marks failures of the OMR or render engine processes.
	ErrExternalTool = errors.New("external tool error")
	// ErrUnavailable marks an external engine that is not installed or not executable.
	ErrUnavailable = errors.New("engine unavailable")
	// ErrTimeout marks an external invocation that exceeded its bound.
	ErrTimeout = errors.New("timeout")
	// ErrValidation marks a malformed or incomplete caller request.
	ErrValidation = errors.New("validation error")
	// ErrWorkspace marks scratch-storage failures; these are always fatal.
	ErrWorkspace = errors.New("workspace error")
	// ErrMalformedDocument marks a structurally invalid notation document.
	ErrMalformedDocument = errors.New("malformed notation document")
	// ErrConfiguration marks invalid or missing configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Degradable reports whether an engine failure should be absorbed into the
// placeholder fallback rather than surfaced to the caller. Everything an
// external engine can do wrong degrades; only storage failures stay fatal.
func Degradable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrExternalTool) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrTimeout)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
