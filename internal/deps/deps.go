// Package deps reports availability of the external engines scoreflow drives.
// Both engines are optional: a missing binary degrades the pipeline to
// placeholder output instead of failing requests.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"scoreflow/internal/config"
)

// Requirement defines an external binary the pipeline can invoke.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Engines returns the external engine requirements for the given config.
func Engines(cfg *config.Config) []Requirement {
	var omrBinary, renderBinary string
	if cfg != nil {
		omrBinary = cfg.OMRBinary
		renderBinary = cfg.RenderBinary
	}
	return []Requirement{
		{
			Name:        "omr",
			Command:     omrBinary,
			Description: "optical music recognition engine",
			Optional:    true,
		},
		{
			Name:        "render",
			Command:     renderBinary,
			Description: "score rendering engine",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Available reports whether a single command resolves to an executable.
func Available(command string) bool {
	command = strings.TrimSpace(command)
	if command == "" {
		return false
	}
	_, err := exec.LookPath(command)
	return err == nil
}
