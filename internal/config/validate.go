package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values the daemon cannot run without.
func (c *Config) Validate() error {
	var problems []string

	if c.ScratchRoot == "" {
		problems = append(problems, "scratch_root must be set")
	}
	if c.LogDir == "" {
		problems = append(problems, "log_dir must be set")
	}
	if c.APIBind == "" {
		problems = append(problems, "api_bind must be set")
	}
	if c.APIToken == "" {
		problems = append(problems, "api_token must be set; /process-score is bearer-token authenticated")
	}
	if c.ScratchRoot != "" && c.ScratchRoot == c.LogDir {
		problems = append(problems, "scratch_root and log_dir must differ; the reaper removes everything under scratch_root")
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("log_format: unsupported value %q", c.LogFormat))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
