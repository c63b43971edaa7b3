package config

import "strings"

// normalize expands user paths and trims string fields so validation and
// consumers see canonical values.
func (c *Config) normalize() error {
	var err error
	if c.ScratchRoot, err = expandPath(strings.TrimSpace(c.ScratchRoot)); err != nil {
		return err
	}
	if c.LogDir, err = expandPath(strings.TrimSpace(c.LogDir)); err != nil {
		return err
	}

	c.APIBind = strings.TrimSpace(c.APIBind)
	c.APIToken = strings.TrimSpace(c.APIToken)
	c.OMRBinary = strings.TrimSpace(c.OMRBinary)
	c.RenderBinary = strings.TrimSpace(c.RenderBinary)
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	if c.OMRTimeout <= 0 {
		c.OMRTimeout = defaultOMRTimeout
	}
	if c.RenderTimeout <= 0 {
		c.RenderTimeout = defaultRenderTimeout
	}
	if c.RenderConcurrency <= 0 {
		c.RenderConcurrency = defaultRenderConcurrency
	}
	if c.CleanupGraceSeconds <= 0 {
		c.CleanupGraceSeconds = defaultCleanupGraceSeconds
	}
	if c.CleanupSweepSeconds <= 0 {
		c.CleanupSweepSeconds = defaultCleanupSweepSeconds
	}
	if c.CleanupMaxAgeSeconds <= 0 {
		c.CleanupMaxAgeSeconds = defaultCleanupMaxAgeSeconds
	}
	if c.DefaultMeasureCount <= 0 {
		c.DefaultMeasureCount = defaultMeasureCount
	}
	if c.LogFormat == "" {
		c.LogFormat = defaultLogFormat
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	return nil
}
