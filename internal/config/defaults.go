package config

const (
	defaultScratchRoot          = "~/.local/share/scoreflow/scratch"
	defaultLogDir               = "~/.local/share/scoreflow/logs"
	defaultAPIBind              = "127.0.0.1:8787"
	defaultOMRBinary            = "audiveris"
	defaultOMRTimeout           = 120
	defaultRenderBinary         = "verovio"
	defaultRenderTimeout        = 30
	defaultRenderConcurrency    = 2
	defaultCleanupGraceSeconds  = 60
	defaultCleanupSweepSeconds  = 30
	defaultCleanupMaxAgeSeconds = 600
	defaultMeasureCount         = 8
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		ScratchRoot:          defaultScratchRoot,
		LogDir:               defaultLogDir,
		APIBind:              defaultAPIBind,
		OMRBinary:            defaultOMRBinary,
		OMRTimeout:           defaultOMRTimeout,
		RenderBinary:         defaultRenderBinary,
		RenderTimeout:        defaultRenderTimeout,
		RenderConcurrency:    defaultRenderConcurrency,
		CleanupGraceSeconds:  defaultCleanupGraceSeconds,
		CleanupSweepSeconds:  defaultCleanupSweepSeconds,
		CleanupMaxAgeSeconds: defaultCleanupMaxAgeSeconds,
		DefaultMeasureCount:  defaultMeasureCount,
		LogFormat:            defaultLogFormat,
		LogLevel:             defaultLogLevel,
	}
}
