package stage

import "scoreflow/internal/services"

// Disposition classifies how a stage finished.
type Disposition int

const (
	// Ok means the stage produced its real artifact.
	Ok Disposition = iota
	// Degraded means the stage substituted a deterministic fallback after a
	// tolerable failure. Processing continues.
	Degraded
	// Fatal means the request cannot produce a response.
	Fatal
)

// String returns the lowercase disposition label used in logs.
func (d Disposition) String() string {
	switch d {
	case Ok:
		return "ok"
	case Degraded:
		return "degraded"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Outcome captures a stage's disposition alongside the underlying error, if
// any. A Degraded outcome carries the error that forced the fallback so the
// log line can name it, but the pipeline treats the stage as succeeded.
type Outcome struct {
	Disposition Disposition
	Err         error
}

// Succeeded reports whether the pipeline should advance past this stage.
func (o Outcome) Succeeded() bool {
	return o.Disposition != Fatal
}

// Classify maps a stage error to its disposition: nil is Ok, tolerable
// external-tool failures are Degraded, everything else is Fatal.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Disposition: Ok}
	case services.Degradable(err):
		return Outcome{Disposition: Degraded, Err: err}
	default:
		return Outcome{Disposition: Fatal, Err: err}
	}
}
