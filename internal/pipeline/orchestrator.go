package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"scoreflow/internal/config"
	"scoreflow/internal/fileutil"
	"scoreflow/internal/logging"
	"scoreflow/internal/notation"
	"scoreflow/internal/omr"
	"scoreflow/internal/render"
	"scoreflow/internal/services"
	"scoreflow/internal/sessions"
	"scoreflow/internal/stage"
	"scoreflow/internal/workspace"
)

const (
	inputFileName    = "input"
	documentFileName = "score.musicxml"
)

// Request carries one upload through the pipeline.
type Request struct {
	ScoreID  string
	FileName string
	FileType string
	Data     []byte
}

// Result is the assembled outcome of a successful session. Degraded stages
// still produce a Result; only fatal failures return an error instead.
type Result struct {
	SessionID        string
	ScoreID          string
	NotationDocument string
	Metadata         notation.Metadata
	Images           []render.Image
}

// SessionError is a fatal failure that happened after a session identity
// already existed. It carries the id so failure reports can name the
// session whose artifacts were abandoned.
type SessionError struct {
	SessionID string
	Err       error
}

func (e *SessionError) Error() string { return e.Err.Error() }

func (e *SessionError) Unwrap() error { return e.Err }

// Orchestrator sequences the processing stages for each session: workspace
// acquisition, notation conversion, metadata extraction, paged rendering,
// and assembly. Sessions share no mutable state, so Process may run fully
// concurrently across requests.
type Orchestrator struct {
	cfg        *config.Config
	store      *sessions.Store
	workspaces *workspace.Manager
	omr        *omr.Engine
	renderer   *render.Renderer
	logger     *slog.Logger
}

// New constructs an orchestrator with engines built from configuration.
func New(cfg *config.Config, store *sessions.Store, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		store:      store,
		workspaces: workspace.NewManager(cfg),
		omr:        omr.NewEngine(cfg, logger),
		renderer:   render.NewRenderer(cfg, logger),
		logger:     logging.NewComponentLogger(logger, "pipeline"),
	}
}

// EngineHealth reports the readiness of both external engines.
func (o *Orchestrator) EngineHealth() (omrHealth, renderHealth stage.Health) {
	omrHealth = stage.Healthy("omr")
	if !o.omr.Available() {
		omrHealth = stage.Unhealthy("omr", "engine binary not found")
	}
	renderHealth = stage.Healthy("render")
	if !o.renderer.Available() {
		renderHealth = stage.Unhealthy("render", "engine binary not found")
	}
	return omrHealth, renderHealth
}

// Process drives one request through the full stage sequence. It returns an
// error only for fatal conditions (validation, workspace, or an unhandled
// stage failure); every engine-level failure is absorbed into a degraded but
// successful Result. Fatal failures past workspace acquisition come back as
// a *SessionError naming the aborted session. On a fatal abort the workspace
// is released immediately; on success release is scheduled after the
// configured grace window.
func (o *Orchestrator) Process(ctx context.Context, req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	ws, err := o.workspaces.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	ctx = services.WithSessionID(ctx, ws.ID)
	logger := logging.WithContext(ctx, o.logger)
	logger.Info("session started",
		logging.String("score_id", req.ScoreID),
		logging.String("file_type", req.FileType),
		logging.Int("payload_bytes", len(req.Data)),
		logging.String(logging.FieldEventType, "session_started"),
	)

	o.record(ctx, &sessions.Session{
		ID:            ws.ID,
		ScoreID:       req.ScoreID,
		WorkspacePath: ws.Path,
		Status:        sessions.StatusCreated,
	})
	o.advance(ctx, ws.ID, sessions.StatusWorkspacePrepared)

	result, err := o.run(ctx, ws, req, logger)
	if err != nil {
		o.abort(ctx, ws, err, logger)
		return nil, &SessionError{SessionID: ws.ID, Err: err}
	}

	o.advance(ctx, ws.ID, sessions.StatusAssembled)
	o.scheduleRelease(ctx, ws, logger)
	logger.Info("session assembled",
		logging.String("score_id", req.ScoreID),
		logging.Int("measure_groups", len(result.Images)),
		logging.String(logging.FieldEventType, "session_assembled"),
	)
	return result, nil
}

// run executes the stage sequence inside an acquired workspace. Fatal errors
// propagate; degradable ones are resolved to fallbacks in place.
func (o *Orchestrator) run(ctx context.Context, ws *workspace.Workspace, req Request, logger *slog.Logger) (*Result, error) {
	inputPath := ws.File(inputName(req))
	if err := fileutil.WriteFileAtomic(inputPath, req.Data, 0o644); err != nil {
		return nil, services.Wrap(services.ErrWorkspace, "intake", "write upload", "cannot persist uploaded artifact", err)
	}

	documentPath := ws.File(documentFileName)
	if err := o.convert(ctx, inputPath, documentPath, logger); err != nil {
		return nil, err
	}
	o.advance(ctx, ws.ID, sessions.StatusConverted)

	documentBytes, err := os.ReadFile(documentPath)
	if err != nil {
		return nil, services.Wrap(services.ErrWorkspace, "metadata", "read document", "notation document unreadable", err)
	}

	metadata := o.extract(documentBytes, logger)
	o.advance(ctx, ws.ID, sessions.StatusMetadataExtracted)

	images, err := o.renderer.RenderGroups(ctx, documentPath, ws.Path, metadata.MeasureCount)
	if err != nil {
		return nil, fmt.Errorf("render measure groups: %w", err)
	}
	o.advance(ctx, ws.ID, sessions.StatusImagesRendered)

	return &Result{
		SessionID:        ws.ID,
		ScoreID:          req.ScoreID,
		NotationDocument: string(documentBytes),
		Metadata:         metadata,
		Images:           images,
	}, nil
}

// convert produces the session's notation document at documentPath, falling
// back to the deterministic placeholder on any engine-level failure. The only
// error it returns is an inability to write the document at all.
func (o *Orchestrator) convert(ctx context.Context, inputPath, documentPath string, logger *slog.Logger) error {
	err := o.omr.Convert(ctx, inputPath, documentPath)
	outcome := stage.Classify(err)
	switch outcome.Disposition {
	case stage.Ok:
		return nil
	case stage.Degraded:
		logger.Warn("notation conversion degraded to placeholder",
			logging.Error(outcome.Err),
			logging.String(logging.FieldStage, "convert"),
			logging.String(logging.FieldEventType, "conversion_degraded"),
		)
		if writeErr := fileutil.WriteFileAtomic(documentPath, notation.Placeholder(), 0o644); writeErr != nil {
			return services.Wrap(services.ErrWorkspace, "convert", "write placeholder", "cannot write fallback document", writeErr)
		}
		return nil
	default:
		return outcome.Err
	}
}

// extract derives score metadata, substituting the fixed default record when
// the document is structurally invalid. Extraction failure never aborts the
// session.
func (o *Orchestrator) extract(documentBytes []byte, logger *slog.Logger) notation.Metadata {
	metadata, err := notation.Extract(documentBytes)
	if err != nil {
		logger.Warn("metadata extraction degraded to defaults",
			logging.Error(err),
			logging.String(logging.FieldStage, "metadata"),
			logging.String(logging.FieldEventType, "metadata_degraded"),
		)
		return notation.Default(o.cfg.DefaultMeasureCount)
	}
	return metadata
}

// abort handles a fatal stage failure: the workspace is released immediately
// rather than after the grace window, and the ledger row records the error.
func (o *Orchestrator) abort(ctx context.Context, ws *workspace.Workspace, cause error, logger *slog.Logger) {
	logger.Error("session failed",
		logging.Error(cause),
		logging.String(logging.FieldEventType, "session_failed"),
	)
	if err := o.store.SetFailed(ctx, ws.ID, cause.Error()); err != nil {
		logger.Warn("ledger update failed", logging.Error(err))
	}
	if err := ws.Release(); err != nil {
		logger.Warn("immediate workspace release failed", logging.Error(err))
		return
	}
	if err := o.store.MarkReleased(ctx, ws.ID); err != nil {
		logger.Warn("ledger update failed", logging.Error(err))
	}
}

// scheduleRelease stamps the time after which the reaper may reclaim the
// workspace. Removal is never synchronous with the response, so release
// cannot race with the response body still being handed off.
func (o *Orchestrator) scheduleRelease(ctx context.Context, ws *workspace.Workspace, logger *slog.Logger) {
	releaseAfter := time.Now().UTC().Add(o.cfg.CleanupGrace())
	if err := o.store.ScheduleRelease(ctx, ws.ID, releaseAfter); err != nil {
		logger.Warn("failed to schedule workspace release", logging.Error(err))
	}
}

// record inserts the session ledger row. Ledger failures are logged, never
// fatal: the orphan sweep covers workspaces the ledger does not know about.
func (o *Orchestrator) record(ctx context.Context, session *sessions.Session) {
	if err := o.store.Insert(ctx, session); err != nil {
		logging.WithContext(ctx, o.logger).Warn("ledger insert failed", logging.Error(err))
	}
}

func (o *Orchestrator) advance(ctx context.Context, id string, status sessions.Status) {
	if err := o.store.SetStatus(ctx, id, status); err != nil {
		logging.WithContext(ctx, o.logger).Warn("ledger update failed",
			logging.String(logging.FieldSessionID, id),
			logging.String("status", string(status)),
			logging.Error(err),
		)
	}
}

func validate(req Request) error {
	switch {
	case req.ScoreID == "":
		return services.Wrap(services.ErrValidation, "intake", "validate request", "scoreId is required", nil)
	case len(req.Data) == 0:
		return services.Wrap(services.ErrValidation, "intake", "validate request", "fileData is required", nil)
	case req.FileType == "":
		return services.Wrap(services.ErrValidation, "intake", "validate request", "fileType is required", nil)
	}
	return nil
}

// inputName derives the uploaded artifact's workspace file name from its
// declared type. The extension only aids debugging; engines receive the path
// verbatim.
func inputName(req Request) string {
	if req.FileType == "" {
		return inputFileName
	}
	return inputFileName + "." + req.FileType
}
