package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"scoreflow/internal/config"
	"scoreflow/internal/fileutil"
	"scoreflow/internal/logging"
)

// Image is one encoded measure-group preview. The caller-facing result never
// distinguishes real engine output from a placeholder; Degraded exists for
// logging and tests only.
type Image struct {
	Ordinal  int
	Start    int
	End      int
	Data     string
	Degraded bool
}

// Renderer produces the ordered preview sequence for a notation document.
type Renderer struct {
	engine      *Engine
	concurrency int
	logger      *slog.Logger
}

// NewRenderer constructs a paged renderer from configuration.
func NewRenderer(cfg *config.Config, logger *slog.Logger) *Renderer {
	return &Renderer{
		engine:      NewEngine(cfg.RenderBinary, cfg.RenderTimeoutDuration()),
		concurrency: cfg.RenderConcurrency,
		logger:      logging.NewComponentLogger(logger, "render"),
	}
}

// Available reports whether the rendering engine binary can be invoked.
func (r *Renderer) Available() bool {
	return r.engine.Available()
}

// RenderGroups renders one preview per measure group of 1..totalMeasures.
// Groups may render concurrently up to the configured limit, but the returned
// sequence is always ordered by ascending start measure. A single group's
// failure degrades that group to a placeholder; it never aborts the rest.
// The only returned error is context cancellation.
func (r *Renderer) RenderGroups(ctx context.Context, documentPath, workDir string, totalMeasures int) ([]Image, error) {
	groups := Groups(totalMeasures)
	images := make([]Image, len(groups))

	eg, groupCtx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		eg.SetLimit(r.concurrency)
	}

	for i, group := range groups {
		eg.Go(func() error {
			img, err := r.renderGroup(groupCtx, documentPath, workDir, i, group)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// renderGroup produces one group's image, degrading to a placeholder on any
// engine failure. The per-group document is the full score copied alongside
// the output; sub-range slicing is not performed.
func (r *Renderer) renderGroup(ctx context.Context, documentPath, workDir string, ordinal int, group Group) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}

	data, degraded := r.renderWithEngine(ctx, documentPath, workDir, ordinal)
	if degraded {
		if err := ctx.Err(); err != nil {
			return Image{}, err
		}
		placeholder, err := PlaceholderPNG(group.Start, group.End)
		if err != nil {
			return Image{}, fmt.Errorf("placeholder for measures %d-%d: %w", group.Start, group.End, err)
		}
		data = placeholder
	}

	return Image{
		Ordinal:  ordinal,
		Start:    group.Start,
		End:      group.End,
		Data:     "data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
		Degraded: degraded,
	}, nil
}

// renderWithEngine attempts a real engine render and reports whether the
// group must degrade.
func (r *Renderer) renderWithEngine(ctx context.Context, documentPath, workDir string, ordinal int) ([]byte, bool) {
	if !r.engine.Available() {
		return nil, true
	}

	groupDoc := filepath.Join(workDir, fmt.Sprintf("group-%d.musicxml", ordinal))
	if err := fileutil.CopyFile(documentPath, groupDoc); err != nil {
		logging.WithContext(ctx, r.logger).Warn("stage group document copy failed",
			logging.Int("ordinal", ordinal),
			logging.Error(err),
			logging.String(logging.FieldEventType, "render_degraded"),
		)
		return nil, true
	}

	imagePath := filepath.Join(workDir, fmt.Sprintf("group-%d.png", ordinal))
	if err := r.engine.Render(ctx, groupDoc, imagePath); err != nil {
		logging.WithContext(ctx, r.logger).Warn("render engine failed for group",
			logging.Int("ordinal", ordinal),
			logging.Error(err),
			logging.String(logging.FieldEventType, "render_degraded"),
		)
		return nil, true
	}

	data, err := os.ReadFile(imagePath)
	if err != nil || len(data) == 0 {
		logging.WithContext(ctx, r.logger).Warn("render output unreadable",
			logging.Int("ordinal", ordinal),
			logging.Error(err),
			logging.String(logging.FieldEventType, "render_degraded"),
		)
		return nil, true
	}
	return data, false
}
