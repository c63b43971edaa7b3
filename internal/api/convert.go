package api

import (
	"time"

	"scoreflow/internal/notation"
	"scoreflow/internal/pipeline"
	"scoreflow/internal/render"
	"scoreflow/internal/sessions"
)

// FromMetadata converts the extracted attribute record to its wire form.
func FromMetadata(meta notation.Metadata) ScoreMetadata {
	return ScoreMetadata{
		Title:         meta.Title,
		Composer:      meta.Composer,
		Instrument:    meta.Instrument,
		Clef:          meta.Clef,
		KeySignature:  meta.KeySignature,
		TimeSignature: meta.TimeSignature,
		MeasureCount:  meta.MeasureCount,
		Tempo:         meta.Tempo,
		Style:         meta.Style,
	}
}

// FromImages converts the ordered preview sequence to measure groups. The
// Degraded flag is deliberately not exposed.
func FromImages(images []render.Image) []MeasureGroup {
	groups := make([]MeasureGroup, len(images))
	for i, img := range images {
		groups[i] = MeasureGroup{
			StartMeasure: img.Start,
			EndMeasure:   img.End,
			ImageData:    img.Data,
		}
	}
	return groups
}

// FromResult assembles the full success payload.
func FromResult(result *pipeline.Result) ProcessResponse {
	return ProcessResponse{
		Success:          true,
		ScoreID:          result.ScoreID,
		SessionID:        result.SessionID,
		NotationDocument: result.NotationDocument,
		Metadata:         FromMetadata(result.Metadata),
		MeasureGroups:    FromImages(result.Images),
	}
}

// FromSession converts a ledger row to its summary form.
func FromSession(session sessions.Session) SessionSummary {
	summary := SessionSummary{
		ID:            session.ID,
		ScoreID:       session.ScoreID,
		WorkspacePath: session.WorkspacePath,
		Status:        string(session.Status),
		ErrorMessage:  session.ErrorMessage,
		CreatedAt:     formatTime(session.CreatedAt),
		UpdatedAt:     formatTime(session.UpdatedAt),
	}
	if session.ReleaseAfter != nil {
		summary.ReleaseAfter = formatTime(*session.ReleaseAfter)
	}
	return summary
}

// FromSessions converts ledger rows in their given order.
func FromSessions(rows []sessions.Session) []SessionSummary {
	summaries := make([]SessionSummary, len(rows))
	for i, row := range rows {
		summaries[i] = FromSession(row)
	}
	return summaries
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
