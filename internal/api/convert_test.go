package api

import (
	"testing"
	"time"

	"scoreflow/internal/notation"
	"scoreflow/internal/pipeline"
	"scoreflow/internal/render"
	"scoreflow/internal/sessions"
)

func TestFromResult(t *testing.T) {
	result := &pipeline.Result{
		SessionID:        "sess-1",
		ScoreID:          "score-1",
		NotationDocument: "<score-partwise/>",
		Metadata: notation.Metadata{
			Title:         "Prelude",
			Composer:      "Someone",
			Instrument:    "Violin",
			Clef:          "treble",
			KeySignature:  "D major",
			TimeSignature: "4/4",
			MeasureCount:  5,
			Tempo:         96,
		},
		Images: []render.Image{
			{Ordinal: 0, Start: 1, End: 2, Data: "data:image/png;base64,AAA", Degraded: false},
			{Ordinal: 1, Start: 3, End: 4, Data: "data:image/png;base64,BBB", Degraded: true},
			{Ordinal: 2, Start: 5, End: 5, Data: "data:image/png;base64,CCC", Degraded: false},
		},
	}

	resp := FromResult(result)
	if !resp.Success {
		t.Error("success flag must be set")
	}
	if resp.ScoreID != "score-1" || resp.SessionID != "sess-1" {
		t.Errorf("identifiers = %q/%q", resp.ScoreID, resp.SessionID)
	}
	if resp.Metadata.KeySignature != "D major" || resp.Metadata.MeasureCount != 5 {
		t.Errorf("metadata = %+v", resp.Metadata)
	}
	if len(resp.MeasureGroups) != 3 {
		t.Fatalf("groups = %d", len(resp.MeasureGroups))
	}
	// A degraded group is indistinguishable in the payload.
	if resp.MeasureGroups[1].StartMeasure != 3 || resp.MeasureGroups[1].EndMeasure != 4 {
		t.Errorf("group 1 = %+v", resp.MeasureGroups[1])
	}
	if resp.MeasureGroups[1].ImageData != "data:image/png;base64,BBB" {
		t.Errorf("group 1 image = %q", resp.MeasureGroups[1].ImageData)
	}
}

func TestFromSession(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	release := created.Add(time.Minute)
	summary := FromSession(sessions.Session{
		ID:            "sess-2",
		ScoreID:       "score-2",
		WorkspacePath: "/scratch/session-abc",
		Status:        sessions.StatusFailed,
		ErrorMessage:  "workspace error",
		CreatedAt:     created,
		UpdatedAt:     created,
		ReleaseAfter:  &release,
	})

	if summary.Status != "failed" || summary.ErrorMessage != "workspace error" {
		t.Errorf("summary = %+v", summary)
	}
	if summary.CreatedAt != "2026-03-14T09:26:53.000Z" {
		t.Errorf("createdAt = %q", summary.CreatedAt)
	}
	if summary.ReleaseAfter == "" {
		t.Error("releaseAfter should be populated")
	}
}

func TestFromSessionOmitsZeroTimes(t *testing.T) {
	summary := FromSession(sessions.Session{ID: "x", Status: sessions.StatusCreated})
	if summary.CreatedAt != "" || summary.ReleaseAfter != "" {
		t.Errorf("summary = %+v", summary)
	}
}
