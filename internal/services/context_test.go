package services

import (
	"context"
	"testing"
)

func TestContextRoundTrips(t *testing.T) {
	ctx := context.Background()

	if _, ok := SessionIDFromContext(ctx); ok {
		t.Error("empty context should carry no session id")
	}

	ctx = WithSessionID(ctx, "sess-42")
	ctx = WithStage(ctx, "render")
	ctx = WithRequestID(ctx, "corr-7")

	if id, ok := SessionIDFromContext(ctx); !ok || id != "sess-42" {
		t.Errorf("session id = %q, %v", id, ok)
	}
	if stage, ok := StageFromContext(ctx); !ok || stage != "render" {
		t.Errorf("stage = %q, %v", stage, ok)
	}
	if rid, ok := RequestIDFromContext(ctx); !ok || rid != "corr-7" {
		t.Errorf("request id = %q, %v", rid, ok)
	}
}

func TestEmptyValuesAreNotStored(t *testing.T) {
	ctx := WithStage(context.Background(), "")
	if _, ok := StageFromContext(ctx); ok {
		t.Error("empty stage should not be stored")
	}
}
