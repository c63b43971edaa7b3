package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scoreflow/internal/logging"
	"scoreflow/internal/testsupport"
)

func writeDocument(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "score.musicxml")
	if err := os.WriteFile(path, []byte("<score-partwise/>"), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return path
}

func TestRenderGroupsAllPlaceholdersWhenEngineAbsent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.RenderBinary = "no-such-render-binary"
	r := NewRenderer(cfg, logging.NewNop())

	dir := t.TempDir()
	doc := writeDocument(t, dir)

	images, err := r.RenderGroups(context.Background(), doc, dir, 7)
	if err != nil {
		t.Fatalf("render groups: %v", err)
	}
	if len(images) != 4 {
		t.Fatalf("expected 4 groups for 7 measures, got %d", len(images))
	}
	for i, img := range images {
		if img.Ordinal != i {
			t.Errorf("image %d has ordinal %d", i, img.Ordinal)
		}
		if !img.Degraded {
			t.Errorf("image %d should be a placeholder", i)
		}
		if !strings.HasPrefix(img.Data, "data:image/png;base64,") {
			t.Errorf("image %d missing data URI prefix", i)
		}
		if len(img.Data) <= len("data:image/png;base64,") {
			t.Errorf("image %d payload empty", i)
		}
	}
	if images[3].Start != 7 || images[3].End != 7 {
		t.Errorf("final group = [%d,%d], want [7,7]", images[3].Start, images[3].End)
	}
}

func TestRenderGroupsOrderingUnderConcurrency(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.RenderBinary = "no-such-render-binary"
	cfg.RenderConcurrency = 8
	r := NewRenderer(cfg, logging.NewNop())

	dir := t.TempDir()
	doc := writeDocument(t, dir)

	images, err := r.RenderGroups(context.Background(), doc, dir, 20)
	if err != nil {
		t.Fatalf("render groups: %v", err)
	}
	for i, img := range images {
		wantStart := i*GroupSize + 1
		if img.Start != wantStart {
			t.Errorf("image %d starts at %d, want %d", i, img.Start, wantStart)
		}
	}
}

func TestRenderGroupsRealEngine(t *testing.T) {
	// Stub engine writes a marker byte to the output path.
	testsupport.StubBinary(t, "stub-render", "#!/bin/sh\nprintf 'PNGDATA' > \"$2\"\n")

	cfg := testsupport.NewConfig(t)
	cfg.RenderBinary = "stub-render"
	r := NewRenderer(cfg, logging.NewNop())

	dir := t.TempDir()
	doc := writeDocument(t, dir)

	images, err := r.RenderGroups(context.Background(), doc, dir, 3)
	if err != nil {
		t.Fatalf("render groups: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(images))
	}
	for i, img := range images {
		if img.Degraded {
			t.Errorf("image %d degraded with a working engine", i)
		}
	}
}

func TestRenderGroupsSingleGroupFailureDegradesOnlyThatGroup(t *testing.T) {
	// Stub engine fails only for the second group's document.
	testsupport.StubBinary(t, "stub-render-partial", `#!/bin/sh
case "$1" in
  *group-1*) exit 2 ;;
  *) printf 'PNGDATA' > "$2" ;;
esac
`)

	cfg := testsupport.NewConfig(t)
	cfg.RenderBinary = "stub-render-partial"
	cfg.RenderConcurrency = 1
	r := NewRenderer(cfg, logging.NewNop())

	dir := t.TempDir()
	doc := writeDocument(t, dir)

	images, err := r.RenderGroups(context.Background(), doc, dir, 6)
	if err != nil {
		t.Fatalf("render groups: %v", err)
	}
	if len(images) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(images))
	}
	if images[0].Degraded || images[2].Degraded {
		t.Error("healthy groups degraded")
	}
	if !images[1].Degraded {
		t.Error("failed group should degrade to placeholder")
	}
	// Sequence shape matches the failure-free case.
	for i, img := range images {
		if img.Start != i*GroupSize+1 {
			t.Errorf("image %d starts at %d", i, img.Start)
		}
	}
}

func TestRenderGroupsContextCancellation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.RenderBinary = "no-such-render-binary"
	r := NewRenderer(cfg, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	doc := writeDocument(t, dir)
	if _, err := r.RenderGroups(ctx, doc, dir, 4); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
