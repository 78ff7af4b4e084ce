package services_test

import (
	"context"
	"testing"

	"storyreel/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithEpisode(ctx, 7)
	ctx = services.WithStage(ctx, "video")
	ctx = services.WithRunID(ctx, "run-123")

	if ep, ok := services.EpisodeFromContext(ctx); !ok || ep != 7 {
		t.Fatalf("unexpected episode: %v %v", ep, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "video" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RunIDFromContext(ctx); !ok || rid != "run-123" {
		t.Fatalf("unexpected run id: %v %v", rid, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
