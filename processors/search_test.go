package processors

import (
	"context"
	"errors"
	"strings"
	"testing"

	"meetingMind/core"
)

func seedSearchableMeeting(t *testing.T, env *testEnv) []core.ChunkMetadata {
	t.Helper()
	// Three clearly distinct 4-word windows (window 4, overlap 0 keeps
	// the chunk texts disjoint and easy to assert on).
	transcript := "alpha bravo charlie delta " +
		"echo foxtrot golf hotel " +
		"india juliett kilo lima"
	env.writeTranscript(t, "m1", transcript)
	env.embedMeeting(t, "m1", 4, 0)

	_, meta, err := env.store.Load(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	return meta.Chunks
}

func TestSearchRanksByDistance(t *testing.T) {
	env := newTestEnv(t)
	chunks := seedSearchableMeeting(t, env)

	svc := NewSearchService(env.embedder, env.store, 5)
	// Querying with chunk 1's exact text puts the fake embedder on the
	// same point, so chunk 1 must come back first at distance 0.
	results, err := svc.Search(context.Background(), "m1", chunks[1].Text, 2)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	top := results[0]
	if top.ChunkID != 1 || top.Distance != 0 || top.SimilarityScore != 1.0 {
		t.Errorf("expected chunk 1 at distance 0 with score 1.0, got %+v", top)
	}
	if top.Text != chunks[1].Text {
		t.Errorf("result text must come from the chunk metadata, got %q", top.Text)
	}
	for i, r := range results {
		if r.Rank != i+1 {
			t.Errorf("ranks must be 1-based and contiguous, got %d at %d", r.Rank, i)
		}
		if i > 0 && r.Distance < results[i-1].Distance {
			t.Errorf("distances must ascend with rank")
		}
	}
}

func TestSearchKDefaultsAndClipping(t *testing.T) {
	env := newTestEnv(t)
	seedSearchableMeeting(t, env)
	svc := NewSearchService(env.embedder, env.store, 5)

	// k <= 0 falls back to the configured default, clipped to the index size.
	results, err := svc.Search(context.Background(), "m1", "anything at all", 0)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("default k over a 3-chunk index should return 3 results, got %d", len(results))
	}

	results, err = svc.Search(context.Background(), "m1", "anything at all", 10)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("k > N should return all N, got %d", len(results))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSearchService(env.embedder, env.store, 5)
	if _, err := svc.Search(context.Background(), "m1", "   ", 5); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSearchNotEmbedded(t *testing.T) {
	env := newTestEnv(t)
	env.writeTranscript(t, "m1", "transcribed but never embedded")
	svc := NewSearchService(env.embedder, env.store, 5)
	if _, err := svc.Search(context.Background(), "m1", "what happened?", 5); !errors.Is(err, core.ErrNotEmbedded) {
		t.Fatalf("expected ErrNotEmbedded, got %v", err)
	}
}

func TestSearchEmbeddingProviderFailure(t *testing.T) {
	env := newTestEnv(t)
	seedSearchableMeeting(t, env)
	env.embedder.fail = true
	svc := NewSearchService(env.embedder, env.store, 5)
	if _, err := svc.Search(context.Background(), "m1", "what happened?", 5); !errors.Is(err, core.ErrEmbeddingProvider) {
		t.Fatalf("expected ErrEmbeddingProvider, got %v", err)
	}
}

func TestSearchResultTextJoinsMetadata(t *testing.T) {
	env := newTestEnv(t)
	chunks := seedSearchableMeeting(t, env)
	svc := NewSearchService(env.embedder, env.store, 5)
	results, err := svc.Search(context.Background(), "m1", chunks[2].Text, 3)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	seen := map[int]string{}
	for _, r := range results {
		seen[r.ChunkID] = r.Text
	}
	for _, ch := range chunks {
		if got, ok := seen[ch.ChunkID]; ok && !strings.EqualFold(got, ch.Text) {
			t.Errorf("chunk %d text mismatch: %q vs %q", ch.ChunkID, got, ch.Text)
		}
	}
}
