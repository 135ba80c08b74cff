package processors

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"meetingMind/core"
	"meetingMind/storage"
)

// fakeEmbedder maps any text to a small deterministic vector so the same
// text always lands on the same point.
type fakeEmbedder struct {
	fail  bool
	calls int
}

func (f *fakeEmbedder) Model() string { return "fake-embedder" }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.fail {
		return nil, errors.New("embedding provider down")
	}
	f.calls++
	words := strings.Fields(text)
	var sum float32
	for _, w := range words {
		sum += float32(len(w))
	}
	return []float32{float32(len(words)), sum, float32(text[0])}, nil
}

type fakeCompleter struct {
	fail    bool
	answer  string
	prompts []string
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if f.fail {
		return "", errors.New("completion provider down")
	}
	f.prompts = append(f.prompts, userPrompt)
	if f.answer == "" {
		return "canned answer", nil
	}
	return f.answer, nil
}

type fakeTranscriber struct {
	fail bool
	text string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if f.fail {
		return "", errors.New("transcription provider down")
	}
	return f.text, nil
}

// testEnv wires the file-backed stores and services in a temp dir.
type testEnv struct {
	docs     *storage.DocumentStore
	store    *storage.FileIndexStore
	history  *storage.HistoryStore
	embedder *fakeEmbedder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	docs, err := storage.NewDocumentStore(dir)
	if err != nil {
		t.Fatalf("NewDocumentStore() failed: %v", err)
	}
	store, err := storage.NewFileIndexStore(dir)
	if err != nil {
		t.Fatalf("NewFileIndexStore() failed: %v", err)
	}
	history, err := storage.NewHistoryStore(dir)
	if err != nil {
		t.Fatalf("NewHistoryStore() failed: %v", err)
	}
	return &testEnv{docs: docs, store: store, history: history, embedder: &fakeEmbedder{}}
}

func (e *testEnv) writeTranscript(t *testing.T, meetingID, text string) {
	t.Helper()
	err := e.docs.SaveTranscript(core.TranscriptDocument{
		MeetingID:  meetingID,
		ProjectID:  DefaultProjectID,
		CreatedAt:  time.Now().UTC(),
		Transcript: text,
	})
	if err != nil {
		t.Fatalf("SaveTranscript() failed: %v", err)
	}
}

func (e *testEnv) embedMeeting(t *testing.T, meetingID string, windowWords, overlapWords int) int {
	t.Helper()
	svc := NewEmbeddingService(e.embedder, e.docs, e.store, windowWords, overlapWords)
	n, err := svc.EmbedTranscript(context.Background(), meetingID)
	if err != nil {
		t.Fatalf("EmbedTranscript() failed: %v", err)
	}
	return n
}
