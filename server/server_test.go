package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"meetingMind/core"
	"meetingMind/processors"
	"meetingMind/storage"
)

type stubEmbedder struct{ fail bool }

func (s *stubEmbedder) Model() string { return "stub-embedder" }

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.fail {
		return nil, errors.New("embedding provider down")
	}
	words := strings.Fields(text)
	var sum float32
	for _, w := range words {
		sum += float32(len(w))
	}
	return []float32{float32(len(words)), sum}, nil
}

type stubCompleter struct{}

func (stubCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "stub answer", nil
}

type stubTranscriber struct{}

func (stubTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return "stub transcript text", nil
}

type serverEnv struct {
	srv      *Server
	ts       *httptest.Server
	docs     *storage.DocumentStore
	embedder *stubEmbedder
}

func newServerEnv(t *testing.T) *serverEnv {
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

	embedder := &stubEmbedder{}
	completer := stubCompleter{}
	search := processors.NewSearchService(embedder, store, 5)

	srv := &Server{
		Docs:          docs,
		Store:         store,
		History:       history,
		Transcription: processors.NewTranscriptionService(stubTranscriber{}, docs),
		Summary:       processors.NewSummaryService(completer, docs),
		Insights:      processors.NewInsightsService(completer, docs),
		Embedding:     processors.NewEmbeddingService(embedder, docs, store, 4, 0),
		Search:        search,
		Answer:        processors.NewAnswerService(search, completer, history, 5, 3),
	}
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return &serverEnv{srv: srv, ts: ts, docs: docs, embedder: embedder}
}

func (e *serverEnv) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(e.ts.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *serverEnv) seedEmbedded(t *testing.T, meetingID string) {
	t.Helper()
	err := e.docs.SaveTranscript(core.TranscriptDocument{
		MeetingID:  meetingID,
		ProjectID:  processors.DefaultProjectID,
		CreatedAt:  time.Now().UTC(),
		Transcript: "alpha bravo charlie delta echo foxtrot golf hotel",
	})
	if err != nil {
		t.Fatalf("SaveTranscript() failed: %v", err)
	}
	resp := e.postJSON(t, "/api/v1/vectorize", map[string]string{"meeting_id": meetingID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("vectorize returned %d", resp.StatusCode)
	}
}

func TestSearchEndpoint(t *testing.T) {
	env := newServerEnv(t)
	env.seedEmbedded(t, "m1")

	resp := env.postJSON(t, "/api/v1/search", searchRequest{MeetingID: "m1", QueryText: "alpha bravo charlie delta", TopK: 2})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.TotalResults != 2 || len(out.Results) != 2 {
		t.Fatalf("expected 2 results, got %+v", out)
	}
	if out.Results[0].Rank != 1 {
		t.Errorf("results must be rank ordered, got %+v", out.Results[0])
	}
}

func TestErrorStatusMapping(t *testing.T) {
	env := newServerEnv(t)
	env.seedEmbedded(t, "m1")

	cases := []struct {
		name string
		path string
		body any
		want int
	}{
		{"search not embedded", "/api/v1/search", searchRequest{MeetingID: "ghost", QueryText: "q"}, http.StatusNotFound},
		{"search empty query", "/api/v1/search", searchRequest{MeetingID: "m1", QueryText: "  "}, http.StatusBadRequest},
		{"query not embedded", "/api/v1/query", queryRequest{MeetingID: "ghost", Query: "q"}, http.StatusNotFound},
		{"vectorize missing transcript", "/api/v1/vectorize", meetingRequest{MeetingID: "ghost"}, http.StatusNotFound},
		{"missing meeting_id", "/api/v1/search", searchRequest{QueryText: "q"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp := env.postJSON(t, tc.path, tc.body)
		if resp.StatusCode != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, resp.StatusCode)
		}
	}
}

func TestEmbeddingProviderFailureMapsToBadGateway(t *testing.T) {
	env := newServerEnv(t)
	env.seedEmbedded(t, "m1")
	env.embedder.fail = true

	resp := env.postJSON(t, "/api/v1/search", searchRequest{MeetingID: "m1", QueryText: "q"})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}

func TestQueryHistoryEndpoint(t *testing.T) {
	env := newServerEnv(t)
	env.seedEmbedded(t, "m1")

	for _, q := range []string{"first?", "second?"} {
		resp := env.postJSON(t, "/api/v1/query", queryRequest{MeetingID: "m1", Query: q})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("query %q returned %d", q, resp.StatusCode)
		}
	}

	resp, err := http.Get(env.ts.URL + "/api/v1/meetings/m1/queries")
	if err != nil {
		t.Fatalf("GET queries failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var records []core.QueryRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(records) != 2 || records[0].Query != "first?" || records[1].Query != "second?" {
		t.Fatalf("expected two records in order, got %+v", records)
	}
}

func TestStatusEndpoint(t *testing.T) {
	env := newServerEnv(t)
	env.seedEmbedded(t, "m1")

	resp, err := http.Get(env.ts.URL + "/api/v1/meetings/m1/status")
	if err != nil {
		t.Fatalf("GET status failed: %v", err)
	}
	defer resp.Body.Close()
	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.HasTranscript || !status.Embedded {
		t.Errorf("status should reflect the seeded artifacts: %+v", status)
	}
	if status.HasAudio || status.HasSummary || status.HasInsights {
		t.Errorf("status reports artifacts that were never created: %+v", status)
	}
	if status.QueriesHandled != 0 {
		t.Errorf("no queries were made, got %d", status.QueriesHandled)
	}
}

func TestUploadRejectsNonAudio(t *testing.T) {
	env := newServerEnv(t)

	var buf bytes.Buffer
	contentType := newMultipartFile(t, &buf, "notes.txt", "text/plain", "just text")
	resp, err := http.Post(env.ts.URL+"/api/v1/upload", contentType, &buf)
	if err != nil {
		t.Fatalf("POST upload failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-audio upload, got %d", resp.StatusCode)
	}
}

func TestUploadAcceptsAudio(t *testing.T) {
	env := newServerEnv(t)

	var buf bytes.Buffer
	contentType := newMultipartFile(t, &buf, "meeting.mp3", "audio/mpeg", "fake mp3 bytes")
	resp, err := http.Post(env.ts.URL+"/api/v1/upload", contentType, &buf)
	if err != nil {
		t.Fatalf("POST upload failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.MeetingID == "" || !strings.HasSuffix(out.Filename, ".mp3") {
		t.Errorf("unexpected upload response %+v", out)
	}
	if !env.docs.HasAudio(out.MeetingID) {
		t.Error("uploaded audio not found on disk")
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newServerEnv(t)
	resp, err := http.Get(env.ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

// newMultipartFile writes a single-file multipart body into buf and
// returns the content type to post with.
func newMultipartFile(t *testing.T, buf *bytes.Buffer, filename, contentType, content string) string {
	t.Helper()
	mw := multipart.NewWriter(buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("CreatePart() failed: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return mw.FormDataContentType()
}
