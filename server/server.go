package server

import (
	"errors"
	"net/http"

	"meetingMind/core"
	"meetingMind/processors"
	"meetingMind/storage"
)

// Server bundles the services behind the HTTP surface. Handlers stay
// thin: decode, validate, delegate, write JSON.
type Server struct {
	Docs          *storage.DocumentStore
	Store         storage.IndexStore
	History       *storage.HistoryStore
	Transcription *processors.TranscriptionService
	Summary       *processors.SummaryService
	Insights      *processors.InsightsService
	Embedding     *processors.EmbeddingService
	Search        *processors.SearchService
	Answer        *processors.AnswerService
	Pipeline      *processors.Pipeline
}

// Routes registers all endpoints on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/upload", s.uploadHandler)
	mux.HandleFunc("/api/v1/transcribe", s.transcribeHandler)
	mux.HandleFunc("/api/v1/summarize", s.summarizeHandler)
	mux.HandleFunc("/api/v1/insights", s.insightsHandler)
	mux.HandleFunc("/api/v1/vectorize", s.vectorizeHandler)
	mux.HandleFunc("/api/v1/search", s.searchHandler)
	mux.HandleFunc("/api/v1/query", s.queryHandler)
	mux.HandleFunc("/api/v1/pipeline/process", s.pipelineHandler)
	mux.HandleFunc("/api/v1/meetings/", s.meetingHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the failure taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrNotEmbedded):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrCorruption),
		errors.Is(err, core.ErrDimensionMismatch),
		errors.Is(err, core.ErrEmptyIndex):
		status = http.StatusConflict
	case errors.Is(err, core.ErrEmbeddingProvider),
		errors.Is(err, core.ErrTranscriptionProvider),
		errors.Is(err, core.ErrAnswerGeneration):
		status = http.StatusBadGateway
	}
	core.WriteJSON(w, status, errorResponse{Error: err.Error()})
}
