package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"meetingMind/core"
)

const maxUploadBytes = 200 << 20 // 200 MiB

type meetingRequest struct {
	MeetingID string `json:"meeting_id"`
}

type uploadResponse struct {
	MeetingID string `json:"meeting_id"`
	Filename  string `json:"filename"`
}

type vectorizeResponse struct {
	MeetingID string `json:"meeting_id"`
	NumChunks int    `json:"num_chunks"`
	Status    string `json:"status"`
}

type searchRequest struct {
	MeetingID string `json:"meeting_id"`
	QueryText string `json:"query_text"`
	TopK      int    `json:"top_k"`
}

type searchResponse struct {
	MeetingID    string              `json:"meeting_id"`
	QueryText    string              `json:"query_text"`
	Results      []core.SearchResult `json:"results"`
	TotalResults int                 `json:"total_results"`
}

type queryRequest struct {
	MeetingID string `json:"meeting_id"`
	Query     string `json:"query"`
}

type statusResponse struct {
	MeetingID      string `json:"meeting_id"`
	HasAudio       bool   `json:"has_audio"`
	HasTranscript  bool   `json:"has_transcript"`
	HasSummary     bool   `json:"has_summary"`
	HasInsights    bool   `json:"has_insights"`
	Embedded       bool   `json:"embedded"`
	QueriesHandled int    `json:"queries_handled"`
}

func decodeMeetingRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodPost {
		core.WriteJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return "", false
	}
	var req meetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return "", false
	}
	if strings.TrimSpace(req.MeetingID) == "" {
		core.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "meeting_id required"})
		return "", false
	}
	return req.MeetingID, true
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		core.WriteJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		core.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "multipart field 'file' required"})
		return
	}
	defer file.Close()

	if !isAudioUpload(header.Header.Get("Content-Type"), header.Filename) {
		core.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "file must be an audio file"})
		return
	}

	meetingID := core.NewMeetingID()
	filename, err := s.Docs.SaveAudio(meetingID, header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}
	log.Info().Str("meeting_id", meetingID).Str("filename", filename).Msg("audio uploaded")
	core.WriteJSON(w, http.StatusOK, uploadResponse{MeetingID: meetingID, Filename: filename})
}

func isAudioUpload(contentType, filename string) bool {
	if strings.HasPrefix(contentType, "audio/") {
		return true
	}
	name := strings.ToLower(filename)
	for _, ext := range []string{".mp3", ".wav", ".m4a", ".flac", ".ogg", ".aac"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func (s *Server) transcribeHandler(w http.ResponseWriter, r *http.Request) {
	meetingID, ok := decodeMeetingRequest(w, r)
	if !ok {
		return
	}
	doc, err := s.Transcription.Transcribe(r.Context(), meetingID)
	if err != nil {
		writeError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, doc)
}

func (s *Server) summarizeHandler(w http.ResponseWriter, r *http.Request) {
	meetingID, ok := decodeMeetingRequest(w, r)
	if !ok {
		return
	}
	doc, err := s.Summary.Summarize(r.Context(), meetingID)
	if err != nil {
		writeError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, doc)
}

func (s *Server) insightsHandler(w http.ResponseWriter, r *http.Request) {
	meetingID, ok := decodeMeetingRequest(w, r)
	if !ok {
		return
	}
	doc, err := s.Insights.GenerateInsights(r.Context(), meetingID)
	if err != nil {
		writeError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, doc)
}

func (s *Server) vectorizeHandler(w http.ResponseWriter, r *http.Request) {
	meetingID, ok := decodeMeetingRequest(w, r)
	if !ok {
		return
	}
	numChunks, err := s.Embedding.EmbedTranscript(r.Context(), meetingID)
	if err != nil {
		writeError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, vectorizeResponse{MeetingID: meetingID, NumChunks: numChunks, Status: "done"})
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		core.WriteJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}
	if strings.TrimSpace(req.MeetingID) == "" {
		core.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "meeting_id required"})
		return
	}
	results, err := s.Search.Search(r.Context(), req.MeetingID, req.QueryText, req.TopK)
	if err != nil {
		writeError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, searchResponse{
		MeetingID:    req.MeetingID,
		QueryText:    req.QueryText,
		Results:      results,
		TotalResults: len(results),
	})
}

func (s *Server) queryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		core.WriteJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}
	if strings.TrimSpace(req.MeetingID) == "" {
		core.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "meeting_id required"})
		return
	}
	record, err := s.Answer.Answer(r.Context(), req.MeetingID, req.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, record)
}

func (s *Server) pipelineHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		core.WriteJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		core.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "multipart field 'file' required"})
		return
	}
	defer file.Close()
	if !isAudioUpload(header.Header.Get("Content-Type"), header.Filename) {
		core.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "file must be an audio file"})
		return
	}

	meetingID := core.NewMeetingID()
	if _, err := s.Docs.SaveAudio(meetingID, header.Filename, file); err != nil {
		writeError(w, err)
		return
	}
	result := s.Pipeline.Process(r.Context(), meetingID)
	status := http.StatusOK
	if result.Status != "completed" {
		status = http.StatusBadGateway
	}
	core.WriteJSON(w, status, result)
}

// meetingHandler serves GET /api/v1/meetings/{id}/queries and
// GET /api/v1/meetings/{id}/status.
func (s *Server) meetingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		core.WriteJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/meetings/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		core.WriteJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}
	meetingID := parts[0]
	switch parts[1] {
	case "queries":
		records, err := s.History.Fetch(meetingID)
		if err != nil {
			writeError(w, err)
			return
		}
		core.WriteJSON(w, http.StatusOK, records)
	case "status":
		records, err := s.History.Fetch(meetingID)
		if err != nil {
			writeError(w, err)
			return
		}
		core.WriteJSON(w, http.StatusOK, statusResponse{
			MeetingID:      meetingID,
			HasAudio:       s.Docs.HasAudio(meetingID),
			HasTranscript:  s.Docs.HasTranscript(meetingID),
			HasSummary:     s.Docs.HasSummary(meetingID),
			HasInsights:    s.Docs.HasInsights(meetingID),
			Embedded:       s.Store.Exists(r.Context(), meetingID),
			QueriesHandled: len(records),
		})
	default:
		core.WriteJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown resource %q", parts[1])})
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	core.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
