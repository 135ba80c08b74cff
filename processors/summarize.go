package processors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"meetingMind/core"
	"meetingMind/storage"
)

const summarySystemPrompt = "You are a professional meeting summarizer. " +
	"Create a concise but comprehensive summary of the following meeting transcript. " +
	"Focus on key discussion points, decisions made, and the overall narrative flow."

// SummaryService generates and persists a meeting summary from the stored
// transcript. Thin pass-through to the chat completion provider.
type SummaryService struct {
	completer ChatCompleter
	docs      *storage.DocumentStore
}

func NewSummaryService(completer ChatCompleter, docs *storage.DocumentStore) *SummaryService {
	return &SummaryService{completer: completer, docs: docs}
}

func (s *SummaryService) Summarize(ctx context.Context, meetingID string) (core.SummaryDocument, error) {
	transcript, err := s.docs.LoadTranscript(meetingID)
	if err != nil {
		return core.SummaryDocument{}, err
	}
	if strings.TrimSpace(transcript.Transcript) == "" {
		return core.SummaryDocument{}, fmt.Errorf("summarize meeting %s: %w: transcript is empty",
			meetingID, core.ErrInvalidInput)
	}
	log.Info().Str("meeting_id", meetingID).Msg("generating summary")

	summary, err := s.completer.Complete(ctx, summarySystemPrompt, transcript.Transcript)
	if err != nil {
		return core.SummaryDocument{}, fmt.Errorf("summarize meeting %s: %w: %w",
			meetingID, core.ErrAnswerGeneration, err)
	}

	doc := core.SummaryDocument{
		MeetingID: meetingID,
		ProjectID: transcript.ProjectID,
		CreatedAt: time.Now().UTC(),
		Summary:   summary,
	}
	if err := s.docs.SaveSummary(doc); err != nil {
		return core.SummaryDocument{}, err
	}
	return doc, nil
}
