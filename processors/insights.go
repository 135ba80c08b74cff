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

const insightsSystemPrompt = "You are a meeting analyst. From the following meeting transcript, " +
	"extract the key insights: notable decisions, risks raised, open questions, and follow-ups. " +
	"Present them as a short, clearly structured list."

// InsightsService generates and persists key insights for a meeting.
// Same shape as the summary stage, different prompt and artifact.
type InsightsService struct {
	completer ChatCompleter
	docs      *storage.DocumentStore
}

func NewInsightsService(completer ChatCompleter, docs *storage.DocumentStore) *InsightsService {
	return &InsightsService{completer: completer, docs: docs}
}

func (s *InsightsService) GenerateInsights(ctx context.Context, meetingID string) (core.InsightsDocument, error) {
	transcript, err := s.docs.LoadTranscript(meetingID)
	if err != nil {
		return core.InsightsDocument{}, err
	}
	if strings.TrimSpace(transcript.Transcript) == "" {
		return core.InsightsDocument{}, fmt.Errorf("insights for meeting %s: %w: transcript is empty",
			meetingID, core.ErrInvalidInput)
	}
	log.Info().Str("meeting_id", meetingID).Msg("generating insights")

	insights, err := s.completer.Complete(ctx, insightsSystemPrompt, transcript.Transcript)
	if err != nil {
		return core.InsightsDocument{}, fmt.Errorf("insights for meeting %s: %w: %w",
			meetingID, core.ErrAnswerGeneration, err)
	}

	doc := core.InsightsDocument{
		MeetingID: meetingID,
		ProjectID: transcript.ProjectID,
		CreatedAt: time.Now().UTC(),
		Insights:  insights,
	}
	if err := s.docs.SaveInsights(doc); err != nil {
		return core.InsightsDocument{}, err
	}
	return doc, nil
}
