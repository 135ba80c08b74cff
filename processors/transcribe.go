package processors

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"meetingMind/core"
	"meetingMind/storage"
)

// DefaultProjectID tags artifacts that were created without an explicit
// project.
const DefaultProjectID = "demo_project"

// TranscriptionService runs the speech-to-text stage: it reads the stored
// audio for a meeting and persists the transcript document the later
// stages consume.
type TranscriptionService struct {
	transcriber Transcriber
	docs        *storage.DocumentStore
}

func NewTranscriptionService(transcriber Transcriber, docs *storage.DocumentStore) *TranscriptionService {
	return &TranscriptionService{transcriber: transcriber, docs: docs}
}

func (s *TranscriptionService) Transcribe(ctx context.Context, meetingID string) (core.TranscriptDocument, error) {
	audioPath, err := s.docs.AudioPath(meetingID)
	if err != nil {
		return core.TranscriptDocument{}, err
	}
	log.Info().Str("meeting_id", meetingID).Str("audio", audioPath).Msg("transcribing audio")

	text, err := s.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return core.TranscriptDocument{}, fmt.Errorf("transcribe meeting %s: %w: %w",
			meetingID, core.ErrTranscriptionProvider, err)
	}

	doc := core.TranscriptDocument{
		MeetingID:  meetingID,
		ProjectID:  DefaultProjectID,
		CreatedAt:  time.Now().UTC(),
		Transcript: text,
	}
	if err := s.docs.SaveTranscript(doc); err != nil {
		return core.TranscriptDocument{}, err
	}
	log.Info().Str("meeting_id", meetingID).Int("chars", len(text)).Msg("transcription complete")
	return doc, nil
}
