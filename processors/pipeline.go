package processors

import (
	"context"

	"github.com/rs/zerolog/log"
)

// PipelineResult reports how far the end-to-end run got for one meeting.
type PipelineResult struct {
	MeetingID      string   `json:"meeting_id"`
	Status         string   `json:"status"`
	StepsCompleted []string `json:"steps_completed"`
	NumChunks      int      `json:"num_chunks,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// Pipeline chains the stages for one uploaded meeting: transcribe →
// summarize → insights → embed. Each stage persists its own artifact; the
// run stops at the first failure and reports the steps that finished.
type Pipeline struct {
	transcription *TranscriptionService
	summary       *SummaryService
	insights      *InsightsService
	embedding     *EmbeddingService
}

func NewPipeline(t *TranscriptionService, s *SummaryService, i *InsightsService, e *EmbeddingService) *Pipeline {
	return &Pipeline{transcription: t, summary: s, insights: i, embedding: e}
}

func (p *Pipeline) Process(ctx context.Context, meetingID string) PipelineResult {
	result := PipelineResult{MeetingID: meetingID, Status: "completed", StepsCompleted: []string{}}

	fail := func(step string, err error) PipelineResult {
		log.Error().Err(err).Str("meeting_id", meetingID).Str("step", step).Msg("pipeline step failed")
		result.Status = "failed"
		result.Error = err.Error()
		return result
	}

	if _, err := p.transcription.Transcribe(ctx, meetingID); err != nil {
		return fail("transcription", err)
	}
	result.StepsCompleted = append(result.StepsCompleted, "transcription")

	if _, err := p.summary.Summarize(ctx, meetingID); err != nil {
		return fail("summary", err)
	}
	result.StepsCompleted = append(result.StepsCompleted, "summary")

	if _, err := p.insights.GenerateInsights(ctx, meetingID); err != nil {
		return fail("insights", err)
	}
	result.StepsCompleted = append(result.StepsCompleted, "insights")

	numChunks, err := p.embedding.EmbedTranscript(ctx, meetingID)
	if err != nil {
		return fail("embedding", err)
	}
	result.StepsCompleted = append(result.StepsCompleted, "embedding")
	result.NumChunks = numChunks

	log.Info().Str("meeting_id", meetingID).Msg("pipeline complete")
	return result
}
