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

const answerSystemPrompt = "You are an assistant that answers questions about meeting content. " +
	"Use only the provided meeting transcript chunks to answer the question. " +
	"If the answer isn't contained in the chunks, say you don't have enough information. " +
	"Be specific and cite relevant parts of the transcript."

// FallbackAnswer is returned when retrieval produces no grounding chunks;
// the completion provider is not called in that case.
const FallbackAnswer = "I don't have enough information to answer this question based on the meeting content."

const previewChars = 100

// AnswerService composes natural-language answers: retrieve the top
// chunks for a query, ground a chat completion on the best few, and append
// the interaction to the meeting's query history.
type AnswerService struct {
	search        *SearchService
	completer     ChatCompleter
	history       *storage.HistoryStore
	topK          int
	contextChunks int
}

func NewAnswerService(search *SearchService, completer ChatCompleter, history *storage.HistoryStore, topK, contextChunks int) *AnswerService {
	if topK <= 0 {
		topK = 5
	}
	if contextChunks <= 0 || contextChunks > topK {
		contextChunks = 3
	}
	return &AnswerService{
		search:        search,
		completer:     completer,
		history:       history,
		topK:          topK,
		contextChunks: contextChunks,
	}
}

func (s *AnswerService) Answer(ctx context.Context, meetingID, query string) (core.QueryRecord, error) {
	if strings.TrimSpace(query) == "" {
		return core.QueryRecord{}, fmt.Errorf("answer for meeting %s: %w: query is empty", meetingID, core.ErrInvalidInput)
	}

	results, err := s.search.Search(ctx, meetingID, query, s.topK)
	if err != nil {
		return core.QueryRecord{}, err
	}

	record := core.QueryRecord{
		MeetingID: meetingID,
		Query:     query,
		Sources:   []core.QuerySource{},
		Timestamp: time.Now().UTC(),
	}

	if len(results) == 0 {
		// The index search errors on an empty index, so this should not
		// happen; answer without calling the completion provider anyway.
		log.Warn().Str("meeting_id", meetingID).Msg("no chunks retrieved for query")
		record.Answer = FallbackAnswer
	} else {
		grounding := results
		if len(grounding) > s.contextChunks {
			grounding = grounding[:s.contextChunks]
		}
		answer, err := s.completer.Complete(ctx, answerSystemPrompt, buildAnswerPrompt(query, grounding))
		if err != nil {
			return core.QueryRecord{}, fmt.Errorf("answer for meeting %s: %w: %w",
				meetingID, core.ErrAnswerGeneration, err)
		}
		record.Answer = answer
		for _, r := range grounding {
			record.Sources = append(record.Sources, core.QuerySource{
				ChunkID:         r.ChunkID,
				SimilarityScore: r.SimilarityScore,
				TextPreview:     previewText(r.Text),
			})
		}
	}

	if err := s.history.Append(meetingID, record); err != nil {
		return core.QueryRecord{}, err
	}
	log.Info().Str("meeting_id", meetingID).Int("sources", len(record.Sources)).Msg("query answered")
	return record, nil
}

func buildAnswerPrompt(query string, chunks []core.SearchResult) string {
	parts := make([]string, 0, len(chunks))
	for i, c := range chunks {
		parts = append(parts, fmt.Sprintf("Chunk %d: %s", i+1, c.Text))
	}
	return fmt.Sprintf("Question: %s\n\nMeeting transcript chunks:\n%s", query, strings.Join(parts, "\n\n"))
}

func previewText(text string) string {
	if len(text) <= previewChars {
		return text
	}
	return text[:previewChars] + "..."
}
