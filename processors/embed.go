package processors

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"meetingMind/core"
	"meetingMind/storage"
)

// EmbeddingService runs the write path of the retrieval core: transcript →
// overlapping chunks → one embedding per chunk → flat index + metadata,
// persisted through the index store. Re-embedding a meeting replaces the
// previous run wholesale.
type EmbeddingService struct {
	embedder     Embedder
	docs         *storage.DocumentStore
	store        storage.IndexStore
	windowWords  int
	overlapWords int
}

func NewEmbeddingService(embedder Embedder, docs *storage.DocumentStore, store storage.IndexStore, windowWords, overlapWords int) *EmbeddingService {
	return &EmbeddingService{
		embedder:     embedder,
		docs:         docs,
		store:        store,
		windowWords:  windowWords,
		overlapWords: overlapWords,
	}
}

// EmbedTranscript chunks and embeds a meeting's transcript and saves the
// resulting index. Returns the number of chunks embedded.
func (s *EmbeddingService) EmbedTranscript(ctx context.Context, meetingID string) (int, error) {
	transcript, err := s.docs.LoadTranscript(meetingID)
	if err != nil {
		return 0, err
	}

	chunks, err := ChunkTranscript(transcript.Transcript, s.windowWords, s.overlapWords)
	if err != nil {
		return 0, fmt.Errorf("embed meeting %s: %w", meetingID, err)
	}
	log.Info().Str("meeting_id", meetingID).Int("chunks", len(chunks)).Msg("embedding transcript chunks")

	now := time.Now().UTC()
	index := storage.NewFlatIndex()
	meta := core.IndexMetadata{
		MeetingID:      meetingID,
		ProjectID:      transcript.ProjectID,
		CreatedAt:      now,
		NumChunks:      len(chunks),
		ChunkWords:     s.windowWords,
		OverlapWords:   s.overlapWords,
		EmbeddingModel: s.embedder.Model(),
	}
	for _, chunk := range chunks {
		vec, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return 0, fmt.Errorf("embed meeting %s: chunk %d: %w: %w",
				meetingID, chunk.ChunkID, core.ErrEmbeddingProvider, err)
		}
		if _, err := index.Add(vec); err != nil {
			return 0, fmt.Errorf("embed meeting %s: chunk %d: %w", meetingID, chunk.ChunkID, err)
		}
		meta.Chunks = append(meta.Chunks, core.ChunkMetadata{
			ChunkID:        chunk.ChunkID,
			Text:           chunk.Text,
			SourceWords:    chunk.SourceWords,
			EmbeddingModel: s.embedder.Model(),
			CreatedAt:      now,
		})
	}
	meta.Dimension = index.Dimension()

	if err := s.store.Save(ctx, meetingID, index, meta); err != nil {
		return 0, err
	}
	log.Info().Str("meeting_id", meetingID).Int("chunks", index.Len()).Msg("embedding complete")
	return index.Len(), nil
}
