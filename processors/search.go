package processors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"meetingMind/core"
	"meetingMind/storage"
)

// SearchService is the read path of the retrieval core: embed the query,
// scan the meeting's flat index, and join the neighbors with their chunk
// texts. Ranks are 1-based and ascend with distance.
type SearchService struct {
	embedder    Embedder
	store       storage.IndexStore
	defaultTopK int
}

func NewSearchService(embedder Embedder, store storage.IndexStore, defaultTopK int) *SearchService {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &SearchService{embedder: embedder, store: store, defaultTopK: defaultTopK}
}

func (s *SearchService) Search(ctx context.Context, meetingID, queryText string, topK int) ([]core.SearchResult, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, fmt.Errorf("search meeting %s: %w: query text is empty", meetingID, core.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = s.defaultTopK
	}

	index, meta, err := s.store.Load(ctx, meetingID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("search meeting %s: %w", meetingID, core.ErrNotEmbedded)
		}
		return nil, err
	}

	queryVec, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("search meeting %s: embed query: %w: %w",
			meetingID, core.ErrEmbeddingProvider, err)
	}

	neighbors, err := index.Search(queryVec, topK)
	if err != nil {
		return nil, fmt.Errorf("search meeting %s: %w", meetingID, err)
	}

	results := make([]core.SearchResult, 0, len(neighbors))
	for i, nb := range neighbors {
		if nb.Position >= len(meta.Chunks) {
			return nil, fmt.Errorf("search meeting %s: %w: position %d has no chunk metadata",
				meetingID, core.ErrCorruption, nb.Position)
		}
		chunk := meta.Chunks[nb.Position]
		results = append(results, core.SearchResult{
			Rank:            i + 1,
			ChunkID:         chunk.ChunkID,
			Text:            chunk.Text,
			SimilarityScore: storage.SimilarityFromDistance(nb.Distance),
			Distance:        nb.Distance,
		})
	}
	log.Debug().Str("meeting_id", meetingID).Int("results", len(results)).Msg("similarity search complete")
	return results, nil
}
