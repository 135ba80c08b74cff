package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"meetingMind/core"
)

// IndexStore persists a meeting's vector index together with its chunk
// metadata. Save is all-or-nothing from the reader's perspective: Load
// never returns an index whose vector count disagrees with the metadata
// count for the same meeting.
type IndexStore interface {
	Save(ctx context.Context, meetingID string, index *FlatIndex, meta core.IndexMetadata) error
	Load(ctx context.Context, meetingID string) (*FlatIndex, core.IndexMetadata, error)
	Exists(ctx context.Context, meetingID string) bool
}

// validateMetadata rejects loosely-formed metadata at load time instead of
// propagating it forward.
func validateMetadata(meta core.IndexMetadata, vectorCount int) error {
	if meta.NumChunks != vectorCount || len(meta.Chunks) != vectorCount {
		return fmt.Errorf("%w: index has %d vectors, metadata has %d chunks (num_chunks=%d)",
			core.ErrCorruption, vectorCount, len(meta.Chunks), meta.NumChunks)
	}
	for i, ch := range meta.Chunks {
		if ch.ChunkID != i {
			return fmt.Errorf("%w: chunk at position %d has id %d", core.ErrCorruption, i, ch.ChunkID)
		}
		if strings.TrimSpace(ch.Text) == "" {
			return fmt.Errorf("%w: chunk %d has empty text", core.ErrCorruption, i)
		}
	}
	return nil
}

func metadataCreatedAt(meta core.IndexMetadata) time.Time {
	if meta.CreatedAt.IsZero() {
		return time.Now().UTC()
	}
	return meta.CreatedAt
}
