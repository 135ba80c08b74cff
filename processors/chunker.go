package processors

import (
	"fmt"
	"strings"

	"meetingMind/core"
)

// ChunkTranscript splits text into overlapping word windows. Windows are
// windowWords long (the last one is clipped to the remaining words) and
// consecutive windows share overlapWords words. Identical input always
// yields identical chunk boundaries and ids.
func ChunkTranscript(text string, windowWords, overlapWords int) ([]core.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("chunk transcript: %w: text is empty", core.ErrInvalidInput)
	}
	if windowWords <= 0 {
		return nil, fmt.Errorf("chunk transcript: %w: window of %d words", core.ErrInvalidInput, windowWords)
	}
	if overlapWords < 0 || overlapWords >= windowWords {
		return nil, fmt.Errorf("chunk transcript: %w: overlap %d must be non-negative and smaller than window %d",
			core.ErrInvalidInput, overlapWords, windowWords)
	}

	words := strings.Fields(text)
	n := len(words)

	var chunks []core.Chunk
	start := 0
	for start < n {
		end := start + windowWords
		if end > n {
			end = n
		}
		chunks = append(chunks, core.Chunk{
			ChunkID:     len(chunks),
			Text:        strings.Join(words[start:end], " "),
			SourceWords: n,
		})
		if end >= n {
			break
		}
		start = end - overlapWords
	}
	return chunks, nil
}
