package core

import "errors"

// Failure taxonomy for the pipeline. Callers classify with errors.Is; the
// stages wrap these with the meeting id and operation via fmt.Errorf and %w.
var (
	// ErrInvalidInput: caller-supplied text or parameters are unusable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound: a stored artifact for the meeting does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotEmbedded: the meeting has no stored vector index; the embed
	// step must run first.
	ErrNotEmbedded = errors.New("meeting not embedded")

	// ErrDimensionMismatch: a vector's length disagrees with the
	// dimension established by the index's first insert.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrCorruption: stored index and metadata disagree or cannot be
	// decoded. Fatal for the meeting until it is re-embedded.
	ErrCorruption = errors.New("stored embedding data corrupted")

	// ErrEmptyIndex: search against an index with no vectors. Indicates
	// an upstream embed step produced zero chunks.
	ErrEmptyIndex = errors.New("vector index is empty")

	// ErrEmbeddingProvider: the embedding API call failed.
	ErrEmbeddingProvider = errors.New("embedding provider failure")

	// ErrTranscriptionProvider: the speech-to-text API call failed.
	ErrTranscriptionProvider = errors.New("transcription provider failure")

	// ErrAnswerGeneration: the chat-completion API call failed.
	ErrAnswerGeneration = errors.New("answer generation failure")
)
