package core

import "time"

// Chunk is a contiguous window of transcript words, the atomic unit of
// embedding and retrieval. ChunkID is the 0-based emission index.
type Chunk struct {
	ChunkID     int    `json:"chunk_id"`
	Text        string `json:"text"`
	SourceWords int    `json:"source_words"`
}

// ChunkMetadata is the persisted per-chunk record keyed by chunk id.
type ChunkMetadata struct {
	ChunkID        int       `json:"chunk_id"`
	Text           string    `json:"text"`
	SourceWords    int       `json:"source_words"`
	EmbeddingModel string    `json:"embedding_model"`
	CreatedAt      time.Time `json:"created_at"`
}

// IndexMetadata is the metadata artifact stored alongside a vector index.
type IndexMetadata struct {
	MeetingID      string          `json:"meeting_id"`
	ProjectID      string          `json:"project_id"`
	CreatedAt      time.Time       `json:"created_at"`
	NumChunks      int             `json:"num_chunks"`
	ChunkWords     int             `json:"chunk_size_words"`
	OverlapWords   int             `json:"overlap_words"`
	EmbeddingModel string          `json:"embedding_model"`
	Dimension      int             `json:"dimension"`
	Chunks         []ChunkMetadata `json:"chunks"`
}

// SearchResult is one ranked hit from a similarity search.
type SearchResult struct {
	Rank            int     `json:"rank"`
	ChunkID         int     `json:"chunk_id"`
	Text            string  `json:"text"`
	SimilarityScore float64 `json:"similarity_score"`
	Distance        float64 `json:"distance"`
}

// QuerySource cites one chunk that grounded an answer.
type QuerySource struct {
	ChunkID         int     `json:"chunk_id"`
	SimilarityScore float64 `json:"similarity_score"`
	TextPreview     string  `json:"text_preview"`
}

// QueryRecord is one entry in a meeting's append-only query history.
type QueryRecord struct {
	MeetingID string        `json:"meeting_id"`
	Query     string        `json:"query"`
	Answer    string        `json:"answer"`
	Sources   []QuerySource `json:"sources"`
	Timestamp time.Time     `json:"timestamp"`
}

// TranscriptDocument is the persisted output of the transcription stage.
type TranscriptDocument struct {
	MeetingID  string    `json:"meeting_id"`
	ProjectID  string    `json:"project_id"`
	CreatedAt  time.Time `json:"created_at"`
	Transcript string    `json:"transcript"`
}

// SummaryDocument is the persisted output of the summarization stage.
type SummaryDocument struct {
	MeetingID string    `json:"meeting_id"`
	ProjectID string    `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
	Summary   string    `json:"summary"`
}

// InsightsDocument is the persisted output of the insights stage.
type InsightsDocument struct {
	MeetingID string    `json:"meeting_id"`
	ProjectID string    `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
	Insights  string    `json:"insights"`
}
