package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"

	"meetingMind/core"
)

// PgVectorIndexStore persists meeting chunks as rows in Postgres with a
// pgvector embedding column. Save runs in a transaction, so readers see
// either the previous embedding run or the new one, never a mix. Load
// rebuilds the flat index from the rows in chunk order; search semantics
// stay in FlatIndex.
type PgVectorIndexStore struct {
	conn *pgx.Conn
}

func NewPgVectorIndexStore(ctx context.Context, dbURL string) (*PgVectorIndexStore, error) {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &PgVectorIndexStore{conn: conn}
	if err := s.ensureSchema(ctx); err != nil {
		conn.Close(ctx)
		return nil, err
	}
	return s, nil
}

func (s *PgVectorIndexStore) ensureSchema(ctx context.Context) error {
	if _, err := s.conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector;"); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	ddl := `
		CREATE TABLE IF NOT EXISTS meeting_chunks (
			id SERIAL PRIMARY KEY,
			meeting_id VARCHAR(255) NOT NULL,
			chunk_id INT NOT NULL,
			text TEXT NOT NULL,
			source_words INT NOT NULL,
			embedding_model VARCHAR(255) NOT NULL,
			project_id VARCHAR(255),
			chunk_words INT NOT NULL DEFAULT 0,
			overlap_words INT NOT NULL DEFAULT 0,
			embedding vector NOT NULL,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(meeting_id, chunk_id)
		);
	`
	if _, err := s.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create meeting_chunks table: %w", err)
	}
	if _, err := s.conn.Exec(ctx,
		"CREATE INDEX IF NOT EXISTS idx_meeting_chunks_meeting_id ON meeting_chunks(meeting_id);"); err != nil {
		return fmt.Errorf("create meeting_id index: %w", err)
	}
	return nil
}

func (s *PgVectorIndexStore) Save(ctx context.Context, meetingID string, index *FlatIndex, meta core.IndexMetadata) error {
	vectors := index.Vectors()
	if err := validateMetadata(meta, len(vectors)); err != nil {
		return fmt.Errorf("save meeting %s: %w", meetingID, err)
	}
	createdAt := metadataCreatedAt(meta)

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save meeting %s: begin: %w", meetingID, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM meeting_chunks WHERE meeting_id = $1", meetingID); err != nil {
		return fmt.Errorf("save meeting %s: clear previous run: %w", meetingID, err)
	}
	for i, ch := range meta.Chunks {
		vec := pgvector.NewVector(vectors[i])
		_, err := tx.Exec(ctx, `
			INSERT INTO meeting_chunks
				(meeting_id, chunk_id, text, source_words, embedding_model, project_id, chunk_words, overlap_words, embedding, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, meetingID, ch.ChunkID, ch.Text, ch.SourceWords, ch.EmbeddingModel,
			meta.ProjectID, meta.ChunkWords, meta.OverlapWords, vec, createdAt)
		if err != nil {
			return fmt.Errorf("save meeting %s: insert chunk %d: %w", meetingID, ch.ChunkID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("save meeting %s: commit: %w", meetingID, err)
	}
	log.Info().Str("meeting_id", meetingID).Int("chunks", len(vectors)).Msg("saved vector index to postgres")
	return nil
}

func (s *PgVectorIndexStore) Load(ctx context.Context, meetingID string) (*FlatIndex, core.IndexMetadata, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT chunk_id, text, source_words, embedding_model, project_id, chunk_words, overlap_words, embedding, created_at
		FROM meeting_chunks
		WHERE meeting_id = $1
		ORDER BY chunk_id
	`, meetingID)
	if err != nil {
		return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: query: %w", meetingID, err)
	}
	defer rows.Close()

	index := NewFlatIndex()
	meta := core.IndexMetadata{MeetingID: meetingID}
	for rows.Next() {
		var ch core.ChunkMetadata
		var vec pgvector.Vector
		if err := rows.Scan(&ch.ChunkID, &ch.Text, &ch.SourceWords, &ch.EmbeddingModel,
			&meta.ProjectID, &meta.ChunkWords, &meta.OverlapWords, &vec, &ch.CreatedAt); err != nil {
			return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: %w: %v", meetingID, core.ErrCorruption, err)
		}
		if _, err := index.Add(vec.Slice()); err != nil {
			return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: chunk %d: %w: %v",
				meetingID, ch.ChunkID, core.ErrCorruption, err)
		}
		meta.EmbeddingModel = ch.EmbeddingModel
		meta.CreatedAt = ch.CreatedAt
		meta.Chunks = append(meta.Chunks, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: %w", meetingID, err)
	}
	if index.Len() == 0 {
		return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: %w", meetingID, core.ErrNotFound)
	}
	meta.NumChunks = index.Len()
	meta.Dimension = index.Dimension()
	if err := validateMetadata(meta, index.Len()); err != nil {
		return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: %w", meetingID, err)
	}
	return index, meta, nil
}

func (s *PgVectorIndexStore) Exists(ctx context.Context, meetingID string) bool {
	var exists bool
	err := s.conn.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM meeting_chunks WHERE meeting_id = $1)", meetingID).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Warn().Err(err).Str("meeting_id", meetingID).Msg("existence check failed")
		return false
	}
	return exists
}

// Close releases the database connection.
func (s *PgVectorIndexStore) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}
