package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/rs/zerolog/log"

	"meetingMind/core"
)

// MilvusIndexStore persists meeting chunks in a Milvus collection. One
// embedding run replaces the previous one: Save deletes the meeting's rows
// and inserts the new columns. Load pulls the rows back and rebuilds the
// flat index, so ranking semantics stay identical across backends.
type MilvusIndexStore struct {
	mc   client.Client
	coll string
	dim  int
}

type MilvusConfig struct {
	Address    string
	Username   string
	Password   string
	Collection string
}

func NewMilvusIndexStore(ctx context.Context, cfg MilvusConfig) (*MilvusIndexStore, error) {
	mc, err := client.NewClient(ctx, client.Config{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("connect milvus: %w", err)
	}
	coll := cfg.Collection
	if coll == "" {
		coll = "meeting_chunks"
	}
	return &MilvusIndexStore{mc: mc, coll: coll}, nil
}

func (s *MilvusIndexStore) ensureCollection(ctx context.Context, dim int) error {
	has, err := s.mc.HasCollection(ctx, s.coll)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if !has {
		schema := entity.NewSchema().WithName(s.coll)
		schema.WithField(entity.NewField().WithName("id").WithIsAutoID(true).WithIsPrimaryKey(true).WithDataType(entity.FieldTypeInt64))
		schema.WithField(entity.NewField().WithName("meeting_id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(128))
		schema.WithField(entity.NewField().WithName("chunk_id").WithDataType(entity.FieldTypeInt64))
		schema.WithField(entity.NewField().WithName("text").WithDataType(entity.FieldTypeVarChar).WithMaxLength(8192))
		schema.WithField(entity.NewField().WithName("source_words").WithDataType(entity.FieldTypeInt64))
		schema.WithField(entity.NewField().WithName("embedding_model").WithDataType(entity.FieldTypeVarChar).WithMaxLength(256))
		schema.WithField(entity.NewField().WithName("vector").WithDataType(entity.FieldTypeFloatVector).WithDim(int64(dim)))
		if err := s.mc.CreateCollection(ctx, schema, int32(2)); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}
		idx, err := entity.NewIndexFlat(entity.L2)
		if err != nil {
			return fmt.Errorf("new flat index: %w", err)
		}
		if err := s.mc.CreateIndex(ctx, s.coll, "vector", idx, false, client.WithIndexName("idx_vector")); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	if err := s.mc.LoadCollection(ctx, s.coll, false); err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	s.dim = dim
	return nil
}

func meetingFilter(meetingID string) string {
	return fmt.Sprintf("meeting_id == %q", strings.ReplaceAll(meetingID, `"`, `\"`))
}

func (s *MilvusIndexStore) Save(ctx context.Context, meetingID string, index *FlatIndex, meta core.IndexMetadata) error {
	vectors := index.Vectors()
	if err := validateMetadata(meta, len(vectors)); err != nil {
		return fmt.Errorf("save meeting %s: %w", meetingID, err)
	}
	if err := s.ensureCollection(ctx, index.Dimension()); err != nil {
		return fmt.Errorf("save meeting %s: %w", meetingID, err)
	}
	if err := s.mc.Delete(ctx, s.coll, "", meetingFilter(meetingID)); err != nil {
		return fmt.Errorf("save meeting %s: clear previous run: %w", meetingID, err)
	}

	n := len(vectors)
	meetingIDs := make([]string, n)
	chunkIDs := make([]int64, n)
	texts := make([]string, n)
	sourceWords := make([]int64, n)
	models := make([]string, n)
	for i, ch := range meta.Chunks {
		meetingIDs[i] = meetingID
		chunkIDs[i] = int64(ch.ChunkID)
		texts[i] = ch.Text
		sourceWords[i] = int64(ch.SourceWords)
		models[i] = ch.EmbeddingModel
	}
	_, err := s.mc.Insert(ctx, s.coll, "",
		entity.NewColumnVarChar("meeting_id", meetingIDs),
		entity.NewColumnInt64("chunk_id", chunkIDs),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnInt64("source_words", sourceWords),
		entity.NewColumnVarChar("embedding_model", models),
		entity.NewColumnFloatVector("vector", s.dim, vectors),
	)
	if err != nil {
		return fmt.Errorf("save meeting %s: insert: %w", meetingID, err)
	}
	if err := s.mc.Flush(ctx, s.coll, false); err != nil {
		return fmt.Errorf("save meeting %s: flush: %w", meetingID, err)
	}
	log.Info().Str("meeting_id", meetingID).Int("chunks", n).Msg("saved vector index to milvus")
	return nil
}

func (s *MilvusIndexStore) Load(ctx context.Context, meetingID string) (*FlatIndex, core.IndexMetadata, error) {
	has, err := s.mc.HasCollection(ctx, s.coll)
	if err != nil {
		return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: %w", meetingID, err)
	}
	if !has {
		return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: %w", meetingID, core.ErrNotFound)
	}
	if err := s.mc.LoadCollection(ctx, s.coll, false); err != nil {
		return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: %w", meetingID, err)
	}
	res, err := s.mc.Query(ctx, s.coll, nil, meetingFilter(meetingID),
		[]string{"chunk_id", "text", "source_words", "embedding_model", "vector"})
	if err != nil {
		return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: query: %w", meetingID, err)
	}

	cols := map[string]entity.Column{}
	for _, c := range res {
		cols[c.Name()] = c
	}
	chunkCol, ok1 := cols["chunk_id"].(*entity.ColumnInt64)
	textCol, ok2 := cols["text"].(*entity.ColumnVarChar)
	wordsCol, ok3 := cols["source_words"].(*entity.ColumnInt64)
	modelCol, ok4 := cols["embedding_model"].(*entity.ColumnVarChar)
	vecCol, ok5 := cols["vector"].(*entity.ColumnFloatVector)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: %w: unexpected column types", meetingID, core.ErrCorruption)
	}
	n := chunkCol.Len()
	if n == 0 {
		return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: %w", meetingID, core.ErrNotFound)
	}
	if textCol.Len() != n || wordsCol.Len() != n || modelCol.Len() != n || len(vecCol.Data()) != n {
		return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: %w: column lengths disagree", meetingID, core.ErrCorruption)
	}

	// Query order is not guaranteed; rebuild in chunk id order.
	type row struct {
		chunk core.ChunkMetadata
		vec   []float32
	}
	rows := make([]row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, row{
			chunk: core.ChunkMetadata{
				ChunkID:        int(chunkCol.Data()[i]),
				Text:           textCol.Data()[i],
				SourceWords:    int(wordsCol.Data()[i]),
				EmbeddingModel: modelCol.Data()[i],
			},
			vec: vecCol.Data()[i],
		})
	}
	sort.Slice(rows, func(a, b int) bool { return rows[a].chunk.ChunkID < rows[b].chunk.ChunkID })

	index := NewFlatIndex()
	meta := core.IndexMetadata{MeetingID: meetingID}
	for _, r := range rows {
		if _, err := index.Add(r.vec); err != nil {
			return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: chunk %d: %w: %v",
				meetingID, r.chunk.ChunkID, core.ErrCorruption, err)
		}
		meta.EmbeddingModel = r.chunk.EmbeddingModel
		meta.Chunks = append(meta.Chunks, r.chunk)
	}
	meta.NumChunks = index.Len()
	meta.Dimension = index.Dimension()
	if err := validateMetadata(meta, index.Len()); err != nil {
		return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: %w", meetingID, err)
	}
	return index, meta, nil
}

func (s *MilvusIndexStore) Exists(ctx context.Context, meetingID string) bool {
	has, err := s.mc.HasCollection(ctx, s.coll)
	if err != nil || !has {
		return false
	}
	if err := s.mc.LoadCollection(ctx, s.coll, false); err != nil {
		return false
	}
	res, err := s.mc.Query(ctx, s.coll, nil, meetingFilter(meetingID), []string{"chunk_id"})
	if err != nil {
		return false
	}
	for _, c := range res {
		if c.Name() == "chunk_id" {
			return c.Len() > 0
		}
	}
	return false
}

// Close releases the Milvus client.
func (s *MilvusIndexStore) Close() error {
	return s.mc.Close()
}
