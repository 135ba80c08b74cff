package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"meetingMind/core"
)

// FileIndexStore keeps each meeting's embeddings as two JSON artifacts
// under <dataDir>/vectors: <id>.index.json (dimension + vectors) and
// <id>_meta.json (per-chunk metadata). Writes go to temp files that are
// renamed into place; both artifacts carry a shared snapshot id so a
// reader that catches the pair mid-swap gets ErrCorruption rather than a
// silent mix of two embedding runs.
type FileIndexStore struct {
	dir string
}

type indexArtifact struct {
	SnapshotID string      `json:"snapshot_id"`
	Dimension  int         `json:"dimension"`
	Vectors    [][]float32 `json:"vectors"`
}

type metaArtifact struct {
	SnapshotID string `json:"snapshot_id"`
	core.IndexMetadata
}

func NewFileIndexStore(dataDir string) (*FileIndexStore, error) {
	dir := filepath.Join(dataDir, "vectors")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create vectors dir: %w", err)
	}
	return &FileIndexStore{dir: dir}, nil
}

func (s *FileIndexStore) indexPath(meetingID string) string {
	return filepath.Join(s.dir, meetingID+".index.json")
}

func (s *FileIndexStore) metaPath(meetingID string) string {
	return filepath.Join(s.dir, meetingID+"_meta.json")
}

func (s *FileIndexStore) Save(ctx context.Context, meetingID string, index *FlatIndex, meta core.IndexMetadata) error {
	vectors := index.Vectors()
	if err := validateMetadata(meta, len(vectors)); err != nil {
		return fmt.Errorf("save meeting %s: %w", meetingID, err)
	}
	meta.CreatedAt = metadataCreatedAt(meta)
	meta.NumChunks = len(vectors)
	meta.Dimension = index.Dimension()

	snapshot := uuid.NewString()
	idx := indexArtifact{SnapshotID: snapshot, Dimension: index.Dimension(), Vectors: vectors}
	mta := metaArtifact{SnapshotID: snapshot, IndexMetadata: meta}

	if err := writeJSONFile(s.indexPath(meetingID), idx); err != nil {
		return fmt.Errorf("save meeting %s: write index: %w", meetingID, err)
	}
	if err := writeJSONFile(s.metaPath(meetingID), mta); err != nil {
		return fmt.Errorf("save meeting %s: write metadata: %w", meetingID, err)
	}
	log.Info().Str("meeting_id", meetingID).Int("chunks", len(vectors)).Msg("saved vector index")
	return nil
}

func (s *FileIndexStore) Load(ctx context.Context, meetingID string) (*FlatIndex, core.IndexMetadata, error) {
	var idx indexArtifact
	if err := readJSONFile(s.indexPath(meetingID), &idx); err != nil {
		if os.IsNotExist(err) {
			return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: index artifact: %w", meetingID, core.ErrNotFound)
		}
		return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: %w: %v", meetingID, core.ErrCorruption, err)
	}
	var mta metaArtifact
	if err := readJSONFile(s.metaPath(meetingID), &mta); err != nil {
		if os.IsNotExist(err) {
			return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: metadata artifact: %w", meetingID, core.ErrNotFound)
		}
		return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: %w: %v", meetingID, core.ErrCorruption, err)
	}
	if idx.SnapshotID != mta.SnapshotID {
		return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: %w: index and metadata are from different embedding runs",
			meetingID, core.ErrCorruption)
	}

	index := NewFlatIndex()
	for i, vec := range idx.Vectors {
		if _, err := index.Add(vec); err != nil {
			return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: vector %d: %w: %v",
				meetingID, i, core.ErrCorruption, err)
		}
	}
	if err := validateMetadata(mta.IndexMetadata, index.Len()); err != nil {
		return nil, core.IndexMetadata{}, fmt.Errorf("load meeting %s: %w", meetingID, err)
	}
	return index, mta.IndexMetadata, nil
}

func (s *FileIndexStore) Exists(ctx context.Context, meetingID string) bool {
	if _, err := os.Stat(s.indexPath(meetingID)); err != nil {
		return false
	}
	_, err := os.Stat(s.metaPath(meetingID))
	return err == nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
