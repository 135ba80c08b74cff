package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"meetingMind/core"
)

// HistoryStore is the append-only per-meeting query log, one JSON array
// per meeting under <dataDir>/outputs/<id>_queries.json. Records are never
// mutated or deleted; order is insertion order.
type HistoryStore struct {
	mu  sync.Mutex
	dir string
}

func NewHistoryStore(dataDir string) (*HistoryStore, error) {
	dir := filepath.Join(dataDir, "outputs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create outputs dir: %w", err)
	}
	return &HistoryStore{dir: dir}, nil
}

func (h *HistoryStore) path(meetingID string) string {
	return filepath.Join(h.dir, meetingID+"_queries.json")
}

// Append adds a record to the meeting's history, creating the log if
// absent.
func (h *HistoryStore) Append(meetingID string, record core.QueryRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	records, err := h.read(meetingID)
	if err != nil {
		return err
	}
	records = append(records, record)
	if err := writeJSONFile(h.path(meetingID), records); err != nil {
		return fmt.Errorf("append query history for meeting %s: %w", meetingID, err)
	}
	return nil
}

// Fetch returns the meeting's query records in chronological order. A
// meeting with no history yields an empty slice.
func (h *HistoryStore) Fetch(meetingID string) ([]core.QueryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.read(meetingID)
}

func (h *HistoryStore) read(meetingID string) ([]core.QueryRecord, error) {
	records := []core.QueryRecord{}
	if err := readJSONFile(h.path(meetingID), &records); err != nil {
		if os.IsNotExist(err) {
			return records, nil
		}
		return nil, fmt.Errorf("read query history for meeting %s: %w: %v", meetingID, core.ErrCorruption, err)
	}
	return records, nil
}
