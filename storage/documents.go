package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"meetingMind/core"
)

// DocumentStore handles the plain file artifacts around the vector index:
// uploaded audio, transcripts, summaries and insights. Layout mirrors the
// pipeline stages:
//
//	<dataDir>/audio/<id>_audio<ext>
//	<dataDir>/transcripts/<id>.json
//	<dataDir>/outputs/<id>_summary.json
//	<dataDir>/outputs/<id>_insights.json
type DocumentStore struct {
	dataDir string
}

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".flac": true, ".ogg": true, ".aac": true,
}

func NewDocumentStore(dataDir string) (*DocumentStore, error) {
	for _, sub := range []string{"audio", "transcripts", "outputs"} {
		if err := os.MkdirAll(filepath.Join(dataDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create %s dir: %w", sub, err)
		}
	}
	return &DocumentStore{dataDir: dataDir}, nil
}

// SaveAudio streams an uploaded audio file under the meeting id and
// returns the stored filename. Unknown extensions default to .mp3, same
// as the upload contract.
func (d *DocumentStore) SaveAudio(meetingID, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !audioExtensions[ext] {
		ext = ".mp3"
	}
	name := meetingID + "_audio" + ext
	f, err := os.Create(filepath.Join(d.dataDir, "audio", name))
	if err != nil {
		return "", fmt.Errorf("save audio for meeting %s: %w", meetingID, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("save audio for meeting %s: %w", meetingID, err)
	}
	return name, nil
}

// AudioPath locates the stored audio file for a meeting, whatever its
// extension.
func (d *DocumentStore) AudioPath(meetingID string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(d.dataDir, "audio", meetingID+"_audio.*"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("audio for meeting %s: %w", meetingID, core.ErrNotFound)
	}
	return matches[0], nil
}

func (d *DocumentStore) transcriptPath(meetingID string) string {
	return filepath.Join(d.dataDir, "transcripts", meetingID+".json")
}

func (d *DocumentStore) SaveTranscript(doc core.TranscriptDocument) error {
	if err := writeJSONFile(d.transcriptPath(doc.MeetingID), doc); err != nil {
		return fmt.Errorf("save transcript for meeting %s: %w", doc.MeetingID, err)
	}
	return nil
}

func (d *DocumentStore) LoadTranscript(meetingID string) (core.TranscriptDocument, error) {
	var doc core.TranscriptDocument
	if err := readJSONFile(d.transcriptPath(meetingID), &doc); err != nil {
		if os.IsNotExist(err) {
			return doc, fmt.Errorf("transcript for meeting %s: %w", meetingID, core.ErrNotFound)
		}
		return doc, fmt.Errorf("transcript for meeting %s: %w: %v", meetingID, core.ErrCorruption, err)
	}
	return doc, nil
}

func (d *DocumentStore) HasTranscript(meetingID string) bool {
	_, err := os.Stat(d.transcriptPath(meetingID))
	return err == nil
}

func (d *DocumentStore) outputPath(meetingID, kind string) string {
	return filepath.Join(d.dataDir, "outputs", meetingID+"_"+kind+".json")
}

func (d *DocumentStore) SaveSummary(doc core.SummaryDocument) error {
	if err := writeJSONFile(d.outputPath(doc.MeetingID, "summary"), doc); err != nil {
		return fmt.Errorf("save summary for meeting %s: %w", doc.MeetingID, err)
	}
	return nil
}

func (d *DocumentStore) LoadSummary(meetingID string) (core.SummaryDocument, error) {
	var doc core.SummaryDocument
	if err := readJSONFile(d.outputPath(meetingID, "summary"), &doc); err != nil {
		if os.IsNotExist(err) {
			return doc, fmt.Errorf("summary for meeting %s: %w", meetingID, core.ErrNotFound)
		}
		return doc, fmt.Errorf("summary for meeting %s: %w: %v", meetingID, core.ErrCorruption, err)
	}
	return doc, nil
}

func (d *DocumentStore) HasSummary(meetingID string) bool {
	_, err := os.Stat(d.outputPath(meetingID, "summary"))
	return err == nil
}

func (d *DocumentStore) SaveInsights(doc core.InsightsDocument) error {
	if err := writeJSONFile(d.outputPath(doc.MeetingID, "insights"), doc); err != nil {
		return fmt.Errorf("save insights for meeting %s: %w", doc.MeetingID, err)
	}
	return nil
}

func (d *DocumentStore) LoadInsights(meetingID string) (core.InsightsDocument, error) {
	var doc core.InsightsDocument
	if err := readJSONFile(d.outputPath(meetingID, "insights"), &doc); err != nil {
		if os.IsNotExist(err) {
			return doc, fmt.Errorf("insights for meeting %s: %w", meetingID, core.ErrNotFound)
		}
		return doc, fmt.Errorf("insights for meeting %s: %w: %v", meetingID, core.ErrCorruption, err)
	}
	return doc, nil
}

func (d *DocumentStore) HasInsights(meetingID string) bool {
	_, err := os.Stat(d.outputPath(meetingID, "insights"))
	return err == nil
}

func (d *DocumentStore) HasAudio(meetingID string) bool {
	_, err := d.AudioPath(meetingID)
	return err == nil
}
