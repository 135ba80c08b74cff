package processors

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"meetingMind/core"
)

func makeWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return words
}

func TestChunkTranscriptWindows(t *testing.T) {
	words := makeWords(1200)
	chunks, err := ChunkTranscript(strings.Join(words, " "), 500, 50)
	if err != nil {
		t.Fatalf("ChunkTranscript() failed: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	spans := [][2]int{{0, 500}, {450, 950}, {900, 1200}}
	for i, chunk := range chunks {
		if chunk.ChunkID != i {
			t.Errorf("chunk %d: got id %d", i, chunk.ChunkID)
		}
		if chunk.SourceWords != 1200 {
			t.Errorf("chunk %d: got source words %d", i, chunk.SourceWords)
		}
		want := strings.Join(words[spans[i][0]:spans[i][1]], " ")
		if chunk.Text != want {
			t.Errorf("chunk %d: wrong word span, got %d words, want [%d,%d)",
				i, len(strings.Fields(chunk.Text)), spans[i][0], spans[i][1])
		}
	}
}

func TestChunkTranscriptSingleChunk(t *testing.T) {
	text := strings.Join(makeWords(500), " ")
	chunks, err := ChunkTranscript(text, 500, 50)
	if err != nil {
		t.Fatalf("ChunkTranscript() failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected exactly 1 chunk for N == window, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Error("single chunk should contain the whole text")
	}

	chunks, err = ChunkTranscript("just a few words", 500, 50)
	if err != nil {
		t.Fatalf("ChunkTranscript() failed: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Text != "just a few words" {
		t.Fatalf("short text should yield one chunk with the whole text, got %+v", chunks)
	}
}

func TestChunkTranscriptInvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		window  int
		overlap int
	}{
		{"empty text", "", 500, 50},
		{"whitespace only", "   \n\t ", 500, 50},
		{"overlap equals window", "some words here", 50, 50},
		{"overlap exceeds window", "some words here", 50, 60},
		{"zero window", "some words here", 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ChunkTranscript(tc.text, tc.window, tc.overlap); !errors.Is(err, core.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestChunkTranscriptReconstruction(t *testing.T) {
	for _, n := range []int{1, 37, 450, 451, 500, 501, 949, 1200, 2600} {
		words := makeWords(n)
		chunks, err := ChunkTranscript(strings.Join(words, " "), 500, 50)
		if err != nil {
			t.Fatalf("n=%d: ChunkTranscript() failed: %v", n, err)
		}
		// Removing the overlap from every chunk after the first must
		// reconstruct the original word sequence exactly.
		var rebuilt []string
		for i, chunk := range chunks {
			cw := strings.Fields(chunk.Text)
			if i > 0 {
				cw = cw[50:]
			}
			rebuilt = append(rebuilt, cw...)
		}
		if !reflect.DeepEqual(rebuilt, words) {
			t.Errorf("n=%d: reconstruction mismatch: got %d words", n, len(rebuilt))
		}
		for i, chunk := range chunks {
			if chunk.ChunkID != i {
				t.Errorf("n=%d: ids not contiguous at %d", n, i)
			}
			if len(strings.Fields(chunk.Text)) > 500 {
				t.Errorf("n=%d: chunk %d longer than window", n, i)
			}
		}
	}
}

func TestChunkTranscriptDeterminism(t *testing.T) {
	text := strings.Join(makeWords(1333), " ")
	first, err := ChunkTranscript(text, 200, 20)
	if err != nil {
		t.Fatalf("ChunkTranscript() failed: %v", err)
	}
	second, err := ChunkTranscript(text, 200, 20)
	if err != nil {
		t.Fatalf("ChunkTranscript() failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input must yield identical chunks")
	}
}

func TestChunkTranscriptNormalizesWhitespace(t *testing.T) {
	chunks, err := ChunkTranscript("alpha\t beta\n\ngamma  delta", 500, 50)
	if err != nil {
		t.Fatalf("ChunkTranscript() failed: %v", err)
	}
	if chunks[0].Text != "alpha beta gamma delta" {
		t.Errorf("words should be rejoined with single spaces, got %q", chunks[0].Text)
	}
}
