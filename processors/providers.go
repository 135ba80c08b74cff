package processors

import "context"

// Embedder turns one text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// ChatCompleter produces a natural-language completion for a prompt.
type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Transcriber converts a stored audio file into plain transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}
