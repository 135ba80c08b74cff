package processors

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"meetingMind/config"
)

// NewOpenAIClient builds the single provider client shared by the
// embedding, chat and transcription adapters. Constructed once at startup
// and injected into the services that need it.
func NewOpenAIClient(cfg *config.Config) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientConfig)
}

// OpenAIEmbedder adapts the embeddings endpoint to the Embedder interface.
type OpenAIEmbedder struct {
	cli   *openai.Client
	model string
}

func NewOpenAIEmbedder(cli *openai.Client, model string) *OpenAIEmbedder {
	return &OpenAIEmbedder{cli: cli, model: model}
}

func (e *OpenAIEmbedder) Model() string { return e.model }

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.cli.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding API: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding API: no embeddings returned")
	}
	return resp.Data[0].Embedding, nil
}

// OpenAIChatCompleter adapts the chat completions endpoint.
type OpenAIChatCompleter struct {
	cli         *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewOpenAIChatCompleter(cli *openai.Client, model string) *OpenAIChatCompleter {
	return &OpenAIChatCompleter{cli: cli, model: model, maxTokens: 1000, temperature: 0.3}
}

func (c *OpenAIChatCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []openai.ChatCompletionMessage{}
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})
	resp, err := c.cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion API: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// WhisperTranscriber adapts the audio transcription endpoint.
type WhisperTranscriber struct {
	cli   *openai.Client
	model string
}

func NewWhisperTranscriber(cli *openai.Client, model string) *WhisperTranscriber {
	return &WhisperTranscriber{cli: cli, model: model}
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := t.cli.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		return "", fmt.Errorf("transcription API: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("transcription API: empty transcription result")
	}
	return text, nil
}
