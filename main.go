package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"meetingMind/config"
	"meetingMind/processors"
	"meetingMind/server"
	"meetingMind/storage"
)

const configFilePath = "./config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	_ = godotenv.Load()

	cfg, err := config.Load(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("failed to create data dir")
	}

	docs, err := storage.NewDocumentStore(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init document store")
	}
	history, err := storage.NewHistoryStore(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init history store")
	}
	indexStore, err := newIndexStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("failed to init index store")
	}
	log.Info().Str("store", cfg.Store).Msg("index store initialized")

	// Provider clients are constructed once here and injected; nothing
	// below reaches for globals.
	oa := processors.NewOpenAIClient(cfg)
	embedder := processors.NewOpenAIEmbedder(oa, cfg.EmbeddingModel)
	completer := processors.NewOpenAIChatCompleter(oa, cfg.ChatModel)
	transcriber := processors.NewWhisperTranscriber(oa, cfg.TranscribeModel)

	transcription := processors.NewTranscriptionService(transcriber, docs)
	summary := processors.NewSummaryService(completer, docs)
	insights := processors.NewInsightsService(completer, docs)
	embedding := processors.NewEmbeddingService(embedder, docs, indexStore, cfg.ChunkWords, cfg.OverlapWords)
	search := processors.NewSearchService(embedder, indexStore, cfg.DefaultTopK)
	answer := processors.NewAnswerService(search, completer, history, cfg.DefaultTopK, cfg.ContextChunks)
	pipeline := processors.NewPipeline(transcription, summary, insights, embedding)

	srv := &server.Server{
		Docs:          docs,
		Store:         indexStore,
		History:       history,
		Transcription: transcription,
		Summary:       summary,
		Insights:      insights,
		Embedding:     embedding,
		Search:        search,
		Answer:        answer,
		Pipeline:      pipeline,
	}

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("server listening")
	if err := http.ListenAndServe(addr, srv.Routes()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newIndexStore(cfg *config.Config) (storage.IndexStore, error) {
	switch cfg.Store {
	case "pgvector":
		return storage.NewPgVectorIndexStore(context.Background(), cfg.PostgresURL)
	case "milvus":
		return storage.NewMilvusIndexStore(context.Background(), storage.MilvusConfig{
			Address:    cfg.MilvusAddr,
			Username:   cfg.MilvusUsername,
			Password:   cfg.MilvusPassword,
			Collection: cfg.MilvusCollection,
		})
	default:
		return storage.NewFileIndexStore(cfg.DataDir)
	}
}
