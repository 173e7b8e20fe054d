package bootstrap

import (
	"fmt"
	"time"

	"docbrain/internal/ai"
	appsvc "docbrain/internal/app"
	"docbrain/internal/config"
	"docbrain/internal/pkg/logger"
)

type App struct {
	Config *config.Config
	Ollama *ai.OllamaClient
	Engine *appsvc.KnowledgeEngine
	Chat   *appsvc.ChatService

	StartedAt time.Time
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)

	ollama := ai.NewOllamaClient(ai.OllamaConfig{
		BaseURL:        cfg.Ollama.BaseURL,
		ChatModel:      cfg.Ollama.ChatModel,
		EmbeddingModel: cfg.Ollama.EmbeddingModel,
		Timeout:        time.Duration(cfg.Ollama.TimeoutSeconds) * time.Second,
	})

	engine := appsvc.NewKnowledgeEngine(appsvc.EngineConfig{
		StoreDir:        cfg.Store.Dir,
		ChunkSize:       cfg.Ingest.ChunkSize,
		ChunkOverlap:    cfg.Ingest.ChunkOverlap,
		TopK:            cfg.Retrieval.TopK,
		MinScore:        cfg.Retrieval.MinScore,
		ReplaceExisting: cfg.Ingest.ReplaceExisting,
	}, ollama, ollama, nil)

	return &App{
		Config:    cfg,
		Ollama:    ollama,
		Engine:    engine,
		Chat:      appsvc.NewChatService(engine),
		StartedAt: time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Engine != nil {
		if err := a.Engine.Close(); err != nil {
			closeErr = err
		}
	}
	logger.Sync()
	return closeErr
}
