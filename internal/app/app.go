package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chekout-ai/onboard/internal/config"
	"github.com/chekout-ai/onboard/internal/core"
	"github.com/chekout-ai/onboard/internal/core/catalog"
	"github.com/chekout-ai/onboard/internal/core/configgen"
	db "github.com/chekout-ai/onboard/internal/core/database"
	"github.com/chekout-ai/onboard/internal/core/ingestion"
	"github.com/chekout-ai/onboard/internal/core/llm"
	objectclient "github.com/chekout-ai/onboard/internal/core/object-client"
	"github.com/chekout-ai/onboard/internal/services"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Runner       *services.JobRunner
	Tracker      *services.StatusTracker
	Server       *Server

	embedder *llm.GeminiEmbedder
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	embedder, err := llm.Default(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
	}

	batcher := ingestion.NewEmbedBatcher(embedder, cfg.EmbedBatch)
	extractor := ingestion.NewDocconvExtractor()

	ingCfg := ingestion.IngestConfig{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		EmbedBatch:   cfg.EmbedBatch,
	}
	ingestor := ingestion.NewDocumentIngestor(dbClient, objClient, batcher, extractor, ingCfg)
	importer := catalog.NewProductImporter(dbClient, objClient, batcher)
	confgen := configgen.NewGenerator(objClient, cfg.BucketName)

	tracker := services.NewStatusTracker()
	svc := services.NewOnboardService(dbClient, objClient, importer, ingestor, confgen, tracker)

	runner, err := services.NewJobRunner(svc, tracker, cfg.Workers)
	if err != nil {
		return nil, err
	}

	server := NewServer(cfg, runner, tracker, confgen)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		Runner:       runner,
		Tracker:      tracker,
		Server:       server,
		embedder:     embedder,
	}, nil
}

func (a *App) Close() {
	if a.Runner != nil {
		a.Runner.Close()
	}
	if a.embedder != nil {
		_ = a.embedder.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
