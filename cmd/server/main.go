package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"google.golang.org/genai"

	"artlens-core/internal/adapter/api"
	"artlens-core/internal/adapter/client"
	"artlens-core/internal/adapter/store"
	"artlens-core/internal/config"
	"artlens-core/internal/domain/repository"
	"artlens-core/internal/pkg/logger"
	"artlens-core/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	zlog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	// Durable stores (recognition + quiz) go to Redis when configured;
	// otherwise everything lives in memory and dies with the process.
	var (
		recognitions repository.RecognitionStore
		quizzes      repository.QuizStore
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			zlog.Fatal("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
		}
		recognitions = store.NewRedisRecognitionStore(rdb)
		quizzes = store.NewRedisQuizStore(rdb)
		zlog.Info("using redis-backed stores", "addr", cfg.RedisAddr)
	} else {
		recognitions = store.NewMemoryRecognitionStore(cfg.RecognitionCapacity)
		quizzes = store.NewMemoryQuizStore()
		zlog.Warn("REDIS_ADDR not set, recognition and quiz state will not survive restarts")
	}

	// The response cache is cheap to regenerate and stays in memory.
	responses := store.NewMemoryResponseCache(cfg.ResponseCapacity)

	// External collaborators: real Gemini clients or the simulated demo
	// pair, chosen explicitly by configuration.
	var (
		vision  repository.VisionProvider
		content repository.ContentProvider
	)
	if cfg.SimulatedAI {
		zlog.Warn("SIMULATED_AI enabled, serving canned demo recognitions")
		vision = client.NewSimulatedVision()
		content = client.NewSimulatedText()
	} else {
		genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			Project:  cfg.GoogleProject,
			Location: cfg.GoogleLocation,
			Backend:  genai.BackendVertexAI,
		})
		if err != nil {
			zlog.Fatal("failed to init genai client", "error", err)
		}
		vision = client.NewGeminiVision(genaiClient, cfg.VisionModel)
		content = usecase.NewResilientContent(
			client.NewGeminiText(genaiClient, cfg.TextModel),
			client.NewGeminiText(genaiClient, cfg.FallbackModel),
			cfg.CallTimeout, cfg.MaxRetries,
		)
		vision = usecase.NewResilientVision(vision, cfg.CallTimeout, cfg.MaxRetries)
	}

	orchestrator := usecase.NewOrchestrator(recognitions, responses, quizzes, vision, content, zlog, usecase.Options{
		ContentTTL:    cfg.ContentTTL,
		MinConfidence: cfg.MinConfidence,
	})

	app := fiber.New(fiber.Config{
		AppName:   "ArtLens Core",
		BodyLimit: cfg.MaxUploadBytes,
	})
	handler := api.NewArtworkHandler(orchestrator)
	api.SetupRouter(app, handler, cfg.AppVersion, cfg.Env)

	zlog.Info("ArtLens core running", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", "error", err)
	}
}
