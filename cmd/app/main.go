package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mosha-chat-backend/internal/config"
	"mosha-chat-backend/internal/domain/ports/adapter"
	aiAdapters "mosha-chat-backend/internal/infra/adapters/ai"
	"mosha-chat-backend/internal/infra/adapters/google"
	pg "mosha-chat-backend/internal/infra/db/postgres"
	"mosha-chat-backend/internal/infra/logging"
	"mosha-chat-backend/internal/infra/metrics"
	red "mosha-chat-backend/internal/infra/redis"
	"mosha-chat-backend/internal/infra/security"
	"mosha-chat-backend/internal/infra/web"
	"mosha-chat-backend/internal/infra/worker"
	"mosha-chat-backend/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop AI fallback, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	sessionStore := red.NewSessionStore(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Encryption (optional, for chat history at rest) ----
	var encSvc *security.EncryptionService
	if cfg.Security.EncryptionKey != "" {
		encSvc, err = security.NewEncryptionService(cfg.Security.EncryptionKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("encryption")
		}
	} else {
		logger.Warn().Msg("security.encryption_key not set; chat history stored in plaintext")
	}

	// ---- Repositories ----
	jobRepo := pg.NewChatJobRepo(pool)
	msgRepo := pg.NewChatMessageRepo(pool, encSvc)
	txManager := pg.NewTxManager(pool)

	// ---- Auth ----
	tokenManager, err := security.NewTokenManager(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("token manager")
	}
	verifier := google.NewTokenInfoVerifier(cfg.Session.GoogleClientID)

	// ---- AI adapter (Gemini -> OpenAI -> noop in dev) ----
	var ai adapter.AIServiceAdapter
	var aiProvider string
	switch {
	case cfg.AI.GeminiKey != "":
		aiProvider = "gemini"
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: Gemini")
	case cfg.AI.OpenAIKey != "":
		aiProvider = "openai"
		ai, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: OpenAI")
	case cfg.Runtime.Dev:
		aiProvider = "noop"
		ai = aiAdapters.NewNoopAIAdapter()
		logger.Warn().Msg("AI adapter: noop (dev mode, no provider configured)")
	default:
		logger.Fatal().Msgf("no AI provider configured: set ai.gemini_key or ai.openai_key in %s", *cfgPath)
	}
	ai = aiAdapters.NewLimitedAI(ai, aiProvider, cfg.AI.ConcurrentLimit)

	// ---- Worker pool + runner ----
	backoff := worker.NewLinear(cfg.Worker.BackoffBase, cfg.Worker.BackoffCap)
	runner := worker.NewJobRunner(
		jobRepo, msgRepo, ai,
		cfg.AI.DefaultModel,
		cfg.Worker.HistorySize,
		cfg.Worker.MaxAttempts,
		backoff,
		logger,
	)
	workerPool := worker.NewPool(cfg.Worker.Workers, cfg.Worker.QueueDepth, logger)
	workerPool.Start(ctx)
	dispatcher := worker.NewDispatcher(workerPool, runner)

	// ---- Use cases ----
	chatUC := usecase.NewChatUseCase(jobRepo, msgRepo, sessionStore, txManager, dispatcher, logger)
	authUC := usecase.NewAuthUseCase(verifier, tokenManager, sessionStore, logger)

	// ---- HTTP ----
	srv := web.NewServer(chatUC, authUC, rateLimiter, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}

	// Let in-flight generation finish before dropping the workers.
	workerPool.Stop()
	cancel()
}
