package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"LivingHistory/server/internal/characters"
	"LivingHistory/server/internal/config"
	"LivingHistory/server/internal/engine"
	"LivingHistory/server/internal/generators"
	"LivingHistory/server/internal/session"
	"LivingHistory/server/internal/storage"
	"LivingHistory/server/internal/web"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		cfg = config.Default()
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// The storyline store degrades to in-memory when Redis is unreachable;
	// saved games then live only for the process lifetime.
	var store storage.Store
	redisStore, err := storage.NewRedisStore(cfg.Database.Redis)
	if err != nil {
		logger.Warn("redis unavailable, using in-memory store", zap.Error(err))
		store = storage.NewMemoryStore()
	} else {
		defer redisStore.Close()
		logger.Info("redis connected")
		store = redisStore
	}

	mysqlStore, err := storage.NewMySQLStore(cfg.Database.MySQL)
	if err != nil {
		logger.Warn("mysql unavailable, custom characters disabled", zap.Error(err))
		mysqlStore = nil
	} else {
		defer mysqlStore.Close()
		logger.Info("mysql connected")
	}

	charService := newCharacterService(mysqlStore, logger)

	var backends []generators.SceneGenerator
	if cfg.AI.OpenAI.APIKey != "" {
		backends = append(backends, generators.NewOpenAIBackend(cfg.AI.OpenAI))
		logger.Info("openai backend enabled", zap.String("model", cfg.AI.OpenAI.Model))
	} else {
		logger.Warn("no OpenAI API key, running on authored scenes only")
	}
	chain := generators.NewChain(generators.NewFallback(), logger, backends...)

	eng := engine.New(store, charService, chain, cfg.Story, logger)
	assets := generators.NewHTTPAssetClient(cfg.Assets, store, logger)
	controller := session.NewController(eng, charService, assets, logger)

	hub := web.NewEventHub(logger)
	hub.Attach(controller.Events())
	go hub.Run()

	router := web.NewRouter(controller, charService, hub, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newCharacterService(mysqlStore *storage.MySQLStore, logger *zap.Logger) *characters.Service {
	if mysqlStore == nil {
		return characters.NewService(nil, logger)
	}
	return characters.NewService(mysqlStore.DB(), logger)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zapCfg.Level = level
	}
	return zapCfg.Build()
}
