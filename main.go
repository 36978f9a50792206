package main

import (
	"context"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/wfunc/drawparty/config"
	"github.com/wfunc/drawparty/logger"
	"github.com/wfunc/drawparty/monitor"
	"github.com/wfunc/drawparty/persistence"
	"github.com/wfunc/drawparty/server"
	"github.com/wfunc/drawparty/topic"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic(err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		panic(err)
	}
	defer logger.Sync()

	catalog := loadCatalog(cfg)
	logger.Log.Infof("Loaded %d topics from %s", catalog.Len(), cfg.Topics.Source)

	gameServer := server.NewGameServer(cfg.Server, catalog, monitor.NewMonitor("drawparty"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(ctx); err != nil {
		logger.Log.Fatalf("Server stopped: %v", err)
	}
	logger.Log.Info("Server stopped.")
}

// loadCatalog 启动时加载题库，失败直接退出
func loadCatalog(cfg *config.Config) *topic.Catalog {
	if cfg.Topics.Source == config.TopicSourceFile {
		catalog, err := topic.LoadFile(cfg.Topics.File)
		if err != nil {
			logger.Log.Fatalf("Failed to load topics: %v", err)
		}
		return catalog
	}

	store, err := persistence.NewGormTopicStore(cfg.Database.Postgres)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()
	logger.Log.Info("Database connection successful.")

	if cfg.Topics.Seed {
		seed, err := topic.LoadFile(cfg.Topics.File)
		if err != nil {
			logger.Log.Fatalf("Failed to load seed topics: %v", err)
		}
		added, err := store.SeedTopics(seed.Entries())
		if err != nil {
			logger.Log.Fatalf("Failed to seed topics: %v", err)
		}
		logger.Log.Infof("Seeded %d topics from %s", added, cfg.Topics.File)
	}

	catalog, err := store.LoadCatalog()
	if err != nil {
		logger.Log.Fatalf("Failed to load topics: %v", err)
	}
	return catalog
}
