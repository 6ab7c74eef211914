package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shlior7/scenergy/config"
	"github.com/shlior7/scenergy/internal/db"
	"github.com/shlior7/scenergy/internal/db/repos"
	"github.com/shlior7/scenergy/internal/genai"
	"github.com/shlior7/scenergy/internal/handlers"
	"github.com/shlior7/scenergy/internal/logger"
	"github.com/shlior7/scenergy/internal/queue"
	"github.com/shlior7/scenergy/internal/storesync"
)

func main() {
	_ = godotenv.Load()
	logger.InitializeAndConfigure()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dbOpts := db.Options{
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		User:       cfg.DBUser,
		Password:   cfg.DBPassword,
		DBName:     cfg.DBName,
		SSLEnabled: &cfg.DBSSL,
	}
	gdb, err := db.New(dbOpts)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	registry := queue.NewRegistry()
	handlers.RegisterAll(registry, handlers.Deps{
		Products:    repos.NewProductRepository(gdb),
		Assets:      repos.NewAssetRepository(gdb),
		Connections: repos.NewStoreConnectionRepository(gdb),
		GenAI: genai.NewClient(genai.Options{
			BaseURL: cfg.GenAIBaseURL,
			APIKey:  cfg.GenAIAPIKey,
			Timeout: cfg.GenAITimeout,
		}),
		Store: storesync.NewClient(storesync.Options{
			Timeout: cfg.SyncTimeout,
		}),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wake channel: claim attempts fire on enqueue notifications instead of
	// waiting out the poll interval. Polling still runs underneath it.
	listener := db.NewWakeListener(dbOpts)
	go listener.Listen(ctx)

	repo := repos.NewJobRepository(gdb)

	monitor := queue.NewLeaseMonitor(repo, cfg.LeaseTimeout)
	go monitor.Run(ctx)

	worker := queue.NewWorker(repo, registry, listener.C(), queue.WorkerOptions{
		PollInterval:      cfg.PollInterval,
		HeartbeatInterval: cfg.HeartbeatInterval,
		HandlerTimeout:    cfg.HandlerTimeout,
		Concurrency:       cfg.WorkerConcurrency,
		Backoff: queue.Backoff{
			Base: cfg.BackoffBase,
			Max:  cfg.BackoffMax,
		},
	})
	worker.Run(ctx)
}
