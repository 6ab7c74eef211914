package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/shlior7/scenergy/config"
	"github.com/shlior7/scenergy/internal/app"
	"github.com/shlior7/scenergy/internal/db"
	"github.com/shlior7/scenergy/internal/logger"
)

func main() {
	// Load .env file if present; a containerized run gets everything from
	// the environment directly
	_ = godotenv.Load()
	logger.InitializeAndConfigure()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gdb, err := db.New(db.Options{
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		User:       cfg.DBUser,
		Password:   cfg.DBPassword,
		DBName:     cfg.DBName,
		SSLEnabled: &cfg.DBSSL,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Fatal(app.NewApp(gdb).Listen(cfg.ServerAddr))
}
