package main

import (
	"flag"
	"log"
	"os"

	"FinResearch/internal/di"
	"FinResearch/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s ai=%s store=%s cache=%s", cfg.Environment, cfg.AI.Provider, cfg.Store.Driver, cfg.Store.Cache)

	// Wire DI: Initialize all dependencies
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}
	defer cleanup()

	if cfg.Kafka.Enabled {
		log.Printf("kafka: brokers=%v reports=%s requests=%s", cfg.Kafka.Brokers, cfg.Kafka.ReportTopic, cfg.Kafka.RequestTopic)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		cleanup()
		os.Exit(1)
	}
}
