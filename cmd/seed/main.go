package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"leaddistributor/internal/config"
	"leaddistributor/internal/logging"
	"leaddistributor/internal/repository"
	"leaddistributor/pkg/models"
)

func main() {
	ctx := context.Background()
	logger := logging.NewLogger()
	defer logger.Sync()

	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pool, err := pgxpool.New(ctx, cfg.ConnString())
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pool.Close()

	// 1. Ensure schema exists
	if err := repository.CreateSchema(ctx, pool); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}
	logger.Info("Schema ready")

	agentDir := repository.NewPostgresAgentDirectory(pool)

	// 2. Check existing roster to prevent duplicates
	existing, err := agentDir.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list existing agents: %v", err)
	}
	existingMap := make(map[string]bool)
	for _, a := range existing {
		existingMap[a.Email] = true
	}

	// 3. Seed default roster
	agents := []struct {
		Name   string
		Email  string
		Active bool
	}{
		{"Alice Nguyen", "alice@example.com", true},
		{"Bruno Costa", "bruno@example.com", true},
		{"Chinwe Okafor", "chinwe@example.com", true},
		{"Deniz Yilmaz", "deniz@example.com", false},
	}

	for _, a := range agents {
		if existingMap[a.Email] {
			logger.Info("Skipping existing agent", "email", a.Email)
			continue
		}

		agent := &models.Agent{
			ID:        uuid.New().String(),
			Name:      a.Name,
			Email:     a.Email,
			Active:    a.Active,
			CreatedAt: time.Now().UTC(),
		}
		if err := agentDir.Create(ctx, agent); err != nil {
			log.Printf("Failed to create agent %s: %v", a.Email, err)
		} else {
			logger.Info("Seeded agent", "email", a.Email, "id", agent.ID, "active", a.Active)
		}
	}
	logger.Info("Seeding complete")
}
