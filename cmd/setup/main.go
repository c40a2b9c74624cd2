package main

import (
	"context"
	"flag"
	"fmt"

	"bank-cards-go/internal/common"
	"bank-cards-go/internal/config"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	seedFlag := flag.String("seed", "", "Path to the seed file (default: SEED_FILE or seed.yaml)")
	initFlag := flag.Bool("init", false, "Only create the database schema, skip seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	// Opening the database creates the schema
	zap.L().Info("Setting up SQLite database", zap.String("path", cfg.Database.Path))
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if *initFlag {
		zap.L().Info("Initialization complete")
		return
	}

	seedFile := cfg.Seed.File
	if *seedFlag != "" {
		seedFile = *seedFlag
	}

	zap.L().Info("Loading seed file", zap.String("file", seedFile))
	seed, err := common.LoadSeedFile(seedFile)
	if err != nil {
		zap.L().Fatal("Failed to load seed file", zap.Error(err))
	}

	result, err := common.ApplySeed(ctx, services.DbService, seed)
	if err != nil {
		zap.L().Fatal("Seeding failed",
			zap.Int("users_created", result.UsersCreated),
			zap.Int("cards_created", result.CardsCreated),
			zap.Error(err))
	}

	common.PrintHeader("SEED SUMMARY", common.DefaultWidth)
	fmt.Printf("Users created:  %d (existing: %d)\n", result.UsersCreated, result.UsersSkipped)
	fmt.Printf("Cards created:  %d (existing: %d)\n", result.CardsCreated, result.CardsSkipped)
	common.PrintSeparator("=", common.DefaultWidth)

	zap.L().Info("Seeding completed",
		zap.Int("users_created", result.UsersCreated),
		zap.Int("cards_created", result.CardsCreated))
}
