package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"bank-cards-go/internal/common"
	"bank-cards-go/internal/config"
	"bank-cards-go/internal/expiry"

	"go.uber.org/zap"
)

func main() {
	onceFlag := flag.Bool("once", false, "Run a single expiry sweep and exit")
	scheduleFlag := flag.String("schedule", "", "Cron schedule override (default: EXPIRY_SCHEDULE or @daily)")
	flag.Parse()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	schedule := cfg.Expiry.Schedule
	if *scheduleFlag != "" {
		schedule = *scheduleFlag
	}

	sweeper, err := expiry.NewSweeper(expiry.SweeperConfig{
		Store:    services.DbService,
		Schedule: schedule,
	})
	if err != nil {
		zap.L().Fatal("Failed to create expiry sweeper", zap.Error(err))
	}

	if *onceFlag {
		count, err := sweeper.RunOnce(ctx)
		if err != nil {
			zap.L().Fatal("Expiry sweep failed", zap.Error(err))
		}
		zap.L().Info("Expiry sweep finished", zap.Int("expired", count))
		return
	}

	if err := sweeper.Start(ctx); err != nil {
		zap.L().Fatal("Failed to start expiry sweeper", zap.Error(err))
	}
	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutdown signal received, stopping expiry sweeper...")
	cancel()
	sweeper.Stop()
}
