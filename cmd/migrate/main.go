package main

import (
	"context"

	"filedeck/internal/config"
	"filedeck/internal/database"
	"filedeck/internal/logging"
	"filedeck/internal/migrations"

	"go.uber.org/zap"
)

// migrate 为 SEED_SOURCE=postgres 准备 seed_files 表与默认数据。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer db.Close()

	applied, err := migrations.Apply(ctx, db, logger)
	if err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	logger.Info("migrations applied", zap.Strings("applied", applied))
}
