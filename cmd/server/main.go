package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filedeck/internal/api"
	"filedeck/internal/config"
	"filedeck/internal/live"
	"filedeck/internal/logging"
	"filedeck/internal/repository/memory"
	"filedeck/internal/seed"
	"filedeck/internal/service"
	"filedeck/internal/storage"
	"filedeck/internal/storage/local"
	s3storage "filedeck/internal/storage/s3"
	"filedeck/internal/viewstate"

	"go.uber.org/zap"
)

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

	logger.Info("配置加载完成，开始启动服务",
		zap.String("seed_source", cfg.SeedSource),
		zap.String("storage_driver", cfg.StorageDriver),
		zap.String("file_server_prefix", cfg.FileServerPrefix),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files := service.NewFileService(memory.NewFileRepository(), logger.Named("files"))
	files.SetProposalTTL(cfg.ProposalTTL)

	hub := live.NewHub(cfg.CORSAllowedOrigins, logger.Named("live"))
	unsubscribe := files.Subscribe(hub.Publish)
	defer unsubscribe()

	if err := loadSeed(ctx, cfg, logger, files); err != nil {
		logger.Fatal("加载种子数据失败", zap.Error(err))
	}

	reader, err := newStorageReader(ctx, cfg)
	if err != nil {
		logger.Fatal("初始化存储失败", zap.Error(err))
	}

	objects := api.NewObjectServer(reader, cfg.FileServerPrefix, logger.Named("objects"))
	controller := viewstate.New(files, cfg.FileServerPrefix, logger.Named("view"))
	router := api.NewRouter(cfg, logger.Named("http"),
		api.NewFileHandler(files, objects, cfg.FileServerPrefix, logger.Named("api")),
		api.NewViewHandler(controller, objects, hub, logger.Named("api")),
		objects,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		Handler:           router,
	}

	logger.Info("服务监听端口", zap.String("addr", srv.Addr))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("监听失败", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("优雅关闭失败", zap.Error(err))
	}

	logger.Info("服务已停止")
}

func loadSeed(ctx context.Context, cfg *config.Config, logger *zap.Logger, files *service.FileService) error {
	source, closeSource, err := seed.FromConfig(ctx, cfg, logger.Named("seed"))
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSource(); err != nil {
			logger.Warn("关闭种子来源失败", zap.Error(err))
		}
	}()

	records, err := source.LoadSeed(ctx)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	return files.Seed(ctx, records)
}

func newStorageReader(ctx context.Context, cfg *config.Config) (storage.Reader, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverS3:
		store, err := s3storage.New(ctx, s3storage.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
			PathStyle: cfg.S3PathStyle,
			Prefix:    cfg.S3Prefix,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return local.NewStore(cfg.StorageDir), nil
	}
}
