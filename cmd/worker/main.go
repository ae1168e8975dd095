package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guirluz/rental-backend/internal/app/models"
	"github.com/guirluz/rental-backend/internal/app/repository"
	"github.com/guirluz/rental-backend/internal/config"
	"github.com/guirluz/rental-backend/internal/importer"
	"github.com/guirluz/rental-backend/internal/progress"
	"github.com/guirluz/rental-backend/internal/taskqueue"
	"github.com/guirluz/rental-backend/internal/utils/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const uploadMaxAge = 24 * time.Hour

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("error initializing config: %v\n", err)
		os.Exit(1)
	}

	err = logger.Init(cfg.LogMode)
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("invalid redis url", zap.Error(err))
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error("failed to connect to redis", zap.Error(err))
		os.Exit(1)
	}

	db, err := repository.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		logger.Error("failed to connect to postgres", zap.Error(err))
		os.Exit(1)
	}

	userRepo := repository.CreateUserRepository(db)
	statusStore := repository.CreateTaskStatusStore(redisClient, cfg.TaskResultTTL)
	publisher := progress.CreatePublisher(redisClient)

	imp := importer.CreateImporter(userRepo, statusStore, publisher, cfg.ImportChunkSize)

	worker := taskqueue.CreateWorker(redisClient, cfg.WorkerConcurrency)
	worker.Register(models.TaskImport, imp.Run)
	worker.Register(models.TaskPreview, imp.Preview)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := importer.CleanupUploads(cfg.UploadDir, uploadMaxAge); err != nil {
					logger.Warn("upload cleanup failed", zap.Error(err))
				}
			}
		}
	}()

	if err := worker.Run(ctx); err != nil {
		logger.Error("worker stopped with error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("worker stopped")
}
