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

	"github.com/gorilla/mux"
	"github.com/guirluz/rental-backend/internal/app/delivery"
	"github.com/guirluz/rental-backend/internal/app/repository"
	"github.com/guirluz/rental-backend/internal/app/usecase"
	"github.com/guirluz/rental-backend/internal/config"
	"github.com/guirluz/rental-backend/internal/middleware"
	"github.com/guirluz/rental-backend/internal/progress"
	"github.com/guirluz/rental-backend/internal/relay"
	"github.com/guirluz/rental-backend/internal/taskqueue"
	"github.com/guirluz/rental-backend/internal/utils/logger"
	"github.com/guirluz/rental-backend/internal/ws"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

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

	logger.Info("configuration loaded successfully")

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
	if err := userRepo.Migrate(); err != nil {
		logger.Error("failed to run migrations", zap.Error(err))
		os.Exit(1)
	}

	statusStore := repository.CreateTaskStatusStore(redisClient, cfg.TaskResultTTL)
	queue := taskqueue.CreateQueue(redisClient)
	registry := ws.CreateRegistry()

	importUsecase := usecase.CreateImportUsecase(queue, statusStore, cfg.UploadDir)
	userUsecase := usecase.CreateUserUsecase(userRepo, registry, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	importDelivery := delivery.CreateImportDelivery(importUsecase, registry)
	userDelivery := delivery.CreateUserDelivery(userUsecase)

	notifyRelay := relay.CreateRelay(progress.CreateSource(redisClient), registry)
	relayCtx, cancelRelay := context.WithCancel(context.Background())
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		if err := notifyRelay.Run(relayCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("notification relay stopped", zap.Error(err))
		}
	}()

	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	router.HandleFunc("/ws/notify", importDelivery.ServeWS)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()

	authRouter := apiRouter.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", userDelivery.Register).Methods("POST")
	authRouter.HandleFunc("/login", userDelivery.Login).Methods("POST")
	authRouter.HandleFunc("/refresh", userDelivery.Refresh).Methods("POST")

	importRouter := apiRouter.PathPrefix("/imports").Subrouter()
	importRouter.HandleFunc("", importDelivery.UploadExcel).Methods("POST")
	importRouter.HandleFunc("/preview", importDelivery.PreviewExcel).Methods("POST")
	importRouter.HandleFunc("/{task_id}/status", importDelivery.GetTaskStatus).Methods("GET")

	authMiddleware := middleware.CreateAuthMiddleware(cfg.JWTSecret)
	userRouter := apiRouter.PathPrefix("/users").Subrouter()
	userRouter.Use(authMiddleware)
	userRouter.HandleFunc("/me", userDelivery.Me).Methods("GET")
	userRouter.HandleFunc("", userDelivery.CreateUser).Methods("POST")
	userRouter.HandleFunc("", userDelivery.GetAllUsers).Methods("GET")
	userRouter.HandleFunc("/{id:[0-9]+}", userDelivery.GetUser).Methods("GET")
	userRouter.HandleFunc("/{id:[0-9]+}", userDelivery.UpdateUser).Methods("PUT")
	userRouter.HandleFunc("/{id:[0-9]+}", userDelivery.DeleteUser).Methods("DELETE")

	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.PanicMiddleware)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("starting HTTP server",
			zap.String("address", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("failed to start server", zap.Error(err))
		os.Exit(1)
	case sig := <-quit:
		logger.Info("server is shutting down",
			zap.String("signal", sig.String()),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
			os.Exit(1)
		}

		cancelRelay()
		select {
		case <-relayDone:
		case <-time.After(10 * time.Second):
			logger.Warn("relay did not stop in time")
		}

		logger.Info("server stopped")
	}
}
