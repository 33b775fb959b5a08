package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"artspace/internal/config"
	"artspace/internal/database"
	"artspace/internal/handler"
	"artspace/internal/queue"
	"artspace/internal/realtime"
	appredis "artspace/internal/redis"
	"artspace/internal/repository"
	"artspace/internal/service"
	"artspace/internal/worker"
)

// Run wires every layer together and serves until SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := appredis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()); err != nil {
		return fmt.Errorf("redis unreachable: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	artworkRepo := repository.NewArtworkRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// Queue
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)

	// Real-time delivery
	hub := realtime.NewHub()
	hub.Start()
	defer hub.Stop()

	// Services
	mediaService, err := service.NewMediaService(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to init media service: %w", err)
	}
	authService := service.NewAuthService(cfg)
	userService := service.NewUserService(userRepo, followRepo, artworkRepo, commentRepo, notifRepo, db, mediaService)
	followService := service.NewFollowService(followRepo, userRepo, db, publisher)
	artworkService := service.NewArtworkService(artworkRepo, followRepo, mediaService, publisher)
	commentService := service.NewCommentService(commentRepo, artworkRepo, publisher)
	notifService := service.NewNotificationService(notifRepo, userRepo)

	// Fan-out worker
	fanoutHandler := worker.NewHandler(notifService, hub)
	managerCfg := worker.DefaultManagerConfig()
	managerCfg.WorkerCount = cfg.FanoutWorkerCount
	manager := worker.NewManager(consumer, fanoutHandler, managerCfg)
	if err := manager.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start fan-out workers: %w", err)
	}
	defer manager.Stop()

	// HTTP
	router := NewRouter(RouterConfig{
		AuthHandler:         handler.NewAuthHandler(userService, authService, cfg),
		UserHandler:         handler.NewUserHandler(userService, mediaService),
		FollowHandler:       handler.NewFollowHandler(followService),
		ArtworkHandler:      handler.NewArtworkHandler(artworkService, mediaService),
		CommentHandler:      handler.NewCommentHandler(commentService),
		NotificationHandler: handler.NewNotificationHandler(notifService),
		WSHandler:           handler.NewWSHandler(hub),
		JWTSecret:           cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		log.Printf("Received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
