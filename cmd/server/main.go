package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crackmehub/internal/api"
	"crackmehub/internal/app/service"
	"crackmehub/internal/app/worker"
	"crackmehub/internal/common/security"
	"crackmehub/internal/domain/repository"
	"crackmehub/internal/platform/config"
	"crackmehub/internal/platform/database"
	"crackmehub/internal/platform/queue"
	"crackmehub/internal/platform/storage"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	if err := database.Migrate(database.DB); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	fmt.Println("Database connected.")

	// 4. Initialize Redis
	queue.ConnectRedis()
	defer queue.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories & Storage
	userRepo := repository.NewPgUserRepository(database.DB)
	crackmeRepo := repository.NewPgCrackmeRepository(database.DB)
	solutionRepo := repository.NewPgSolutionRepository(database.DB)
	commentRepo := repository.NewPgCommentRepository(database.DB)
	ratingRepo := repository.NewPgRatingRepository(database.DB)
	notificationRepo := repository.NewPgNotificationRepository(database.DB)
	store := storage.New(config.AppConfig.UploadDir)

	// 6. Initialize Services
	recounts := queue.NewRecountQueue(queue.RDB)
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo)
	crackmeService := service.NewCrackmeService(crackmeRepo, store)
	solutionService := service.NewSolutionService(solutionRepo, crackmeRepo, store)
	commentService := service.NewCommentService(commentRepo, crackmeRepo, userRepo, recounts)
	ratingService := service.NewRatingService(ratingRepo, crackmeRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	moderationService := service.NewModerationService(
		database.DB, crackmeRepo, solutionRepo, commentRepo, ratingRepo,
		userRepo, notificationService, store, recounts,
	)

	// 7. Initialize Recount Worker (as a goroutine)
	recountWorker := worker.NewRecountWorker(queue.RDB, crackmeRepo, solutionRepo, commentRepo)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go recountWorker.Start(workerCtx)
	fmt.Println("Recount worker started.")

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(
		authService, userService, crackmeService, solutionService,
		commentService, ratingService, moderationService, notificationService,
	)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	workerCancel() // Signal worker to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and worker stopped gracefully.")
}
