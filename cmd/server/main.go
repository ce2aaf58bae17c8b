package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"overmind/internal/api"
	"overmind/internal/app/generator"
	"overmind/internal/app/service"
	"overmind/internal/common/security"
	"overmind/internal/domain/repository"
	"overmind/internal/platform/cache"
	"overmind/internal/platform/config"
	"overmind/internal/platform/database"
)

func main() {
	cfg := config.Load()
	log.Println("Configuration loaded.")

	sessions := security.NewSessions(cfg)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected.")

	rdb, err := cache.Connect(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("Redis connected.")

	userRepo := repository.NewPgUserRepository(db)
	blueprintRepo := repository.NewPgBlueprintRepository(db)
	challengeRepo := repository.NewPgChallengeRepository(db)

	evaluator := generator.New(cfg.GeneratorTimeout)

	authService := service.NewAuthService(userRepo)
	blueprintService := service.NewBlueprintService(blueprintRepo, rdb, cfg.BlueprintCacheTTL)
	challengeService := service.NewChallengeService(challengeRepo, blueprintRepo, evaluator)
	userService := service.NewUserService(userRepo)

	router := api.NewRouter(cfg, sessions, authService, blueprintService, challengeService, userService)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
