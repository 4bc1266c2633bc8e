package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dynamicdo/dynamicdo/api"
	"github.com/dynamicdo/dynamicdo/auth"
	"github.com/dynamicdo/dynamicdo/datastore"
	"github.com/dynamicdo/dynamicdo/engine"
	"github.com/dynamicdo/dynamicdo/logger"
	"github.com/dynamicdo/dynamicdo/ranking"
	rh "github.com/dynamicdo/dynamicdo/route-handlers"
)

const (
	defaultPort     = "8080"
	defaultMongoURI = "mongodb://localhost:27017"
	defaultMongoDB  = "dynamicdo"
	shutdownTimeout = 15 * time.Second
)

type config struct {
	port         string
	mongoURI     string
	mongoDBName  string
	jwtSecret    string
	openAIAPIKey string
	openAIModel  string
}

func main() {
	log := logger.Get()
	cfg := loadConfig()

	ctx := context.Background()
	client, db, err := datastore.Connect(ctx, cfg.mongoURI, cfg.mongoDBName)
	if err != nil {
		log.WithError(err).Fatal("Database setup failed")
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			log.WithError(err).Warn("Failed to disconnect mongodb client")
		}
	}()
	log.Info("Database connection successful")

	userRepo := datastore.NewUserRepository(db)
	reminderRepo := datastore.NewReminderRepository(db)

	tokenService := auth.NewTokenService(cfg.jwtSecret)
	rankingClient := ranking.NewClient(cfg.openAIAPIKey, cfg.openAIModel, log)
	reminderEngine := engine.New(reminderRepo, rankingClient, log)

	userHandler := rh.NewUserHandler(userRepo, tokenService)
	reminderHandler := rh.NewReminderHandler(reminderEngine)
	taskHandler := rh.NewTaskHandler()

	router := api.SetupRoutes(userHandler, reminderHandler, taskHandler, tokenService)

	startServer(cfg.port, router)
}

func loadConfig() config {
	log := logger.Get()

	// A missing .env file is fine; real deployments set the environment.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		mongoURI = defaultMongoURI
		log.Warn("MONGODB_URI not set, using default local connection string")
	}

	mongoDBName := os.Getenv("MONGODB_DB")
	if mongoDBName == "" {
		mongoDBName = defaultMongoDB
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable must be set")
	}

	openAIAPIKey := os.Getenv("OPENAI_API_KEY")
	if openAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY not set. Ranking will degrade to fallback results at runtime")
	}

	return config{
		port:         port,
		mongoURI:     mongoURI,
		mongoDBName:  mongoDBName,
		jwtSecret:    jwtSecret,
		openAIAPIKey: openAIAPIKey,
		openAIModel:  os.Getenv("OPENAI_MODEL"),
	}
}

func startServer(port string, router http.Handler) {
	log := logger.Get()

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("port", port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server error")
		}
	}()

	<-shutdownSignal // Block until signal received
	log.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Graceful shutdown failed")
	}

	log.Info("Server gracefully stopped")
}
