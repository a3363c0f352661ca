package main

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/andrewpaige1/learntree-api/bridge"
	"github.com/andrewpaige1/learntree-api/config"
	"github.com/andrewpaige1/learntree-api/handlers"
	"github.com/andrewpaige1/learntree-api/llm"
	"github.com/andrewpaige1/learntree-api/logging"
	"github.com/andrewpaige1/learntree-api/middleware"
	"github.com/andrewpaige1/learntree-api/ratelimit"
	"github.com/andrewpaige1/learntree-api/store"
	"github.com/andrewpaige1/learntree-api/study"
	"github.com/andrewpaige1/learntree-api/validation"
)

func init() {
	// Load .env file if not in production environment
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Printf("Warning: .env file not found, environment variables might not be loaded: %v", err)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database connection
	database, err := config.Connect(cfg.Database, cfg.IsProduction())
	if err != nil {
		logger.Fatal("Failed to connect database", zap.Error(err))
	}
	s := store.New(database)

	// A missing key is not fatal; node creation reports 503 until it is set.
	var chat llm.ChatClient
	if client, err := llm.NewOpenAIClient(llm.Config{BaseURL: cfg.LLM.BaseURL, APIKey: cfg.LLM.Key()}, logger); err != nil {
		logger.Warn("LLM client disabled", zap.Error(err))
	} else {
		chat = client
	}

	cards := bridge.NewFlashcardGenerator(chat, s, cfg.LLM.FlashcardModel, cfg.LLM.FlashcardMaxTokens, logger)
	nodeBridge := bridge.New(chat, s, cards, bridge.Config{
		NodeModel:   cfg.LLM.NodeModel,
		Temperature: cfg.LLM.Temperature,
	}, logger)

	limiter := ratelimit.PerMinute(cfg.Limits.NodesPerMinute, cfg.Limits.NodeBurst)
	defer limiter.Stop()

	authMiddleware, err := middleware.EnsureValidToken(cfg.Auth)
	if err != nil {
		logger.Fatal("Failed to set up auth", zap.Error(err))
	}

	DBHandler := &handlers.DBHandler{
		Store:         s,
		Bridge:        nodeBridge,
		Scheduler:     study.NewScheduler(s, logger),
		Validator:     validation.New(),
		Limiter:       limiter,
		Auth:          cfg.Auth,
		StreamTimeout: cfg.LLM.StreamTimeout,
		Logger:        logger.Named("http"),
	}
	api := DBHandler.Routes(middleware.SyncUserMiddleware(s, cfg.Auth.Enabled, logger))

	// Sign-up happens before a token exists.
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users", DBHandler.CreateUser)
	mux.Handle("/", authMiddleware(api))

	// Configure CORS with specific options
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Origins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(middleware.RequestLogger(logger.Named("access"))(mux))

	serverAddr := "0.0.0.0:" + cfg.Port
	logger.Info("Server starting",
		zap.String("addr", serverAddr),
		zap.String("environment", cfg.Environment),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("auth_enabled", cfg.Auth.Enabled))

	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}
