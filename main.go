package main

import (
	"log"
	"net/http"
	"os"

	"github.com/flashdeck/flashdeck-api/config"
	"github.com/flashdeck/flashdeck-api/handlers"
	"github.com/flashdeck/flashdeck-api/middleware"
	"github.com/flashdeck/flashdeck-api/practice"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func init() {
	// Load .env file if not in a managed environment
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Printf("Warning: .env file not found, environment variables might not be loaded: %v", err)
		}
	}
}

func setupLogger(env string) *zap.Logger {
	var logger *zap.Logger
	if env == "development" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	return logger
}

func main() {
	cfg, err := config.Init()
	if err != nil {
		log.Fatal("failed to load config: " + err.Error())
	}

	logger := setupLogger(cfg.Env)
	defer logger.Sync()

	db, err := config.Connect(cfg.DB)
	if err != nil {
		logger.Fatal("failed to init db", zap.Error(err))
	}

	var sessions practice.Store
	if cfg.App.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.App.RedisAddr})
		sessions = practice.NewRedisStore(client, cfg.App.SessionTTL)
		logger.Info("practice sessions in redis", zap.String("addr", cfg.App.RedisAddr))
	} else {
		sessions = practice.NewMemoryStore(cfg.App.SessionTTL)
	}

	authMiddleware, err := middleware.EnsureValidToken(cfg.Auth)
	if err != nil {
		logger.Fatal("failed to set up token validation", zap.Error(err))
	}

	h := &handlers.DBHandler{
		DB:       db,
		Log:      logger,
		Sessions: sessions,
		Auth:     cfg.Auth,
	}
	mux := handlers.Routes(h)

	allowedOrigins := cfg.App.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(authMiddleware(mux))

	serverAddr := "0.0.0.0:" + cfg.App.Port
	logger.Info("listening", zap.String("addr", serverAddr), zap.String("env", cfg.Env))
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
