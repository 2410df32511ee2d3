package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/six-app/six-backend/internal/db"
	"github.com/six-app/six-backend/internal/handlers"
	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/middleware"
	"github.com/six-app/six-backend/internal/repos"
	"github.com/six-app/six-backend/internal/server"
	"github.com/six-app/six-backend/internal/services"
	"github.com/six-app/six-backend/internal/socket"
	"github.com/six-app/six-backend/internal/utils"
)

func main() {
	// Local development convenience; real deployments set the env.
	_ = godotenv.Load()

	// Logger Setup
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Environment Variables
	log.Info("Attempting to load environment variables for Main now...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 2592000, log)
	redisAddress := utils.GetEnv("REDIS_ADDRESS", "localhost:6379", log)
	redisPassword := utils.GetEnv("REDIS_PASSWORD", "", log)
	otpRateMax := utils.GetEnvAsInt("OTP_RATE_MAX", 5, log)
	otpRateWindow := utils.GetEnvAsInt("OTP_RATE_WINDOW_SECONDS", 900, log)
	allowedOrigins := utils.GetEnv("ALLOWED_ORIGINS", "http://localhost:3000", log)

	// Postgres Setup
	log.Info("Setting Up Postgres from Main now...")
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Fatal error: DB init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()
	log.Info("Postgres Setup From Main Successful :)")

	// Redis Setup
	log.Info("Setting Up Redis from Main now...")
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Password: redisPassword,
	})
	{
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unreachable, live counters and rate limiting are off", "error", err)
			redisClient = nil
		}
		cancel()
	}

	// Repositories Setup
	log.Info("Setting Up Repositories from Main now...")
	userRepo := repos.NewUserRepo(thePG, log)
	otCodeRepo := repos.NewOneTimeCodeRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	chatSessionRepo := repos.NewChatSessionRepo(thePG, log)
	chatMessageRepo := repos.NewChatMessageRepo(thePG, log)
	songRepo := repos.NewSongRepo(thePG, log)
	shareLinkRepo := repos.NewShareLinkRepo(thePG, log)
	fileObjectRepo := repos.NewFileObjectRepo(thePG, log)
	log.Info("Repositories Set Up From Main Successful :)")

	// Websocket Setup
	log.Info("Setting Up Websocket Hub From Main Now :)")
	wsHub := socket.NewHub(log)
	if redisClient != nil {
		redisPubSub, err := socket.NewRedisPubSub(log, redisClient, "six_hub_broadcast")
		if err != nil {
			log.Warn("Failed to init redis pubsub", "error", err)
		} else if err := redisPubSub.StartSubscriber(wsHub); err != nil {
			log.Warn("Failed to subscribe to Redis pub/sub", "error", err)
		} else {
			wsHub.SetRedisPubSub(redisPubSub)
			defer redisPubSub.Stop()
			log.Info("Redis pubsub is active!")
		}
	}
	log.Info("Websocket Hub Set Up From Main Successful :)")

	// Services Setup
	log.Info("Setting up Services from Main now...")
	emailService, err := services.NewEmailService(log)
	if err != nil {
		log.Error("Fatal error: Cannot init EmailService", "error", err)
		os.Exit(1)
	}
	textService, err := services.NewTextService(log)
	if err != nil {
		log.Warn("Could not init TextService, SMS delivery is off", "error", err)
		textService = nil
	}
	bucketService, err := services.NewBucketService(context.Background(), log)
	if err != nil {
		log.Warn("Could not init BucketService, file routes are off", "error", err)
		bucketService = nil
	}
	var avatarService services.AvatarService
	if bucketService != nil {
		avatarService, err = services.NewAvatarService(log, userRepo, bucketService)
		if err != nil {
			log.Warn("Could not init AvatarService, avatars are off", "error", err)
			avatarService = nil
		}
	}
	openAIService, err := services.NewOpenAIService(log)
	if err != nil {
		log.Warn("Could not init OpenAIService, AI routes are off", "error", err)
		openAIService = nil
	}
	searchService, err := services.NewSearchService(log)
	if err != nil {
		log.Warn("Could not init SearchService, search route is off", "error", err)
		searchService = nil
	}
	weatherService := services.NewWeatherService(log)
	financeService := services.NewFinanceService(log)

	authService := services.NewAuthService(thePG, log, userRepo, otCodeRepo, userTokenRepo, emailService, textService, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	meService := services.NewMeService(log, userRepo, avatarService)
	var chatService services.ChatService
	if openAIService != nil {
		chatService = services.NewChatService(thePG, log, chatSessionRepo, chatMessageRepo, openAIService)
	}
	var fileService services.FileService
	if bucketService != nil {
		fileService = services.NewFileService(thePG, log, fileObjectRepo, bucketService)
	}
	musicService := services.NewMusicService(log, songRepo, redisClient, wsHub)
	shareService := services.NewShareService(log, shareLinkRepo, wsHub)
	log.Info("Services Set Up From Main Successful :)")

	// Handler Setup
	log.Info("Setting Up Handlers from Main now...")
	authHandler := handlers.NewAuthHandler(authService)
	meHandler := handlers.NewMeHandler(meService)
	chatHandler := handlers.NewChatHandler(chatService)
	aiHandler := handlers.NewAIHandler(openAIService)
	fileHandler := handlers.NewFileHandler(fileService)
	songHandler := handlers.NewSongHandler(musicService)
	shareHandler := handlers.NewShareHandler(shareService)
	pricingHandler := handlers.NewPricingHandler()
	toolsHandler := handlers.NewToolsHandler(weatherService, financeService, searchService)
	wsHandler := handlers.NewWebSocketHandler(log, wsHub)
	log.Info("Handlers Set Up From Main Successful :)")

	// MiddleWare Setup
	log.Info("Setting Up Middleware from Main now...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)
	log.Info("Middleware Set Up From Main Successful :)")

	// Router Setup
	log.Info("Setting Up Router from Main now...")
	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins:   strings.Split(allowedOrigins, ","),
		AuthHandler:      authHandler,
		AuthMiddleware:   authMiddleware,
		MeHandler:        meHandler,
		ChatHandler:      chatHandler,
		AIHandler:        aiHandler,
		FileHandler:      fileHandler,
		SongHandler:      songHandler,
		ShareHandler:     shareHandler,
		PricingHandler:   pricingHandler,
		ToolsHandler:     toolsHandler,
		WebSocketHandler: wsHandler,
		RedisClient:      redisClient,
		OtpRateMax:       otpRateMax,
		OtpRateWindow:    time.Duration(otpRateWindow) * time.Second,
	})
	log.Info("Router Set Up From Main Successful :)")

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
