package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/six-app/six-backend/internal/handlers"
	"github.com/six-app/six-backend/internal/middleware"
	"github.com/six-app/six-backend/internal/types"
)

type RouterConfig struct {
	AllowedOrigins []string

	AuthHandler      *handlers.AuthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	MeHandler        *handlers.MeHandler
	ChatHandler      *handlers.ChatHandler
	AIHandler        *handlers.AIHandler
	FileHandler      *handlers.FileHandler
	SongHandler      *handlers.SongHandler
	ShareHandler     *handlers.ShareHandler
	PricingHandler   *handlers.PricingHandler
	ToolsHandler     *handlers.ToolsHandler
	WebSocketHandler *handlers.WebSocketHandler

	// Optional: limits POST /api/auth/send-otp per IP+email.
	RedisClient   *redis.Client
	OtpRateMax    int
	OtpRateWindow time.Duration
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	//-----------------------------------------
	// Cors Setup
	//-----------------------------------------
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Refresh-Token"},
		AllowCredentials: true,
	}))

	//-----------------------------------------
	// Health Routes
	//-----------------------------------------
	router.GET("/healthz", handlers.Healthz)

	//-----------------------------------------
	// Share Redirects (public, outside /api)
	//-----------------------------------------
	router.GET("/s/:token", cfg.ShareHandler.Resolve)

	//-----------------------------------------
	// Public Routes
	//-----------------------------------------
	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/send-otp",
			middleware.RateLimit(cfg.RedisClient, cfg.OtpRateMax, cfg.OtpRateWindow, middleware.KeyByIPAndEmail()),
			cfg.AuthHandler.SendOtp)
		auth.POST("/verify-otp", cfg.AuthHandler.VerifyOtp)

		api.GET("/pricing/quote", cfg.PricingHandler.Quote)
		api.GET("/songs", cfg.SongHandler.List)
	}

	//------------------------------------------
	// Protected Routes
	//------------------------------------------
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/auth/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/auth/logout", cfg.AuthHandler.Logout)
	protected.GET("/ws", cfg.WebSocketHandler.Serve)

	//Me
	protected.GET("/me", cfg.MeHandler.GetMe)
	protected.PATCH("/me", cfg.MeHandler.UpdateDisplayName)

	//Chat
	protected.POST("/chat", cfg.ChatHandler.SendMessage)
	protected.GET("/chat/sessions", cfg.ChatHandler.ListSessions)
	protected.GET("/chat/sessions/:id/messages", cfg.ChatHandler.ListMessages)
	protected.DELETE("/chat/sessions/:id", cfg.ChatHandler.DeleteSession)

	//AI
	protected.POST("/ai/image", cfg.AIHandler.GenerateImage)
	protected.POST("/ai/describe-image", cfg.AIHandler.DescribeImage)

	//Files
	protected.POST("/files/ingest", cfg.FileHandler.Ingest)
	protected.POST("/files/analyze", cfg.FileHandler.Analyze)
	protected.GET("/files", cfg.FileHandler.List)

	//Music
	protected.POST("/songs/:id/play", cfg.SongHandler.Play)
	protected.POST("/songs/:id/like", cfg.SongHandler.Like)
	protected.POST("/songs", cfg.AuthMiddleware.RequirePlan(types.PlanMax), cfg.SongHandler.Create)

	//Share
	protected.POST("/share", cfg.ShareHandler.Create)

	//Tools
	protected.GET("/tools/weather", cfg.ToolsHandler.Weather)
	protected.GET("/tools/finance", cfg.ToolsHandler.Finance)
	protected.POST("/tools/search", cfg.ToolsHandler.Search)

	return router
}
