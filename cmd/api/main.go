package main

import (
	"log"
	"os"

	_ "exeat-backend/api/swagger" // swagger docs
	"exeat-backend/internal/handler"
	"exeat-backend/internal/middleware"
	"exeat-backend/internal/service"
	"exeat-backend/internal/store"
	"exeat-backend/internal/websocket"
	"exeat-backend/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Exeat Pass API
// @version         1.0
// @description     University exit-pass manager: students submit exeat requests, admins review them, security verifies QR codes at the gate.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	zlog, err := logger.New()
	if err != nil {
		log.Fatalf("Logger initialization failed: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(zlog)
	go wsHub.Run()

	// All state is in-memory for the process lifetime; there is no
	// database behind this service.
	exeatStore := store.NewExeatStore()
	userStore := store.NewUserStore()

	if os.Getenv("SEED_DEMO_DATA") != "false" {
		if err := store.SeedDemoData(exeatStore); err != nil {
			zlog.Fatal("failed to seed demo exeat data", zap.Error(err))
		}
		if err := store.SeedDemoUsers(userStore); err != nil {
			zlog.Fatal("failed to seed demo users", zap.Error(err))
		}
		zlog.Info("demo data seeded")
	}

	// Set up dependencies (Store -> Service -> Handler)
	exeatOpts := []service.Option{service.WithNotifier(wsHub)}
	if os.Getenv("STRICT_TRANSITIONS") == "true" {
		exeatOpts = append(exeatOpts, service.WithStrictTransitions())
	}
	exeatService := service.NewExeatService(exeatStore, zlog, exeatOpts...)
	checkpointService := service.NewCheckpointService(exeatStore, zlog)
	authService := service.NewAuthService(userStore, zlog)

	// Initialize Handlers
	exeatHandler := handler.NewExeatHandler(exeatService)
	checkpointHandler := handler.NewCheckpointHandler(checkpointService)
	authHandler := handler.NewAuthHandler(authService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	exeatHandler.RegisterRoutes(router.Group(""))
	checkpointHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	zlog.Info("server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		zlog.Fatal("server failed", zap.Error(err))
	}
}
