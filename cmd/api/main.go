package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/Piyushbhatti32/gas-agency/api/swagger" // swagger docs
	"github.com/Piyushbhatti32/gas-agency/internal/database"
	"github.com/Piyushbhatti32/gas-agency/internal/handler"
	"github.com/Piyushbhatti32/gas-agency/internal/mailer"
	"github.com/Piyushbhatti32/gas-agency/internal/middleware"
	"github.com/Piyushbhatti32/gas-agency/internal/repository"
	"github.com/Piyushbhatti32/gas-agency/internal/scheduler"
	"github.com/Piyushbhatti32/gas-agency/internal/service"
	"github.com/Piyushbhatti32/gas-agency/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Gas Agency Booking API
// @version         1.0
// @description     Multi-tenant gas cylinder booking service with annual allocation tracking.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Outbound email (falls back to no-op when SMTP is not configured)
	mail := mailer.NewFromEnv()

	// Repositories
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	agencyRepo := repository.NewAgencyRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	logRepo := repository.NewLogRepository(db)

	// Services
	ledgerService := service.NewLedgerService(userRepo, logRepo, mail)
	bookingService := service.NewBookingService(bookingRepo, userRepo, agencyRepo, logRepo, ledgerService, txManager, mail, wsHub)
	authService := service.NewAuthService(userRepo, agencyRepo, logRepo, db)
	userService := service.NewUserService(userRepo, agencyRepo, logRepo, txManager)
	agencyService := service.NewAgencyService(agencyRepo, logRepo)
	notificationService := service.NewNotificationService(notificationRepo, logRepo, wsHub)
	auditService := service.NewAuditService(logRepo)
	paymentService := service.NewPaymentService(paymentRepo, bookingRepo, agencyRepo, logRepo, txManager, service.NewRazorpayGateway(), wsHub)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, userService, agencyService)
	userHandler := handler.NewUserHandler(userService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	agencyHandler := handler.NewAgencyHandler(agencyService, bookingService)
	adminHandler := handler.NewAdminHandler(userService, agencyService, bookingService, auditService)
	barrelHandler := handler.NewBarrelHandler(ledgerService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	paymentHandler := handler.NewPaymentHandler(paymentService)

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

	// API Routing
	root := router.Group("")
	authHandler.RegisterRoutes(root)
	userHandler.RegisterRoutes(root)
	bookingHandler.RegisterRoutes(root)
	agencyHandler.RegisterRoutes(root)
	adminHandler.RegisterRoutes(root)
	barrelHandler.RegisterRoutes(root)
	notificationHandler.RegisterRoutes(root)
	paymentHandler.RegisterRoutes(root)

	// Annual allocation reset worker
	resetWorker := scheduler.NewResetWorker(ledgerService, time.Hour)
	resetWorker.Start()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Stop the worker cleanly on SIGINT/SIGTERM.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		resetWorker.Stop()
		os.Exit(0)
	}()

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
