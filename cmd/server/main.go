package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seatours/boat-booking-backend/internal/config"
	"github.com/seatours/boat-booking-backend/internal/database"
	"github.com/seatours/boat-booking-backend/internal/handlers"
	"github.com/seatours/boat-booking-backend/internal/middleware"
	"github.com/seatours/boat-booking-backend/internal/models"
	"github.com/seatours/boat-booking-backend/internal/services"
	"github.com/seatours/boat-booking-backend/pkg/jwt"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Connect to the database
	db, err := database.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// 3. Repositories
	bookingRepo := database.NewBookingRepository(db)
	paymentRepo := database.NewPaymentRepository(db)
	slotRepo := database.NewTripSlotRepository(db)
	pricingRepo := database.NewPricingRepository(db)
	userRepo := database.NewUserRepository(db)

	// 4. Services
	jwtService := jwt.NewService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	tbankService := services.NewTBankService(cfg.TBank, logger)
	telegramService := services.NewTelegramService(cfg.Telegram, logger)
	calendarService := services.NewCalendarService(context.Background(), cfg.Calendar, logger)
	inventoryService := services.NewInventoryService(bookingRepo, logger)
	pricingService := services.NewPricingService(pricingRepo, cfg.Booking, logger)
	tripService := services.NewTripService(slotRepo, pricingRepo, inventoryService, logger)
	authService := services.NewAuthService(userRepo, jwtService, logger)

	bookingService := services.NewBookingService(
		bookingRepo, paymentRepo, slotRepo,
		inventoryService, pricingService, tbankService,
		cfg.Booking, logger,
	)
	settlementService := services.NewSettlementService(paymentRepo, bookingRepo, logger)

	// Side effects run on every committed transition from either path
	effects := services.NewBookingEffects(bookingRepo, slotRepo, userRepo, telegramService, calendarService, logger)
	bookingService.RegisterHook(effects.Hook())
	settlementService.RegisterHook(effects.Hook())

	cronService := services.NewCronService(bookingRepo, slotRepo, userRepo, telegramService, cfg.Booking, logger)
	if err := cronService.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start cron jobs")
	}
	defer cronService.Stop()

	// 5. Handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	tripHandler := handlers.NewTripHandler(tripService, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	paymentHandler := handlers.NewPaymentHandler(settlementService, tbankService, bookingService, logger)

	// 6. Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		v1.GET("/trips/available", tripHandler.Search)

		// Gateway calls this without a bearer token; the payload
		// signature is the authentication
		v1.POST("/payments/webhook", paymentHandler.Webhook)

		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(jwtService))
		{
			authed.POST("/bookings", bookingHandler.Create)
			authed.GET("/bookings", bookingHandler.List)
			authed.GET("/bookings/:id", bookingHandler.Get)
			authed.POST("/bookings/:id/cancel", bookingHandler.Cancel)
			authed.POST("/bookings/:id/pay-remaining", bookingHandler.PayRemaining)
			authed.GET("/payments/:payment_id/status", paymentHandler.CheckStatus)

			operator := authed.Group("")
			operator.Use(middleware.RequireRole(models.RoleBoatOwner, models.RoleAdmin))
			{
				operator.POST("/bookings/block", bookingHandler.BlockSeats)
				operator.POST("/bookings/:id/check-in", bookingHandler.CheckIn)
			}
		}
	}

	// 7. Serve with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
	logger.Info("Server stopped")
}
