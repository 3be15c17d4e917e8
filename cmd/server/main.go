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
	"github.com/venueatlas/venue-booking-backend/internal/config"
	"github.com/venueatlas/venue-booking-backend/internal/database"
	"github.com/venueatlas/venue-booking-backend/internal/handlers"
	"github.com/venueatlas/venue-booking-backend/internal/middleware"
	"github.com/venueatlas/venue-booking-backend/internal/services"
	"github.com/venueatlas/venue-booking-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting VenueAtlas Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Transactional repositories need the raw sqlx handle
	sqlxDB, ok := db.(*database.PostgresDB)
	if !ok {
		logger.Fatal("Failed to cast database connection to PostgresDB")
	}

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	guestRepo := database.NewGuestRepository(db)
	poiRepo := database.NewPOIRepository(db)
	locationRepo := database.NewLocationRepository(db)
	bookingRepo := database.NewBookingRepository(sqlxDB.DB)
	eventRepo := database.NewEventRepository(sqlxDB.DB)
	allocationRepo := database.NewAllocationRepository(sqlxDB.DB)

	// Initialize services
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	ingestionService := services.NewIngestionService(guestRepo, bookingRepo, logger)
	allocationService := services.NewAllocationService(allocationRepo, logger)
	orchestrator := services.NewBookingOrchestratorService(
		userRepo,
		bookingRepo,
		eventRepo,
		ingestionService,
		allocationService,
		logger,
	)
	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepo, jwtService, logger)
	bookingHandler := handlers.NewBookingHandler(
		bookingRepo, eventRepo, guestRepo, orchestrator, cfg.Upload.MaxSizeBytes, logger)
	guestHandler := handlers.NewGuestHandler(guestRepo, ingestionService, logger)
	eventHandler := handlers.NewEventHandler(eventRepo, logger)
	allocationHandler := handlers.NewAllocationHandler(
		allocationRepo, allocationService, ingestionService, cfg.Upload.MaxSizeBytes, logger)
	rsvpHandler := handlers.NewRSVPHandler(guestRepo, bookingRepo, eventRepo, logger)
	locationHandler := handlers.NewLocationHandler(locationRepo, logger)
	poiHandler := handlers.NewPOIHandler(poiRepo, allocationRepo, logger)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthCheckHandler(db))

	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		// RSVP routes (public, token-addressed)
		rsvp := v1.Group("/rsvp")
		{
			rsvp.GET("/:token", rsvpHandler.GetByToken)
			rsvp.PATCH("/:token", rsvpHandler.UpdateStatus)
		}

		// Booking routes (protected)
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(jwtService))
		{
			bookings.POST("", bookingHandler.Create)
			bookings.GET("", bookingHandler.GetAll)
			bookings.GET("/:id", bookingHandler.GetByID)
			bookings.PUT("/:id", bookingHandler.Update)
			bookings.DELETE("/:id", bookingHandler.Delete)
		}

		// Guest routes (protected). The wildcard must stay ":id" to share
		// the tree with the booking routes above.
		bookingGuests := v1.Group("/bookings/:id/guests")
		bookingGuests.Use(middleware.AuthMiddleware(jwtService))
		{
			bookingGuests.GET("", guestHandler.GetByBooking)
			bookingGuests.POST("/bulk", guestHandler.BulkIngest)
		}
		guests := v1.Group("/guests")
		guests.Use(middleware.AuthMiddleware(jwtService))
		{
			guests.GET("/:id", guestHandler.GetByID)
			guests.PUT("/:id", guestHandler.Update)
			guests.DELETE("/:id", guestHandler.Delete)
		}

		// Event routes (protected)
		events := v1.Group("/events")
		events.Use(middleware.AuthMiddleware(jwtService))
		{
			events.GET("/:id", eventHandler.GetByID)
			events.PUT("/:id", eventHandler.Update)
			events.DELETE("/:id", eventHandler.Delete)
		}

		// Allocation routes (protected)
		allocations := v1.Group("/allocations")
		allocations.Use(middleware.AuthMiddleware(jwtService))
		{
			allocations.GET("/rooms/available", allocationHandler.AvailableRooms)
			allocations.POST("/bulk", allocationHandler.BulkAllocate)
			allocations.POST("/bulk/file", allocationHandler.BulkAllocateFromFile)
			allocations.POST("", allocationHandler.Create)
			allocations.GET("", allocationHandler.GetAll)
			allocations.GET("/:id", allocationHandler.GetByID)
			allocations.PUT("/:id", allocationHandler.Update)
			allocations.DELETE("/:id", allocationHandler.Delete)
		}

		// Building, floor and venue routes (protected)
		buildings := v1.Group("/buildings")
		buildings.Use(middleware.AuthMiddleware(jwtService))
		{
			buildings.POST("", locationHandler.CreateBuilding)
			buildings.GET("", locationHandler.GetBuildings)
			buildings.GET("/:id", locationHandler.GetBuildingByID)
			buildings.DELETE("/:id", locationHandler.DeleteBuilding)
		}
		floors := v1.Group("/floors")
		floors.Use(middleware.AuthMiddleware(jwtService))
		{
			floors.POST("", locationHandler.CreateFloor)
			floors.GET("/:id/venues", locationHandler.GetFloorVenues)
		}
		venues := v1.Group("/venues")
		venues.Use(middleware.AuthMiddleware(jwtService))
		{
			venues.POST("", locationHandler.CreateVenue)
			venues.GET("/:id", locationHandler.GetVenueByID)
		}

		// POI routes (protected)
		pois := v1.Group("/pois")
		pois.Use(middleware.AuthMiddleware(jwtService))
		{
			pois.POST("", poiHandler.Create)
			pois.GET("", poiHandler.GetAll)
			pois.GET("/:id", poiHandler.GetByID)
			pois.PUT("/:id", poiHandler.Update)
			pois.DELETE("/:id", poiHandler.Delete)
		}
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Infof("Server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		logger.WithFields(logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}).Info("Request completed")
	}
}

// healthCheckHandler reports process and database health
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
