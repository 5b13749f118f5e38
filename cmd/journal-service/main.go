package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/inkleaf/journal/internal/auth"
	"github.com/inkleaf/journal/internal/cache"
	"github.com/inkleaf/journal/internal/command"
	"github.com/inkleaf/journal/internal/config"
	"github.com/inkleaf/journal/internal/events"
	"github.com/inkleaf/journal/internal/handler"
	"github.com/inkleaf/journal/internal/middleware"
	"github.com/inkleaf/journal/internal/models"
	"github.com/inkleaf/journal/internal/query"
	"github.com/inkleaf/journal/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Database connection (source of truth)
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	// Redis connection (cache + event streaming)
	redisClient, err := cache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// --- wiring ---
	entryStore := repository.NewEntryRepository(db)
	userStore := repository.NewUserRepository(db)

	cacheBackend := cache.NewRedis(redisClient)
	entryCache := cache.NewView[models.EntryView](cacheBackend, cache.NamespaceEntry, cfg.EntryCacheTTL)
	monthCache := cache.NewView[models.CalendarMonth](cacheBackend, cache.NamespaceMonth, cfg.MonthCacheTTL)

	publisher := events.NewPublisher(events.NewStreamTransport(redisClient), events.PublisherConfig{
		BufferSize:  cfg.EventBufferSize,
		MaxAttempts: cfg.EventMaxAttempts,
		RetryDelay:  cfg.EventRetryDelay,
	})

	commandSvc := command.NewJournalCommandService(entryStore, userStore, entryCache, monthCache, publisher)
	querySvc := query.NewJournalQueryService(entryStore, userStore, entryCache, monthCache)
	authSvc := auth.NewService(userStore, []byte(cfg.JWTSecret), cfg.TokenTTL)

	journalHandler := handler.NewJournalHandler(commandSvc, querySvc)
	authHandler := handler.NewAuthHandler(authSvc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Event delivery worker
	go publisher.Run(ctx)

	// Downstream event consumer
	go func() {
		subscriber := events.NewSubscriber(redisClient, events.SubscriberConfig{
			Group:    cfg.ConsumerGroup,
			Consumer: "consumer-" + uuid.NewString()[:8],
			Handler:  events.LogHandler{},
		})
		if err := subscriber.Start(ctx); err != nil {
			log.Printf("Subscriber stopped: %v", err)
		}
	}()

	// Daily cache sweep
	go cache.NewSweeper(cacheBackend).Run(ctx)

	// Setup router
	router := gin.Default()
	router.Use(middleware.Logging())

	authRoutes := router.Group("/api/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	journals := router.Group("/api/journals", middleware.Auth(authSvc))
	{
		journals.POST("", journalHandler.CreateEntry)
		journals.GET("", journalHandler.GetEntries)
		journals.GET("/date/:date", journalHandler.GetEntryByDate)
		journals.GET("/calendar", journalHandler.GetCalendarMonth)
		journals.GET("/search", journalHandler.SearchEntries)
		journals.PUT("/:id", journalHandler.UpdateEntry)
		journals.DELETE("/:id", journalHandler.DeleteEntry)

		admin := journals.Group("/admin", middleware.RequireAdmin())
		{
			admin.GET("/all", journalHandler.AdminGetAllEntries)
			admin.DELETE("/:id", journalHandler.AdminDeleteEntry)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	log.Printf("Journal service starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
