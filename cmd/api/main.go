package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/bloXbandit/CreditKadabbra-sub000/internal/cache"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/config"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/handler"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/middleware"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/repository"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/scheduler"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/service"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/utils"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Bureau simulations are cached when Redis is reachable
	var bureauCache cache.BureauCache
	redisClient := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()
	redisCache := cache.NewRedisBureauCache(redisClient, cfg.BureauCacheTTL)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisCache.Ping(pingCtx); err != nil {
		logger.Warnf("Redis unavailable, bureau simulations will not be cached: %v", err)
	} else {
		bureauCache = redisCache
	}
	cancelPing()

	sealKey, err := utils.DeriveKey(cfg.EncryptionKey)
	if err != nil {
		logger.Fatalf("Failed to derive encryption key: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, bureauCache, sealKey, logger)
	h := handler.NewHandler(svc)

	// Payment reminders
	sender := email.NewSender(cfg, logger)
	job := scheduler.NewReminderJob(repo, sender, cfg.ReminderLeadDays, logger)
	cronRunner, err := scheduler.Start(cfg.ReminderSchedule, job)
	if err != nil {
		logger.Fatalf("Failed to start reminder scheduler: %v", err)
	}

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	h.Register(r, middleware.AuthMiddleware(cfg))

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	<-cronRunner.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
}
