// File: homely/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homely/config"
	"homely/cron"
	"homely/database"
	availabilityRepoPkg "homely/database/repository/availability"
	bookingRepoPkg "homely/database/repository/booking"
	"homely/handlers"
	"homely/routes"
	"homely/services/availability"
	bookingSvcPkg "homely/services/booking"
	"homely/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitLockCache()

	// repositories.
	availabilityRepo := availabilityRepoPkg.NewMongoAvailabilityRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	if err := availabilityRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure schedule indexes: %v", err)
	}
	if err := bookingRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure booking indexes: %v", err)
	}

	// services.
	availabilitySvc := &availability.DefaultAvailabilityService{
		Repo:        availabilityRepo,
		BookingRepo: bookingRepo,
		Cache:       utils.GetCacheClient(),
		CacheTTL:    time.Duration(config.AppConfig.SlotCacheTTLSec) * time.Second,
	}

	taskClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})
	defer taskClient.Close()

	bookingSvc := &bookingSvcPkg.DefaultBookingService{
		Repo:            bookingRepo,
		AvailabilitySvc: availabilitySvc,
		Locker: utils.NewSlotLocker(utils.GetLockClient(),
			time.Duration(config.AppConfig.SlotLockTTLSec)*time.Second),
		TaskClient: taskClient,
		PendingTTL: time.Duration(config.AppConfig.PendingAcceptTTLMin) * time.Minute,
	}

	// Background expiry worker and health monitor.
	cron.InitExpiryWorker(bookingSvc)
	utils.StartHealthMonitor(utils.GetCacheClient(), utils.GetLockClient(), database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	handlerBundle := handlers.NewHandlerBundle(availabilitySvc, bookingSvc)
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
