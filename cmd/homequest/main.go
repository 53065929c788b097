package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pmelhus/homequest/internal/database"
	"github.com/pmelhus/homequest/internal/logging"
	"github.com/pmelhus/homequest/internal/scheduler"
	"github.com/pmelhus/homequest/internal/server"
)

func main() {
	port := envOr("HOMEQUEST_PORT", "8080")
	dbPath := envOr("HOMEQUEST_DB_PATH", "homequest.db")

	logger := logging.Setup(os.Getenv("HOMEQUEST_LOG_LEVEL"), os.Getenv("HOMEQUEST_LOG_FORMAT"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	srv := server.New(db, server.Config{
		VAPIDPublicKey:  os.Getenv("HOMEQUEST_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("HOMEQUEST_VAPID_PRIVATE_KEY"),
		CronSecret:      os.Getenv("HOMEQUEST_CRON_SECRET"),
	}, logger)

	sched, err := scheduler.New(scheduler.Config{
		TaskResetSchedule:        os.Getenv("HOMEQUEST_TASK_RESET_SCHEDULE"),
		LeaderboardResetSchedule: os.Getenv("HOMEQUEST_LEADERBOARD_RESET_SCHEDULE"),
	}, srv.TaskEngine(), srv.Leaderboard(), logger.With("component", "scheduler"))
	if err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("homequest listening", "port", port, "db", dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
