package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"riverdash-admin/core"
)

func main() {
	startedAt := time.Now()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("failed to load .env: %v", err)
	}

	cfg, err := core.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logCloser, err := core.SetupLogging(cfg, "api.log")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	redisClient, err := core.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer redisClient.Close()

	var (
		settings      core.SettingsRepository
		settingsCheck core.HealthCheck
	)
	if cfg.DatabaseURL != "" {
		db, err := core.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}
		defer db.Close()
		repo := core.NewPgSettingsRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to ensure settings schema: %v", err)
		}
		settings = repo
		settingsCheck = db.Ping
	} else {
		log.Printf("DATABASE_URL not set; settings endpoints disabled")
	}

	secrets := core.SecretsFromConfig(cfg)
	if _, ok := secrets.AdminPasswordHash(); !ok {
		log.Printf("ADMIN_PASSWORD_HASH not set; admin login will answer 503")
	}
	if _, ok := secrets.TOTPSecret(); !ok {
		log.Printf("TOTP_SECRET not set; second factor will answer 503")
	}

	store := core.NewRedisStore(redisClient)
	login := core.NewLoginService(store, secrets, cfg.AdminUsername)
	guard := core.NewSessionGuard(store)
	status := core.NewStatusReporter(startedAt, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}, settingsCheck)
	router := core.NewRouter(cfg, login, guard, settings, status)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("starting api server on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}
