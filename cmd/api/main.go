package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/admin-dashboard-api/internal/config"
	"github.com/admin-dashboard-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/admin-dashboard-api/internal/infrastructure/jwt"
	"github.com/admin-dashboard-api/internal/infrastructure/postgres"
	"github.com/admin-dashboard-api/internal/infrastructure/redisdb"
	"github.com/admin-dashboard-api/internal/infrastructure/smtp"
	"github.com/admin-dashboard-api/internal/infrastructure/sns"
	transporthttp "github.com/admin-dashboard-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	if cfg.RevealOTP() {
		slog.Warn("EXPOSE_OTP_IN_RESPONSE is on: reset codes are returned to callers", "env", cfg.AppEnv)
	}

	ctx := context.Background()
	deps, purger, err := storeDeps(ctx, cfg)
	if err != nil {
		slog.Error("store setup failed", "backend", cfg.StoreBackend, "err", err)
		os.Exit(1)
	}

	if cfg.OTPStore == config.BackendRedis {
		rdb, err := redisdb.NewClient(ctx, cfg)
		if err != nil {
			slog.Error("redis setup failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		deps.OTPRepo = redisdb.NewOTPRepo(rdb)
		// Redis expires reset codes itself.
		purger = nil
	}

	if purger != nil {
		scheduler, err := startCronJobs(ctx, purger, cfg.ResetTokenTTL+24*time.Hour)
		if err != nil {
			slog.Error("cron setup failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				slog.Warn("cron shutdown", "err", err)
			}
		}()
	}

	// JWT provider (optional; admin routes answer 503 without it).
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		deps.JWTProvider = p
	} else {
		slog.Warn("JWT provider not available", "err", err)
	}

	deps.Mailer = smtp.NewMailer(cfg)

	if cfg.SMSFallbackEnabled {
		if sender, err := sns.NewSender(ctx, cfg); err == nil {
			deps.SMSSender = sender
		} else {
			slog.Warn("SNS sender not available", "err", err)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
		return
	}
	slog.Info("server stopped")
}

// storeDeps opens the configured backend and returns its repositories. The
// purger is nil when the store expires reset codes on its own.
func storeDeps(ctx context.Context, cfg *config.Config) (*transporthttp.Deps, otpPurger, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := postgres.Open(cfg)
		if err != nil {
			return nil, nil, err
		}
		if cfg.DBAutoMigrate {
			if err := postgres.Migrate(db); err != nil {
				return nil, nil, err
			}
		}
		otps := postgres.NewOTPRepo(db)
		return &transporthttp.Deps{
			UserRepo:   postgres.NewUserRepo(db),
			RoleRepo:   postgres.NewRoleRepo(db),
			OTPRepo:    otps,
			CouponRepo: postgres.NewCouponRepo(db),
			Health:     postgres.NewHealth(db),
		}, otps, nil

	case config.BackendDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		// Creates missing tables; existing ones are left alone.
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		t := cfg.DynamoTables
		return &transporthttp.Deps{
			UserRepo:   dynamo.NewUserRepo(client, t.Users),
			RoleRepo:   dynamo.NewRoleRepo(client, t.Roles),
			OTPRepo:    dynamo.NewOTPRepo(client, t.PasswordResetOTPs),
			CouponRepo: dynamo.NewCouponRepo(client, t.Coupons),
			Health:     dynamo.NewHealth(client, t.PasswordResetOTPs),
		}, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
}
