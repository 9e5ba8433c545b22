package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"company_backend/internal/app/di"
	"company_backend/internal/app/router"
	"company_backend/internal/feature/company/adapters"
	companyevents "company_backend/internal/feature/company/transport/events"
	companyhandler "company_backend/internal/feature/company/transport/handler"
	companyusecase "company_backend/internal/feature/company/usecase"
	"company_backend/internal/platform/cache"
	platformdb "company_backend/internal/platform/db"
	"company_backend/internal/platform/http/handler"
	platformredis "company_backend/internal/platform/redis"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := platformdb.Open(platformdb.LoadConfigFromEnv())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := adapters.AutoMigrate(db); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
		slog.Info("database migrated")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}
	defer func() { _ = sqlDB.Close() }()

	// Redis（任意）
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(platformredis.LoadConfigFromEnv()); err != nil {
		slog.Warn("Redis unavailable. Running without cache and user events.", "error", err)
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Repository（Redisがあればキャッシュでラップ）
	users := di.NewUserDirectory(db)
	companyRepo := di.NewCompanyRepository(db, rdb, cache.TTLFromEnv("CACHE_TTL", 5*time.Minute), users)

	// Usecase
	companyUC := companyusecase.NewCompanyUsecase(companyRepo, users, platformdb.NewTransactionManager(db))

	// ユーザー削除イベントの購読
	if rdb != nil {
		sub := companyevents.NewSubscriber(rdb, companyevents.ChannelFromEnv(), companyUC)
		go func() {
			if err := sub.Run(ctx); err != nil {
				slog.Error("user events subscriber stopped", "error", err)
			}
		}()
	}

	// Handler
	companyH := companyhandler.NewCompanyHandler(companyUC)
	checks := []handler.Check{{Name: "database", Ping: sqlDB.PingContext}}
	if rdb != nil {
		checks = append(checks, handler.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	// ルータ生成
	r := router.NewRouter(companyH, handler.Readiness(checks...))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	slog.Info("server stopped")
}
