package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"eventplanner-web/internal/config"
	"eventplanner-web/internal/session"
)

// sessionBackend is the server-side store for browser sessions. A nil KV means
// the token lives in the signed cookie only.
type sessionBackend struct {
	KV    session.KV
	close func() error
}

func (b *sessionBackend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

// InitSessionBackend connects the configured session backend.
func InitSessionBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sessionBackend, error) {
	switch cfg.Session.Backend {
	case config.BackendDatabase:
		db, err := openDB(cfg.Database)
		if err != nil {
			return nil, err
		}
		kv := session.NewGormKV(db)
		if err := kv.Migrate(); err != nil {
			return nil, fmt.Errorf("migrate session table: %w", err)
		}
		logger.Info("session backend ready", slog.String("backend", "database"), slog.String("driver", cfg.Database.Driver))

		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("database handle: %w", err)
		}
		return &sessionBackend{KV: kv, close: sqlDB.Close}, nil

	case config.BackendRedis:
		client, err := openRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("session backend ready", slog.String("backend", "redis"))
		return &sessionBackend{KV: session.NewRedisKV(client, cfg.Session.MaxAge), close: client.Close}, nil

	default:
		logger.Info("session backend ready", slog.String("backend", "cookie"))
		return &sessionBackend{}, nil
	}
}

func openDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}
	return db, nil
}

func openRedis(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}), nil
}
