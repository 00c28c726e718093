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

	"github.com/Takenobou/class-calendar/internal/cache"
	"github.com/Takenobou/class-calendar/internal/calendar"
	"github.com/Takenobou/class-calendar/internal/config"
	"github.com/Takenobou/class-calendar/internal/schedule"
	"github.com/Takenobou/class-calendar/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	store, err := schedule.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("database init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		logger.Error("migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var responses cache.Store = cache.NewMemory(cfg.CacheTTL)
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			logger.Error("redis init failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisCache.Close()
		responses = redisCache
	}

	calendarBuilder, err := calendar.NewBuilder(calendar.Config{
		Name:        cfg.CalendarName,
		Description: cfg.CalendarDesc,
		Timezone:    cfg.Timezone,
		ClassDates:  cfg.ClassDates,
		BaseURL:     cfg.BaseURL,
	})
	if err != nil {
		logger.Error("calendar init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := server.New(cfg, store, calendarBuilder, responses, logger)

	if err := srv.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
