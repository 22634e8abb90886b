package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"feedback-api/internal/adapters/dynamo"
	"feedback-api/internal/adapters/repo"
	"feedback-api/internal/domain"
	"feedback-api/internal/infra/cache"
	"feedback-api/internal/infra/config"
	"feedback-api/internal/infra/db"
	httpinfra "feedback-api/internal/infra/http"
	applog "feedback-api/internal/infra/log"
	"feedback-api/internal/infra/metrics"
	"feedback-api/internal/usecase/feedbacks"
)

func main() {
	cfg := config.Load()
	log.Logger = applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(cfg)
	defer closeStore()

	counterOpts := []feedbacks.CounterOption{
		feedbacks.WithCounterLogger(log.With().Str("component", "feedback_counter").Logger()),
	}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		counterOpts = append(counterOpts, feedbacks.WithCountCache(cache.NewRedis(client), cfg.CountCacheTTL))
	}

	service := feedbacks.NewService(
		feedbacks.NewWalker(store),
		feedbacks.NewCounter(store, counterOpts...),
		log.With().Str("component", "feedbacks").Logger(),
	)

	server := httpinfra.NewServer(log.With().Str("component", "http").Logger(), cfg.HTTP.RequestTimeout)
	httpinfra.NewFeedbackHandler(service, store, log.With().Str("component", "feedbacks_http").Logger()).Register(server.Router)

	if cfg.Metrics.Enabled {
		metrics.StartServer(ctx, log.With().Str("component", "metrics").Logger(), cfg.Metrics.Addr)
	}
	go func() {
		log.Info().Str("backend", cfg.StoreBackend).Msg("api: старт")
		if err := server.Start(cfg.HTTP.Addr, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout); err != nil {
			log.Error().Err(err).Msg("api: сервер остановлен")
			stop()
		}
	}()
	<-ctx.Done()
	log.Info().Msg("api: остановка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("api: ошибка остановки")
	}
}

func openStore(cfg config.AppConfig) (domain.FeedbackRepo, func()) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := db.Connect(cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			log.Fatal().Err(err).Msg("api: нет подключения к БД")
		}
		return repo.NewPostgres(pool), pool.Close
	case config.BackendDynamoDB:
		sess, err := dynamo.NewSession(cfg.Dynamo.Region, cfg.Dynamo.Endpoint)
		if err != nil {
			log.Fatal().Err(err).Msg("api: не удалось создать AWS-сессию")
		}
		return dynamo.New(sess, dynamo.Config{
			Table:        cfg.Dynamo.Table,
			IndexPattern: cfg.Dynamo.IndexPattern,
			CountIndex:   cfg.Dynamo.CountIndex,
		}), func() {}
	default:
		log.Fatal().Str("backend", cfg.StoreBackend).Msg("api: неизвестное хранилище")
		return nil, nil
	}
}
