package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})

	FeedbackPageWalkFetches = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "feedback_page_walk_fetches",
		Help:    "Количество обращений к хранилищу для получения одной страницы отзывов",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 55},
	})

	FeedbackRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feedback_requests_total",
		Help: "Количество запросов страниц отзывов по HTTP-статусу",
	}, []string{"status"})

	FeedbackCountCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feedback_count_cache_total",
		Help: "Обращения к кэшу количества отзывов",
	}, []string{"result"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		NetworkRequestDuration,
		NetworkRequestTotal,
		FeedbackPageWalkFetches,
		FeedbackRequestsTotal,
		FeedbackCountCacheTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-ctx.Done():
		case <-shutdownCtx.Done():
		}
		shutdownTimeout, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
		cancel()
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObservePageWalk записывает, сколько раз пришлось сходить в хранилище за страницей.
func ObservePageWalk(fetches int) {
	FeedbackPageWalkFetches.Observe(float64(fetches))
}

// IncFeedbackRequest увеличивает счётчик запросов страниц с указанным статусом.
func IncFeedbackRequest(status int) {
	FeedbackRequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// IncCountCache фиксирует попадание или промах кэша количества отзывов.
func IncCountCache(result string) {
	FeedbackCountCacheTotal.WithLabelValues(result).Inc()
}
