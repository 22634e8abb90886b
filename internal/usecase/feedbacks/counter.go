package feedbacks

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"feedback-api/internal/domain"
	"feedback-api/internal/infra/metrics"
)

const countCachePrefix = "feedbacks:count:"

// Counter считает общее количество отзывов локации без учёта фильтра и сортировки.
type Counter struct {
	store domain.FeedbackCounter
	cache domain.Cache
	ttl   time.Duration
	log   zerolog.Logger
}

// CounterOption настраивает Counter.
type CounterOption func(*Counter)

// WithCountCache включает кэширование количества на ttl.
func WithCountCache(cache domain.Cache, ttl time.Duration) CounterOption {
	return func(c *Counter) {
		c.cache = cache
		c.ttl = ttl
	}
}

// WithCounterLogger задаёт логгер.
func WithCounterLogger(log zerolog.Logger) CounterOption {
	return func(c *Counter) {
		c.log = log
	}
}

// NewCounter создаёт Counter.
func NewCounter(store domain.FeedbackCounter, opts ...CounterOption) *Counter {
	c := &Counter{store: store, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Total возвращает количество отзывов локации.
func (c *Counter) Total(ctx context.Context, locationID string) (int, error) {
	key := countCachePrefix + locationID
	if c.cacheEnabled() {
		if raw, err := c.cache.Get(ctx, key); err == nil {
			if total, convErr := strconv.Atoi(string(raw)); convErr == nil {
				metrics.IncCountCache("hit")
				return total, nil
			}
		}
		metrics.IncCountCache("miss")
	}

	total, err := c.store.CountByLocation(ctx, locationID)
	if err != nil {
		return 0, fmt.Errorf("подсчёт отзывов: %w", err)
	}

	if c.cacheEnabled() {
		if err := c.cache.Set(ctx, key, []byte(strconv.Itoa(total)), c.ttl); err != nil {
			c.log.Warn().Err(err).Str("location_id", locationID).Msg("feedbacks: не удалось сохранить количество в кэш")
		}
	}
	return total, nil
}

func (c *Counter) cacheEnabled() bool {
	return c.cache != nil && c.ttl > 0
}
