package domain

import (
	"context"
	"time"
)

// FeedbackStore отдаёт отзывы только последовательно: первую страницу или страницу после курсора.
type FeedbackStore interface {
	FetchPage(ctx context.Context, req FetchRequest) (FeedbackPage, error)
}

// FeedbackCounter считает общее число отзывов локации.
type FeedbackCounter interface {
	CountByLocation(ctx context.Context, locationID string) (int, error)
}

// FeedbackRepo объединяет порты чтения отзывов.
type FeedbackRepo interface {
	FeedbackStore
	FeedbackCounter
	Ping(ctx context.Context) error
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
}
