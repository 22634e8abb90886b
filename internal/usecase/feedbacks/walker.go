package feedbacks

import (
	"context"
	"fmt"

	"feedback-api/internal/domain"
	"feedback-api/internal/infra/metrics"
)

// Walker отдаёт страницу по номеру поверх хранилища, которое умеет только «следующую страницу после курсора».
// Переход на страницу K стоит K+1 обращений к хранилищу: быстрее хранилище не позволяет.
type Walker struct {
	store domain.FeedbackStore
}

// NewWalker создаёт Walker.
func NewWalker(store domain.FeedbackStore) *Walker {
	return &Walker{store: store}
}

// Walk возвращает записи запрошенной страницы и курсор следующей.
// Если цепочка курсоров обрывается раньше нужной страницы, возвращается пустая страница без ошибки.
func (w *Walker) Walk(ctx context.Context, spec domain.QuerySpec, sort domain.SortSpec) (domain.FeedbackPage, error) {
	req := domain.FetchRequest{
		LocationID: spec.LocationID,
		Type:       spec.Type,
		Sort:       sort,
		Limit:      spec.PageSize,
	}

	if spec.Page == 0 || (spec.Page == 1 && spec.Cursor != "") {
		req.Cursor = spec.Cursor
		page, err := w.store.FetchPage(ctx, req)
		metrics.ObservePageWalk(1)
		if err != nil {
			return domain.FeedbackPage{}, fmt.Errorf("получение страницы %d: %w", spec.Page, err)
		}
		return page, nil
	}

	// Курсор клиента не используется: цепочка всегда строится с первой страницы.
	var page domain.FeedbackPage
	fetches := 0
	defer func() { metrics.ObservePageWalk(fetches) }()
	for i := 0; i <= spec.Page; i++ {
		if err := ctx.Err(); err != nil {
			return domain.FeedbackPage{}, err
		}
		var err error
		page, err = w.store.FetchPage(ctx, req)
		fetches++
		if err != nil {
			return domain.FeedbackPage{}, fmt.Errorf("обход страниц, шаг %d: %w", i, err)
		}
		if i == spec.Page {
			break
		}
		if len(page.Entries) == 0 || page.NextCursor == "" {
			return domain.FeedbackPage{}, nil
		}
		req.Cursor = page.NextCursor
	}
	return page, nil
}
