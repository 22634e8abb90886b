package feedbacks

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"feedback-api/internal/domain"
)

// Service отвечает за выдачу страниц отзывов локации.
type Service struct {
	walker  *Walker
	counter *Counter
	log     zerolog.Logger
}

// NewService создаёт сервис отзывов.
func NewService(walker *Walker, counter *Counter, log zerolog.Logger) *Service {
	return &Service{walker: walker, counter: counter, log: log}
}

// ListLocationFeedbacks разбирает параметры, получает страницу и общее количество и собирает ответ.
// Страница и количество запрашиваются параллельно; ошибка любого из запросов отменяет другой.
func (s *Service) ListLocationFeedbacks(ctx context.Context, locationID string, query url.Values) (Envelope, error) {
	spec, err := ResolveQuery(locationID, query)
	if err != nil {
		return Envelope{}, err
	}
	sort := ResolveSort(query[ParamSort])

	var (
		page  domain.FeedbackPage
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = s.walker.Walk(gctx, spec, sort)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.counter.Total(gctx, spec.LocationID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Envelope{}, err
	}

	s.log.Debug().
		Str("location_id", spec.LocationID).
		Int("page", spec.Page).
		Int("size", spec.PageSize).
		Str("sort", sort.Property+","+sort.Direction).
		Int("elements", len(page.Entries)).
		Int("total", total).
		Msg("feedbacks: страница собрана")

	return AssembleEnvelope(spec, sort, page, total), nil
}
