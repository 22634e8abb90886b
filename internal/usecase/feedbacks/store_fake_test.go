package feedbacks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"feedback-api/internal/domain"
)

// memStore эмулирует хранилище с доступом только через курсор «следующей страницы».
type memStore struct {
	mu       sync.Mutex
	entries  []domain.FeedbackEntry
	calls    []domain.FetchRequest
	counts   int
	failAt   int
	fetchErr error
	countErr error
}

func (s *memStore) FetchPage(ctx context.Context, req domain.FetchRequest) (domain.FeedbackPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if err := ctx.Err(); err != nil {
		return domain.FeedbackPage{}, err
	}
	if s.failAt > 0 && len(s.calls) == s.failAt {
		return domain.FeedbackPage{}, s.fetchErr
	}

	var matched []domain.FeedbackEntry
	for _, e := range s.entries {
		if e.LocationID != req.LocationID {
			continue
		}
		if req.Type != nil && e.Type != *req.Type {
			continue
		}
		matched = append(matched, e)
	}
	less, err := lessFor(req.Sort)
	if err != nil {
		return domain.FeedbackPage{}, err
	}
	sort.SliceStable(matched, func(i, j int) bool { return less(matched[i], matched[j]) })

	sig := signature(req)
	offset := 0
	if req.Cursor != "" {
		raw, ok := strings.CutPrefix(req.Cursor, sig+"#")
		if !ok {
			return domain.FeedbackPage{}, domain.ErrInvalidCursor
		}
		offset, err = strconv.Atoi(raw)
		if err != nil {
			return domain.FeedbackPage{}, domain.ErrInvalidCursor
		}
	}
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + req.Limit
	if end > len(matched) {
		end = len(matched)
	}
	page := domain.FeedbackPage{Entries: append([]domain.FeedbackEntry(nil), matched[offset:end]...)}
	if end < len(matched) {
		page.NextCursor = fmt.Sprintf("%s#%d", sig, end)
	}
	return page, nil
}

func (s *memStore) CountByLocation(ctx context.Context, locationID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts++
	if s.countErr != nil {
		return 0, s.countErr
	}
	total := 0
	for _, e := range s.entries {
		if e.LocationID == locationID {
			total++
		}
	}
	return total, nil
}

func (s *memStore) fetchCalls() []domain.FetchRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.FetchRequest(nil), s.calls...)
}

func signature(req domain.FetchRequest) string {
	t := "*"
	if req.Type != nil {
		t = string(*req.Type)
	}
	return t + "|" + req.Sort.Property + "|" + strings.ToLower(req.Sort.Direction)
}

func lessFor(s domain.SortSpec) (func(a, b domain.FeedbackEntry) bool, error) {
	var asc func(a, b domain.FeedbackEntry) bool
	switch s.Property {
	case "date":
		asc = func(a, b domain.FeedbackEntry) bool { return a.Date.Before(b.Date) }
	case "rate":
		asc = func(a, b domain.FeedbackEntry) bool { return a.Rate < b.Rate }
	default:
		return nil, errors.Join(domain.ErrUnsupportedSort, fmt.Errorf("property %q", s.Property))
	}
	switch strings.ToLower(s.Direction) {
	case "asc":
		return asc, nil
	case "desc":
		return func(a, b domain.FeedbackEntry) bool { return asc(b, a) }, nil
	default:
		return nil, errors.Join(domain.ErrUnsupportedSort, fmt.Errorf("direction %q", s.Direction))
	}
}

var baseDate = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// seedEntries создаёт n отзывов локации: чётные — сервис, нечётные — кухня.
func seedEntries(locationID string, n int) []domain.FeedbackEntry {
	entries := make([]domain.FeedbackEntry, 0, n)
	for i := 0; i < n; i++ {
		t := domain.FeedbackTypeServiceQuality
		if i%2 == 1 {
			t = domain.FeedbackTypeCuisineExperience
		}
		entries = append(entries, domain.FeedbackEntry{
			ID:         uuid.New(),
			Rate:       i%5 + 1,
			Comment:    "отзыв " + strconv.Itoa(i),
			UserName:   "guest" + strconv.Itoa(i),
			Date:       baseDate.Add(time.Duration(i) * time.Minute),
			Type:       t,
			LocationID: locationID,
		})
	}
	return entries
}

func ids(entries []domain.FeedbackEntry) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}
