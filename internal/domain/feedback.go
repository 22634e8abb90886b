package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUnknownFeedbackType возвращается, когда тип отзыва не входит в перечисление.
	ErrUnknownFeedbackType = errors.New("unknown feedback type")

	// ErrInvalidCursor возвращается, когда курсор повреждён или выдан для другого фильтра/сортировки.
	ErrInvalidCursor = errors.New("invalid continuation cursor")

	// ErrUnsupportedSort возвращается хранилищем, если оно не умеет сортировать по полю или направлению.
	ErrUnsupportedSort = errors.New("unsupported sort")
)

// FeedbackType описывает категорию отзыва.
type FeedbackType string

const (
	FeedbackTypeServiceQuality    FeedbackType = "SERVICE_QUALITY"
	FeedbackTypeCuisineExperience FeedbackType = "CUISINE_EXPERIENCE"
)

// ParseFeedbackType приводит строку запроса к значению перечисления.
func ParseFeedbackType(raw string) (FeedbackType, error) {
	switch t := FeedbackType(strings.TrimSpace(raw)); t {
	case FeedbackTypeServiceQuality, FeedbackTypeCuisineExperience:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFeedbackType, raw)
	}
}

// WireName возвращает написание типа для клиентов: service-quality.
func (t FeedbackType) WireName() string {
	return strings.ToLower(strings.ReplaceAll(string(t), "_", "-"))
}

// FeedbackEntry представляет отзыв гостя о локации ресторана.
type FeedbackEntry struct {
	ID            uuid.UUID
	Rate          int
	Comment       string
	UserName      string
	UserAvatarURL *string
	Date          time.Time
	Type          FeedbackType
	LocationID    string
}

const (
	DefaultPage     = 0
	DefaultPageSize = 20
	// MaxPageSize ограничивает size сверху: больший размер урезается до него.
	MaxPageSize = 1000

	DefaultSortProperty  = "date"
	DefaultSortDirection = "asc"
)

// QuerySpec описывает запрос одной страницы отзывов.
type QuerySpec struct {
	LocationID string
	Type       *FeedbackType
	Page       int
	PageSize   int
	// Cursor пустой, если клиент не передал nextPageToken.
	Cursor string
}

// SortSpec описывает сортировку в виде пары поле/направление.
type SortSpec struct {
	Property  string
	Direction string
}

// Ascending сообщает, задана ли сортировка по возрастанию.
func (s SortSpec) Ascending() bool {
	return strings.EqualFold(s.Direction, "asc")
}

// FeedbackPage содержит результат одного обращения к хранилищу.
type FeedbackPage struct {
	Entries    []FeedbackEntry
	NextCursor string
}

// FetchRequest описывает запрос «следующей страницы после курсора».
type FetchRequest struct {
	LocationID string
	Type       *FeedbackType
	Sort       SortSpec
	Limit      int
	Cursor     string
}
