package feedbacks

import (
	"math"
	"strings"
	"time"

	"feedback-api/internal/domain"
)

const nullHandlingNative = "NATIVE"

// Envelope повторяет привычную клиентам форму постраничного ответа.
type Envelope struct {
	Size             int           `json:"size"`
	Content          []FeedbackDTO `json:"content"`
	Number           int           `json:"number"`
	Sort             SortDTO       `json:"sort"`
	First            bool          `json:"first"`
	TotalPages       int           `json:"totalPages"`
	NumberOfElements int           `json:"numberOfElements"`
	Pageable         PageableDTO   `json:"pageable"`
	NextPageToken    string        `json:"nextPageToken,omitempty"`
}

// FeedbackDTO — отзыв в формате ответа.
type FeedbackDTO struct {
	ID            string  `json:"id"`
	Rate          int     `json:"rate"`
	Comment       string  `json:"comment"`
	UserName      string  `json:"userName"`
	UserAvatarURL *string `json:"userAvatarUrl"`
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	LocationID    string  `json:"locationId"`
}

// SortDTO дублируется в корне ответа и в pageable.
type SortDTO struct {
	Direction    string `json:"direction"`
	NullHandling string `json:"nullHandling"`
	Ascending    bool   `json:"ascending"`
	Property     string `json:"property"`
	IgnoreCase   bool   `json:"ignoreCase"`
}

type PageableDTO struct {
	Offset     int     `json:"offset"`
	Sort       SortDTO `json:"sort"`
	Paged      bool    `json:"paged"`
	PageSize   int     `json:"pageSize"`
	PageNumber int     `json:"pageNumber"`
	Unpaged    bool    `json:"unpaged"`
}

// AssembleEnvelope собирает ответ из страницы, курсора и общего количества.
func AssembleEnvelope(spec domain.QuerySpec, sort domain.SortSpec, page domain.FeedbackPage, total int) Envelope {
	content := make([]FeedbackDTO, 0, len(page.Entries))
	for _, e := range page.Entries {
		content = append(content, toFeedbackDTO(e))
	}
	sortDTO := SortDTO{
		Direction:    strings.ToUpper(sort.Direction),
		NullHandling: nullHandlingNative,
		Ascending:    sort.Ascending(),
		Property:     sort.Property,
		IgnoreCase:   false,
	}
	return Envelope{
		Size:             spec.PageSize,
		Content:          content,
		Number:           spec.Page,
		Sort:             sortDTO,
		First:            spec.Page == 0,
		TotalPages:       TotalPages(total, spec.PageSize),
		NumberOfElements: len(content),
		Pageable: PageableDTO{
			Offset:     pageOffset(spec.Page, spec.PageSize),
			Sort:       sortDTO,
			Paged:      true,
			PageSize:   spec.PageSize,
			PageNumber: spec.Page,
			Unpaged:    false,
		},
		NextPageToken: page.NextCursor,
	}
}

// TotalPages считает ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// pageOffset считает page*size, при переполнении возвращает math.MaxInt.
func pageOffset(page, size int) int {
	if page <= 0 || size <= 0 {
		return 0
	}
	if page > math.MaxInt/size {
		return math.MaxInt
	}
	return page * size
}

func toFeedbackDTO(e domain.FeedbackEntry) FeedbackDTO {
	return FeedbackDTO{
		ID:            e.ID.String(),
		Rate:          e.Rate,
		Comment:       e.Comment,
		UserName:      e.UserName,
		UserAvatarURL: e.UserAvatarURL,
		Date:          e.Date.UTC().Format(time.RFC3339),
		Type:          e.Type.WireName(),
		LocationID:    e.LocationID,
	}
}
