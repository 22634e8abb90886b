package feedbacks

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"feedback-api/internal/domain"
)

// Имена query-параметров эндпоинта отзывов.
const (
	ParamType          = "type"
	ParamPage          = "page"
	ParamSize          = "size"
	ParamNextPageToken = "nextPageToken"
	ParamSort          = "sort"
)

// ResolveQuery приводит сырые параметры запроса к QuerySpec.
// Некорректные page/size заменяются значениями по умолчанию, size больше MaxPageSize урезается.
// Неизвестный type возвращает ошибку.
func ResolveQuery(locationID string, query url.Values) (domain.QuerySpec, error) {
	spec := domain.QuerySpec{
		LocationID: locationID,
		Page:       intOrDefault(query.Get(ParamPage), domain.DefaultPage, 0),
		PageSize:   min(intOrDefault(query.Get(ParamSize), domain.DefaultPageSize, 1), domain.MaxPageSize),
		Cursor:     query.Get(ParamNextPageToken),
	}
	if raw := query.Get(ParamType); strings.TrimSpace(raw) != "" {
		t, err := domain.ParseFeedbackType(raw)
		if err != nil {
			return domain.QuerySpec{}, fmt.Errorf("параметр type: %w", err)
		}
		spec.Type = &t
	}
	return spec, nil
}

func intOrDefault(raw string, def, floor int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < floor {
		return def
	}
	return v
}
