package feedbacks

import (
	"strings"

	"feedback-api/internal/domain"
)

// ResolveSort разбирает параметр вида "property,direction".
// Значения не валидируются: поле и направление проверяет хранилище.
func ResolveSort(values []string) domain.SortSpec {
	sort := domain.SortSpec{Property: domain.DefaultSortProperty, Direction: domain.DefaultSortDirection}
	if len(values) == 0 {
		return sort
	}
	parts := strings.Split(values[0], ",")
	if p := strings.TrimSpace(parts[0]); p != "" {
		sort.Property = p
	}
	if len(parts) > 1 {
		if d := strings.TrimSpace(parts[1]); d != "" {
			sort.Direction = d
		}
	}
	return sort
}
