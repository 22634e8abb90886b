package domain

import (
	"errors"
	"testing"
)

func TestParseFeedbackType(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    FeedbackType
		wantErr bool
	}{
		{name: "service quality", raw: "SERVICE_QUALITY", want: FeedbackTypeServiceQuality},
		{name: "cuisine experience", raw: "CUISINE_EXPERIENCE", want: FeedbackTypeCuisineExperience},
		{name: "surrounding spaces", raw: " SERVICE_QUALITY ", want: FeedbackTypeServiceQuality},
		{name: "wire spelling is not accepted", raw: "service-quality", wantErr: true},
		{name: "lower case", raw: "service_quality", wantErr: true},
		{name: "garbage", raw: "AMBIENCE", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFeedbackType(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFeedbackType) {
					t.Fatalf("ожидали ErrUnknownFeedbackType, получили %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("не ожидали ошибку: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseFeedbackType(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFeedbackTypeWireName(t *testing.T) {
	if got := FeedbackTypeServiceQuality.WireName(); got != "service-quality" {
		t.Fatalf("ожидали service-quality, получили %s", got)
	}
	if got := FeedbackTypeCuisineExperience.WireName(); got != "cuisine-experience" {
		t.Fatalf("ожидали cuisine-experience, получили %s", got)
	}
}

func TestSortSpecAscending(t *testing.T) {
	cases := map[string]bool{
		"asc":  true,
		"ASC":  true,
		"desc": false,
		"up":   false,
		"":     false,
	}
	for direction, want := range cases {
		if got := (SortSpec{Property: "date", Direction: direction}).Ascending(); got != want {
			t.Fatalf("направление %q: ожидали %v, получили %v", direction, want, got)
		}
	}
}
