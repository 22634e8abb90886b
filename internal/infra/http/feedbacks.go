package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"feedback-api/internal/domain"
	"feedback-api/internal/infra/metrics"
	"feedback-api/internal/usecase/feedbacks"
)

// FeedbackLister отдаёт страницы отзывов локации.
type FeedbackLister interface {
	ListLocationFeedbacks(ctx context.Context, locationID string, query url.Values) (feedbacks.Envelope, error)
}

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

type errorResponse struct {
	Message string `json:"message"`
}

// FeedbackHandler обслуживает чтение отзывов.
type FeedbackHandler struct {
	service FeedbackLister
	health  Pinger
	log     zerolog.Logger
}

// NewFeedbackHandler создаёт обработчик.
func NewFeedbackHandler(service FeedbackLister, health Pinger, log zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{service: service, health: health, log: log}
}

// Register подключает маршруты к роутеру.
func (h *FeedbackHandler) Register(r chi.Router) {
	r.Get("/locations/{locationId}/feedbacks", h.handleList)
	r.Get("/healthz", h.handleHealth)
}

func (h *FeedbackHandler) handleList(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	envelope, err := h.service.ListLocationFeedbacks(r.Context(), locationID, r.URL.Query())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && r.Context().Err() != nil {
			// Ответ 504 пишет middleware.Timeout.
			h.log.Warn().Err(err).Str("location_id", locationID).Msg("feedbacks: истёк таймаут запроса")
			metrics.IncFeedbackRequest(http.StatusGatewayTimeout)
			return
		}
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrUnknownFeedbackType) {
			status = http.StatusBadRequest
		} else {
			h.log.Error().Err(err).Str("location_id", locationID).Msg("feedbacks: не удалось получить страницу")
		}
		metrics.IncFeedbackRequest(status)
		writeError(w, status, err.Error())
		return
	}
	metrics.IncFeedbackRequest(http.StatusOK)
	writeJSON(w, http.StatusOK, envelope)
}

func (h *FeedbackHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}
