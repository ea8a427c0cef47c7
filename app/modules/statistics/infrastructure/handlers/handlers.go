package statisticshandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	statisticsservice "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/application"
	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
	statisticsdb "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/infrastructure/repositories"
)

// UpdateStatisticsRequest is the body of POST /api/statistics.
type UpdateStatisticsRequest struct {
	RoomCode   string  `json:"room_code"`
	PlayerID   string  `json:"player_id"`
	Day        string  `json:"day"`
	BestSingle *string `json:"best_single"`
	MeanOf5    *string `json:"mean_of5"`
	MeanOf12   *string `json:"mean_of12"`
}

// RecordSessionRequest is the body of POST /api/statistics/sessions.
type RecordSessionRequest struct {
	RoomCode string                     `json:"room_code"`
	PlayerID string                     `json:"player_id"`
	Day      string                     `json:"day"`
	Attempts []statisticsdomain.Attempt `json:"attempts"`
}

// StatisticsHTTPHandlers serves statistics ingestion over HTTP.
type StatisticsHTTPHandlers struct {
	service statisticsservice.Service
	logger  *slog.Logger
	now     func() time.Time
}

// NewStatisticsHTTPHandlers creates the handlers.
func NewStatisticsHTTPHandlers(service statisticsservice.Service, logger *slog.Logger) *StatisticsHTTPHandlers {
	return &StatisticsHTTPHandlers{service: service, logger: logger, now: time.Now}
}

// Routes mounts the statistics endpoints.
func (h *StatisticsHTTPHandlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleUpdateStatistics)
	r.Post("/sessions", h.HandleRecordSession)
	r.Get("/{room}/{player}", h.HandleGetDailyStatistics)
	return r
}

// HandleUpdateStatistics stores client reported metrics.
func (h *StatisticsHTTPHandlers) HandleUpdateStatistics(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatisticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to decode request body: %v", err))
		return
	}
	day, err := h.dayOrToday(req.Day)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.service.UpdateStatistics(r.Context(), statisticsservice.UpdateStatisticsCommand{
		RoomCode:   req.RoomCode,
		PlayerID:   req.PlayerID,
		Day:        day,
		BestSingle: req.BestSingle,
		MeanOf5:    req.MeanOf5,
		MeanOf12:   req.MeanOf12,
	})
	if err != nil {
		h.fail(w, r, "update statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleRecordSession aggregates a session's attempts into the day's statistics.
func (h *StatisticsHTTPHandlers) HandleRecordSession(w http.ResponseWriter, r *http.Request) {
	var req RecordSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to decode request body: %v", err))
		return
	}
	day, err := h.dayOrToday(req.Day)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.service.RecordSession(r.Context(), statisticsservice.RecordSessionCommand{
		RoomCode: req.RoomCode,
		PlayerID: req.PlayerID,
		Day:      day,
		Attempts: req.Attempts,
	})
	if err != nil {
		h.fail(w, r, "record session", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleGetDailyStatistics returns one player's row for ?day= (default today).
func (h *StatisticsHTTPHandlers) HandleGetDailyStatistics(w http.ResponseWriter, r *http.Request) {
	day, err := h.dayOrToday(r.URL.Query().Get("day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := h.service.GetDailyStatistics(r.Context(), chi.URLParam(r, "room"), chi.URLParam(r, "player"), day)
	if err != nil {
		h.fail(w, r, "get daily statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *StatisticsHTTPHandlers) dayOrToday(s string) (time.Time, error) {
	if s == "" {
		return statisticsdomain.DayStart(h.now()), nil
	}
	day, err := statisticsdomain.ParseDay(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q, expected YYYY-MM-DD", s)
	}
	return day, nil
}

func (h *StatisticsHTTPHandlers) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Statistics request failed",
			slog.String("action", action),
			slog.Any("error", err),
		)
	}
	writeError(w, status, fmt.Sprintf("Failed to %s: %v", action, err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, statisticsdb.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, statisticsservice.ErrInvalidStatistics),
		errors.Is(err, statisticsservice.ErrMissingIdentity),
		errors.Is(err, statisticsdomain.ErrInvalidAttempt),
		errors.Is(err, statisticsdomain.ErrInvalidValue):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
