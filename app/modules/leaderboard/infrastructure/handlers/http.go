package leaderboardhandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	authhandlers "github.com/Black-And-White-Club/cube-rooms/app/modules/auth/infrastructure/handlers"
	leaderboardservice "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/application"
	leaderboarddomain "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/domain"
	leaderboarddb "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/infrastructure/repositories"
	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// EnqueueResponse is returned by an asynchronous update request.
type EnqueueResponse struct {
	JobID    int64  `json:"job_id"`
	Day      string `json:"day"`
	RoomCode string `json:"room_code,omitempty"`
}

// LeaderboardHTTPHandlers serves the leaderboard API.
type LeaderboardHTTPHandlers struct {
	service  leaderboardservice.Service
	enqueuer Enqueuer
	logger   *slog.Logger
	now      func() time.Time
}

// NewLeaderboardHTTPHandlers creates the handlers. enqueuer may be nil when no job queue runs.
func NewLeaderboardHTTPHandlers(service leaderboardservice.Service, enqueuer Enqueuer, logger *slog.Logger) *LeaderboardHTTPHandlers {
	return &LeaderboardHTTPHandlers{service: service, enqueuer: enqueuer, logger: logger, now: time.Now}
}

// Routes mounts the leaderboard endpoints. admin guards the update trigger.
func (h *LeaderboardHTTPHandlers) Routes(admin ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.With(admin...).Post("/update", h.HandleRunDailyUpdate)
	r.Route("/{room}", func(r chi.Router) {
		r.Get("/daily", h.HandleGetDailyLeaderboard)
		r.Get("/weekly", h.HandleGetWeeklyLeaderboard)
		r.Get("/weekly/best", h.HandleGetWeeklyBest)
		r.Get("/weekly/players", h.HandleGetWeeklyPlayers)
		r.Get("/weekly/overview", h.HandleGetWeeklyOverview)
		r.Get("/weekly/chart.png", h.HandleGetWeeklyChart)
		r.Get("/weekly/export.xlsx", h.HandleExportWeekly)
	})
	return r
}

// HandleRunDailyUpdate scores ?day= (default yesterday), optionally for ?room=.
// With ?async=true the run is queued and 202 is returned.
func (h *LeaderboardHTTPHandlers) HandleRunDailyUpdate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	day := statisticsdomain.DayStart(h.now()).AddDate(0, 0, -1)
	if s := q.Get("day"); s != "" {
		parsed, err := statisticsdomain.ParseDay(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid day %q, expected YYYY-MM-DD", s))
			return
		}
		day = parsed
	}
	room := q.Get("room")
	async, _ := strconv.ParseBool(q.Get("async"))

	requestedBy := "anonymous"
	if claims, ok := authhandlers.ClaimsFromContext(r.Context()); ok {
		requestedBy = claims.Subject
	}
	h.logger.InfoContext(r.Context(), "Daily update requested",
		slog.String("day", day.Format(statisticsdomain.DateLayout)),
		slog.String("room_code", room),
		slog.String("requested_by", requestedBy),
		slog.Bool("async", async),
	)

	if async {
		if h.enqueuer == nil {
			writeError(w, http.StatusBadRequest, "asynchronous updates need the postgres job queue")
			return
		}
		jobID, err := h.enqueuer.EnqueueDailyUpdate(r.Context(), day, room)
		if err != nil {
			h.fail(w, r, "enqueue daily update", err)
			return
		}
		writeJSON(w, http.StatusAccepted, EnqueueResponse{
			JobID:    jobID,
			Day:      day.Format(statisticsdomain.DateLayout),
			RoomCode: room,
		})
		return
	}

	var opts []leaderboardservice.RunOption
	if room != "" {
		opts = append(opts, leaderboardservice.WithRoom(room))
	}
	report, err := h.service.RunDailyUpdate(r.Context(), day, opts...)
	if err != nil {
		h.fail(w, r, "run daily update", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *LeaderboardHTTPHandlers) HandleGetDailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dateParam(w, r, "day")
	if !ok {
		return
	}
	standings, err := h.service.GetDailyLeaderboard(r.Context(), chi.URLParam(r, "room"), day)
	if err != nil {
		h.fail(w, r, "get daily leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}

func (h *LeaderboardHTTPHandlers) HandleGetWeeklyLeaderboard(w http.ResponseWriter, r *http.Request) {
	week, ok := h.dateParam(w, r, "week")
	if !ok {
		return
	}
	entries, err := h.service.GetWeeklyLeaderboard(r.Context(), chi.URLParam(r, "room"), week)
	if err != nil {
		h.fail(w, r, "get weekly leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room_code":  chi.URLParam(r, "room"),
		"week_start": leaderboarddomain.WeekStart(week).Format(statisticsdomain.DateLayout),
		"entries":    entries,
	})
}

func (h *LeaderboardHTTPHandlers) HandleGetWeeklyBest(w http.ResponseWriter, r *http.Request) {
	week, ok := h.dateParam(w, r, "week")
	if !ok {
		return
	}
	best, err := h.service.GetWeeklyBest(r.Context(), chi.URLParam(r, "room"), week)
	if err != nil {
		h.fail(w, r, "get weekly best", err)
		return
	}
	writeJSON(w, http.StatusOK, best)
}

func (h *LeaderboardHTTPHandlers) HandleGetWeeklyPlayers(w http.ResponseWriter, r *http.Request) {
	week, ok := h.dateParam(w, r, "week")
	if !ok {
		return
	}
	players, err := h.service.GetWeeklyPlayerSummaries(r.Context(), chi.URLParam(r, "room"), week)
	if err != nil {
		h.fail(w, r, "get weekly player summaries", err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (h *LeaderboardHTTPHandlers) HandleGetWeeklyOverview(w http.ResponseWriter, r *http.Request) {
	week, ok := h.dateParam(w, r, "week")
	if !ok {
		return
	}
	overview, err := h.service.GetWeeklyOverview(r.Context(), chi.URLParam(r, "room"), week)
	if err != nil {
		h.fail(w, r, "get weekly overview", err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *LeaderboardHTTPHandlers) HandleGetWeeklyChart(w http.ResponseWriter, r *http.Request) {
	week, ok := h.dateParam(w, r, "week")
	if !ok {
		return
	}
	png, err := h.service.RenderWeeklyChart(r.Context(), chi.URLParam(r, "room"), week)
	if err != nil {
		h.fail(w, r, "render weekly chart", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *LeaderboardHTTPHandlers) HandleExportWeekly(w http.ResponseWriter, r *http.Request) {
	week, ok := h.dateParam(w, r, "week")
	if !ok {
		return
	}
	room := chi.URLParam(r, "room")
	data, err := h.service.ExportWeekly(r.Context(), room, week)
	if err != nil {
		h.fail(w, r, "export weekly leaderboard", err)
		return
	}
	filename := fmt.Sprintf("%s-%s.xlsx", room, leaderboarddomain.WeekStart(week).Format(statisticsdomain.DateLayout))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// dateParam reads a YYYY-MM-DD query parameter, defaulting to today.
func (h *LeaderboardHTTPHandlers) dateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return statisticsdomain.DayStart(h.now()), true
	}
	day, err := statisticsdomain.ParseDay(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s %q, expected YYYY-MM-DD", name, s))
		return time.Time{}, false
	}
	return day, true
}

func (h *LeaderboardHTTPHandlers) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Leaderboard request failed",
			slog.String("action", action),
			slog.Any("error", err),
		)
	}
	writeError(w, status, fmt.Sprintf("Failed to %s: %v", action, err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, leaderboardservice.ErrDataUnavailable),
		errors.Is(err, leaderboarddb.ErrNotFound):
		return http.StatusNotFound
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
