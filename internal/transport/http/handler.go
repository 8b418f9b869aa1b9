package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/engine"
)

// Handler serves the read-only learning views over plain JSON GETs.
type Handler struct {
	engine *engine.Engine
	now    func() time.Time
}

func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{engine: eng, now: time.Now}
}

// Register wires all routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/session", h.GetSession)
	mux.HandleFunc("/progress", h.GetProgress)
	mux.HandleFunc("/due", h.GetDueReviews)
	mux.HandleFunc("/gaps", h.GetGapAnalysis)
	mux.HandleFunc("/recommendations", h.GetRecommendations)
	mux.HandleFunc("/metrics", h.GetLearnerMetrics)
	mux.HandleFunc("/report", h.GetPeriodReport)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	session, err := h.engine.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, session)
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	records, err := h.engine.UserProgress(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, records)
}

func (h *Handler) GetDueReviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	items, err := h.engine.DueReviews(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, items)
}

func (h *Handler) GetGapAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	analysis, err := h.engine.AnalyzeGaps(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, analysis)
}

func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	max := 5
	if raw := r.URL.Query().Get("max"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			max = parsed
		}
	}
	recommendations, err := h.engine.Recommend(r.Context(), userID, max)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, recommendations)
}

func (h *Handler) GetLearnerMetrics(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	metrics, err := h.engine.LearnerMetrics(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, metrics)
}

func (h *Handler) GetPeriodReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			days = parsed
		}
	}
	end := h.now()
	report, err := h.engine.PeriodReport(r.Context(), userID, end.AddDate(0, 0, -days), end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(w, "missing user", http.StatusBadRequest)
		return "", false
	}
	return userID, true
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrNoProgress):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrSessionNotActive),
		errors.Is(err, domain.ErrDuplicateAnswer),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrQuizInactive),
		errors.Is(err, domain.ErrEmptyQuestionSet),
		errors.Is(err, domain.ErrUnsupportedQuestionType):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Printf("internal error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
